// Package report writes lookup results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the two line Current/Replaces text for terminals and scripts
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: a Markdown table for documentation and tickets
//
// Writers implement the Writer interface, so the command layer can pick one
// by output format and use it the same way for fresh lookups and history.
package report
