package report

import (
	"io"

	"github.com/nao1215/kbreplace/internal/model"
)

// Writer defines the interface for lookup output.
type Writer interface {
	// Write outputs a single lookup.
	// Returns the number of bytes written and any error encountered.
	Write(lookup *model.Lookup) (int, error)

	// WriteAll outputs several lookups in the given order.
	WriteAll(lookups []*model.Lookup) (int, error)
}

// Format selects a Writer implementation.
type Format string

const (
	// FormatText is the default Current/Replaces output.
	FormatText Format = "text"
	// FormatJSON is JSON output.
	FormatJSON Format = "json"
	// FormatMarkdown is Markdown output.
	FormatMarkdown Format = "markdown"
)

// NewWriter returns the Writer for format. Unknown formats fall back to text.
func NewWriter(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
