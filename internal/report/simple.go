package report

import (
	"io"
	"strings"

	"github.com/nao1215/kbreplace/internal/model"
)

// SimpleWriter outputs the plain text result:
//
//	Current: KB5001234
//	Replaces: KB4999999
//
// Several lookups are separated by a blank line.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one lookup.
func (w *SimpleWriter) Write(lookup *model.Lookup) (int, error) {
	var sb strings.Builder
	writeEntry(&sb, lookup)
	return io.WriteString(w.output, sb.String())
}

// WriteAll outputs lookups separated by blank lines.
func (w *SimpleWriter) WriteAll(lookups []*model.Lookup) (int, error) {
	var sb strings.Builder
	for i, lookup := range lookups {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeEntry(&sb, lookup)
	}
	return io.WriteString(w.output, sb.String())
}

func writeEntry(sb *strings.Builder, lookup *model.Lookup) {
	sb.WriteString("Current: ")
	sb.WriteString(lookup.Current())
	sb.WriteString("\n")
	sb.WriteString("Replaces: ")
	sb.WriteString(lookup.Replaces)
	sb.WriteString("\n")
}
