package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/kbreplace/internal/kb"
	"github.com/nao1215/kbreplace/internal/model"
)

// MarkdownWriter outputs lookups as a Markdown document with a summary
// table followed by each update's supersedence chain.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one lookup.
func (w *MarkdownWriter) Write(lookup *model.Lookup) (int, error) {
	return w.WriteAll([]*model.Lookup{lookup})
}

// WriteAll outputs lookups in the given order.
func (w *MarkdownWriter) WriteAll(lookups []*model.Lookup) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("KB Supersedence Report")
	md.PlainText("")

	if len(lookups) == 0 {
		md.PlainText("No lookups recorded.")
		return len(md.String()), md.Build()
	}

	w.writeSummary(md, lookups)
	w.writeChains(md, lookups)

	return len(md.String()), md.Build()
}

// writeSummary writes one table row per lookup.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, lookups []*model.Lookup) {
	rows := make([][]string, 0, len(lookups))
	for _, l := range lookups {
		rows = append(rows, []string{
			"`" + l.Current() + "`",
			"`" + l.Replaces + "`",
			escapeCell(l.Title),
			l.CompletedAt.Format("2006-01-02 15:04:05 MST"),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Current", "Replaces", "Title", "Resolved"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeChains lists the cumulative updates found on each detail page.
func (w *MarkdownWriter) writeChains(md *markdown.Markdown, lookups []*model.Lookup) {
	for _, l := range lookups {
		if len(l.Chain) == 0 {
			continue
		}
		md.H2("Package details for " + l.Current())
		md.PlainText("")

		items := make([]string, len(l.Chain))
		for i, n := range l.Chain {
			items[i] = kb.Format(n)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
}

// escapeCell keeps a value from breaking the table layout.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
