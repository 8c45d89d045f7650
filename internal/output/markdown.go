package output

import (
	"io"

	"github.com/dshills/codecritic/internal/review"
)

// MarkdownWriter outputs the three sections as one markdown document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}
	local, model, fixed := Sections(res)

	ew.println("## Code Review\n")
	for _, part := range []string{local, model, fixed} {
		if part == "" {
			continue
		}
		ew.println(part)
		ew.println("")
	}
	if res != nil && res.Warning == "" {
		ew.printf("*Analyzed in %dms (checks: %dms, model: %dms)*\n",
			res.Timing.TotalMs, res.Timing.ChecksMs, res.Timing.ModelMs)
	}
	return ew.err
}
