package output

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/review"
)

// TextWriter outputs a human-readable terminal report. Colors follow
// fatih/color's detection, so they are dropped when stdout is not a TTY or
// NO_COLOR is set.
type TextWriter struct{}

var (
	headerColor  = color.New(color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen)
	sectionColor = map[string]*color.Color{
		review.CategorySyntax:  color.New(color.FgRed, color.Bold),
		review.CategoryLogical: color.New(color.FgYellow, color.Bold),
		review.CategoryStyle:   color.New(color.FgBlue, color.Bold),
	}
)

func (t *TextWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}
	if res == nil {
		return nil
	}

	if res.Warning != "" {
		ew.println(warnColor.Sprint("! " + res.Warning))
		return ew.err
	}

	ew.printf("%s: %s\n", headerColor.Sprint("Code Review"), res.Language.DisplayName())
	ew.println(strings.Repeat("─", 60))

	if res.Local != nil {
		ew.println(headerColor.Sprint("Local Checks"))
		writeLocal(ew, res.Local.Checks)
		ew.println("")
	}

	if res.Failure != nil {
		ew.println(errorColor.Sprint("Error: ") + res.Failure.Message)
		return ew.err
	}

	if m := res.Model; m != nil {
		ew.println(headerColor.Sprint("Model Analysis"))
		for _, s := range m.Sections {
			c := sectionColor[s.Category]
			ew.printf("\n%s (%d)\n", c.Sprint(s.Title), len(s.Items))
			if len(s.Items) == 0 {
				ew.println(okColor.Sprint("  none"))
			}
			for _, item := range s.Items {
				writeWrapped(ew, "  - ", "    ", item)
			}
		}
		if m.Explanation != "" {
			ew.printf("\n%s\n", headerColor.Sprint("Explanation"))
			writeWrapped(ew, "  ", "  ", m.Explanation)
		}
		if m.SuggestedTests != nil {
			ew.printf("\n%s\n", headerColor.Sprint("Suggested Tests"))
			for _, test := range m.SuggestedTests {
				writeWrapped(ew, "  - ", "    ", test)
			}
		}
		if m.Confidence != nil {
			ew.printf("\nConfidence: %s%%\n", m.Confidence.String())
		}
		if m.RawOutput != "" {
			ew.printf("\n%s\n", warnColor.Sprint("Model output was not fully parsed; raw reply follows"))
			ew.println(m.RawOutput)
		}
	}

	if f := res.Fixed; f != nil {
		ew.printf("\n%s\n", okColor.Sprint("Fixed Code / Text"))
		ew.println(strings.Repeat("─", 40))
		ew.println(f.Content)
		ew.println(strings.Repeat("─", 40))
		if f.Stat != nil {
			ew.printf("%s added, %s deleted, %d changed\n",
				okColor.Sprintf("+%d", f.Stat.Added), errorColor.Sprintf("-%d", f.Stat.Deleted), f.Stat.Changed)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (checks: %dms, model: %dms)\n",
		res.Timing.TotalMs, res.Timing.ChecksMs, res.Timing.ModelMs)

	return ew.err
}

// writeLocal prints the check fields in a stable order with syntax first.
func writeLocal(ew *errWriter, r checks.Result) {
	if ok, present := r[checks.KeySyntaxOK].(bool); present {
		if ok {
			ew.printf("  syntax: %s\n", okColor.Sprint("ok"))
		} else {
			ew.printf("  syntax: %s\n", errorColor.Sprint("failed"))
		}
	}
	for _, line := range strings.Split(r.JSON(), "\n") {
		ew.printf("  %s\n", line)
	}
}

func writeWrapped(ew *errWriter, first, rest, text string) {
	for i, line := range wrapText(text, 70) {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		ew.printf("%s%s\n", prefix, line)
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width || strings.Contains(text, "\n") {
		return strings.Split(text, "\n")
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
