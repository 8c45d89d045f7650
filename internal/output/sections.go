package output

import (
	"fmt"
	"strings"

	"github.com/dshills/codecritic/internal/review"
)

var sectionIcons = map[string]string{
	review.CategorySyntax:  "🔴",
	review.CategoryLogical: "🟡",
	review.CategoryStyle:   "🔵",
}

// Sections renders a result as three independently displayable markdown
// blocks: local checks, model analysis and the fixed version. The second
// and third are blank on a warning or a remote failure.
func Sections(res *review.Result) (local, model, fixed string) {
	if res == nil {
		return "", "", ""
	}
	if res.Warning != "" {
		return "⚠️ " + res.Warning, "", ""
	}
	local = LocalMarkdown(res.Local)
	if res.Failure != nil {
		return local, "❌ **Error:** " + res.Failure.Message, ""
	}
	return local, ModelMarkdown(res.Model), FixedMarkdown(res.Fixed)
}

// LocalMarkdown renders the local checks as a JSON code block.
func LocalMarkdown(l *review.LocalSummary) string {
	if l == nil {
		return ""
	}
	return "### 🧩 Local Checks\n```json\n" + l.Checks.JSON() + "\n```"
}

// ModelMarkdown renders the model analysis. Only reported parts appear.
func ModelMarkdown(m *review.ModelSummary) string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("### 🤖 Model Analysis\n")

	for i, s := range m.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#### %s %s\n", sectionIcons[s.Category], s.Title)
		for _, item := range s.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if m.Explanation != "" {
		fmt.Fprintf(&b, "\n#### 🧠 Explanation\n%s\n", m.Explanation)
	}
	if m.SuggestedTests != nil {
		b.WriteString("\n#### 🧪 Suggested Tests\n")
		for _, t := range m.SuggestedTests {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	if m.Confidence != nil {
		fmt.Fprintf(&b, "\n#### 📊 Confidence: %s%%\n", m.Confidence.String())
	}
	if m.RawOutput != "" {
		b.WriteString("\n#### 📝 Unparsed Model Output\n```\n")
		b.WriteString(m.RawOutput)
		b.WriteString("\n```\n")
	}
	return b.String()
}

// FixedMarkdown renders the corrected version as a fenced block, followed
// by the diff when one was computed.
func FixedMarkdown(f *review.FixedArtifact) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### ✅ Fixed Code / Text\n```%s\n%s\n```", f.Language.FenceTag(), f.Content)
	if f.Diff != "" {
		fmt.Fprintf(&b, "\n\n#### Changes")
		if f.Stat != nil {
			fmt.Fprintf(&b, " (+%d -%d ~%d)", f.Stat.Added, f.Stat.Deleted, f.Stat.Changed)
		}
		fmt.Fprintf(&b, "\n```diff\n%s\n```", strings.TrimRight(f.Diff, "\n"))
	}
	return b.String()
}
