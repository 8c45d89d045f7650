package review

import (
	"fmt"
	"strings"

	"github.com/dshills/codecritic/internal/checks"
)

const (
	codeBegin = "--- BEGIN CODE ---"
	codeEnd   = "--- END CODE ---"
)

var fieldHints = map[string]string{
	FieldSyntaxErrors:   "list of strings",
	FieldLogicalIssues:  "list of strings",
	FieldStyleIssues:    "list of strings",
	FieldExplanation:    "string",
	FieldFixed:          "string, the complete corrected version",
	FieldSuggestedTests: "list of strings",
	FieldConfidence:     "number from 0 to 100",
}

// BuildPrompt assembles the single instruction sent to the model. It is a
// pure function of its inputs.
func BuildPrompt(lang checks.Language, code string, local checks.Result) string {
	return BuildPromptWithRules(lang, code, local, nil)
}

// BuildPromptWithRules is BuildPrompt with optional rules appended before the
// closing instructions. Nil rules produce exactly BuildPrompt's output.
func BuildPromptWithRules(lang checks.Language, code string, local checks.Result, rules *Rules) string {
	var b strings.Builder

	b.WriteString("You are an expert debugger and QA reviewer.\n")
	fmt.Fprintf(&b, "Analyze and improve the following %s code or document.\n\n", lang.DisplayName())

	b.WriteString("You MUST respond with a single valid JSON object containing these fields:\n")
	for _, f := range ResponseFields {
		fmt.Fprintf(&b, "- %s (%s)\n", f, fieldHints[f])
	}

	b.WriteString("\nLOCAL CHECK RESULTS:\n")
	b.WriteString(local.JSON())
	b.WriteString("\n\nCODE TO ANALYZE:\n")
	b.WriteString(codeBegin)
	b.WriteString("\n")
	b.WriteString(code)
	b.WriteString("\n")
	b.WriteString(codeEnd)
	b.WriteString("\n")

	if section := BuildRulesPromptSection(rules, lang); section != "" {
		b.WriteString(section)
	}

	b.WriteString("\nRULES:\n")
	b.WriteString("1. Explain why each problem occurs and how to fix it in \"explanation\".\n")
	b.WriteString("2. Always include a full corrected version in \"fixed_code_or_text\".\n")
	b.WriteString("3. Respond with valid JSON only. Nothing outside the JSON object.\n")

	return b.String()
}
