package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/fixdiff"
)

// Stage records which recovery strategy produced a Response.
type Stage string

const (
	StageStrict   Stage = "strict"
	StageEnclosed Stage = "enclosed"
	StageRepaired Stage = "repaired"
	StageRaw      Stage = "raw"
)

// Field names the model is asked to return.
const (
	FieldSyntaxErrors   = "syntax_errors"
	FieldLogicalIssues  = "logical_issues"
	FieldStyleIssues    = "style_issues"
	FieldExplanation    = "explanation"
	FieldFixed          = "fixed_code_or_text"
	FieldSuggestedTests = "suggested_tests"
	FieldConfidence     = "confidence"
)

// ResponseFields lists the required output fields in prompt order.
var ResponseFields = []string{
	FieldSyntaxErrors,
	FieldLogicalIssues,
	FieldStyleIssues,
	FieldExplanation,
	FieldFixed,
	FieldSuggestedTests,
	FieldConfidence,
}

// TextList is a list of findings. A nil list means the model did not report
// the field; an empty one means it reported none.
type TextList []string

// UnmarshalJSON accepts an array, a bare string or null. Non-string array
// items are kept as compact JSON.
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = TextList{s}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected list of strings: %w", err)
	}
	out := make(TextList, 0, len(items))
	for _, item := range items {
		out = append(out, textOf(item))
	}
	*l = out
	return nil
}

// Text is a free-text field that tolerates non-string JSON values.
type Text string

// UnmarshalJSON keeps strings as-is and any other value as compact JSON.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(textOf(data))
	return nil
}

func textOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Confidence is the model's self-reported confidence in percent, 0-100.
type Confidence float64

// UnmarshalJSON accepts numbers and numeric strings such as "85%". Values
// in (0, 1] are read as ratios.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			return fmt.Errorf("confidence is not a number: %s", data)
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		n, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("confidence is not a number: %q", s)
		}
	}
	*c = NormalizeConfidence(n)
	return nil
}

// NormalizeConfidence scales ratios to percent and clamps to [0, 100].
func NormalizeConfidence(n float64) Confidence {
	if n > 0 && n <= 1 {
		n *= 100
	}
	switch {
	case n < 0:
		n = 0
	case n > 100:
		n = 100
	}
	return Confidence(n)
}

// String formats the confidence without a trailing ".0".
func (c Confidence) String() string {
	return strconv.FormatFloat(float64(c), 'f', -1, 64)
}

// Response is what the remote model reported. Every field is optional.
type Response struct {
	SyntaxErrors    TextList    `json:"syntax_errors,omitempty" yaml:"syntax_errors,omitempty"`
	LogicalIssues   TextList    `json:"logical_issues,omitempty" yaml:"logical_issues,omitempty"`
	StyleIssues     TextList    `json:"style_issues,omitempty" yaml:"style_issues,omitempty"`
	Explanation     *Text       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	FixedCodeOrText *Text       `json:"fixed_code_or_text,omitempty" yaml:"fixed_code_or_text,omitempty"`
	SuggestedTests  TextList    `json:"suggested_tests,omitempty" yaml:"suggested_tests,omitempty"`
	Confidence      *Confidence `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// RawOutput holds the whole reply when no JSON object could be recovered,
	// or the recovered object when one of its known fields was unusable.
	RawOutput string `json:"raw_output,omitempty" yaml:"raw_output,omitempty"`
	Stage     Stage  `json:"-" yaml:"-"`
}

// Unparsed reports whether the response is the raw-text fallback.
func (r Response) Unparsed() bool {
	return r.Stage == StageRaw
}

// ErrorResult is a terminal failure of the remote analysis.
type ErrorResult struct {
	Message string `json:"error" yaml:"error"`
	Raw     string `json:"raw,omitempty" yaml:"raw,omitempty"`
	cause   error
}

func (e *ErrorResult) Error() string { return e.Message }

// Unwrap exposes the transport error, so provider error types stay matchable.
func (e *ErrorResult) Unwrap() error { return e.cause }

// Request is one analysis request.
type Request struct {
	Language checks.Language
	Code     string
}

// Section categories, in display order.
const (
	CategorySyntax  = FieldSyntaxErrors
	CategoryLogical = FieldLogicalIssues
	CategoryStyle   = FieldStyleIssues
)

// IssueSection is one itemized category of the model analysis.
type IssueSection struct {
	Category string   `json:"category" yaml:"category"`
	Title    string   `json:"title" yaml:"title"`
	Items    []string `json:"items" yaml:"items"`
}

// LocalSummary carries the local check findings.
type LocalSummary struct {
	Language checks.Language `json:"language" yaml:"language"`
	Checks   checks.Result   `json:"checks" yaml:"checks"`
}

// ModelSummary is the normalized model analysis. Categories the model did
// not report are absent from Sections.
type ModelSummary struct {
	Sections       []IssueSection `json:"sections" yaml:"sections"`
	Explanation    string         `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	SuggestedTests []string       `json:"suggested_tests,omitempty" yaml:"suggested_tests,omitempty"`
	Confidence     *Confidence    `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	RawOutput      string         `json:"raw_output,omitempty" yaml:"raw_output,omitempty"`
	ParseStage     Stage          `json:"parse_stage" yaml:"parse_stage"`
}

// Section returns the section for category, or nil.
func (m *ModelSummary) Section(category string) *IssueSection {
	if m == nil {
		return nil
	}
	for i := range m.Sections {
		if m.Sections[i].Category == category {
			return &m.Sections[i]
		}
	}
	return nil
}

// FixedArtifact is the corrected code or text proposed by the model.
type FixedArtifact struct {
	Language checks.Language `json:"language" yaml:"language"`
	Content  string          `json:"content" yaml:"content"`
	Diff     string          `json:"diff,omitempty" yaml:"diff,omitempty"`
	Stat     *fixdiff.Stat   `json:"stat,omitempty" yaml:"stat,omitempty"`
}

// Timing contains performance metrics.
type Timing struct {
	ChecksMs int64 `json:"checks_ms" yaml:"checks_ms"`
	ModelMs  int64 `json:"model_ms" yaml:"model_ms"`
	TotalMs  int64 `json:"total_ms" yaml:"total_ms"`
}

// Result is the normalized outcome of one pipeline run. Exactly one of
// Warning, Failure or Model is meaningful for the remote part.
type Result struct {
	RequestID string          `json:"request_id" yaml:"request_id"`
	Language  checks.Language `json:"language" yaml:"language"`
	Warning   string          `json:"warning,omitempty" yaml:"warning,omitempty"`
	Local     *LocalSummary   `json:"local,omitempty" yaml:"local,omitempty"`
	Model     *ModelSummary   `json:"model,omitempty" yaml:"model,omitempty"`
	Fixed     *FixedArtifact  `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Failure   *ErrorResult    `json:"failure,omitempty" yaml:"failure,omitempty"`
	Timing    Timing          `json:"timing" yaml:"timing"`
}

// SyntaxFailed reports whether a local check or the model found syntax errors.
func (r *Result) SyntaxFailed() bool {
	if r.Local != nil && r.Local.Checks.SyntaxFailed() {
		return true
	}
	if s := r.Model.Section(CategorySyntax); s != nil && len(s.Items) > 0 {
		return true
	}
	return false
}

// IssueCount returns the number of itemized model findings.
func (r *Result) IssueCount() int {
	if r.Model == nil {
		return 0
	}
	n := 0
	for _, s := range r.Model.Sections {
		n += len(s.Items)
	}
	return n
}

// MeetsThreshold implements the --fail-on policy: "syntax" fails on syntax
// errors, "any" on any itemized finding or syntax failure.
func (r *Result) MeetsThreshold(threshold string) bool {
	switch threshold {
	case "syntax":
		return r.SyntaxFailed()
	case "any":
		return r.SyntaxFailed() || r.IssueCount() > 0
	default:
		return false
	}
}
