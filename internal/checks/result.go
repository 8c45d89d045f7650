package checks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Result maps a check name to its finding. Values are bools, strings, ints
// or small structs; the shape differs per language.
type Result map[string]any

// Keys used across checkers.
const (
	KeySyntaxOK      = "syntax_ok"
	KeyError         = "error"
	KeySyntaxError   = "syntax_error"
	KeyPylint        = "pylint"
	KeyPylintError   = "pylint_error"
	KeyReturnCode    = "returncode"
	KeyIssueCount    = "issue_count"
	KeyDetails       = "details"
	KeyGrammarCheck  = "grammar_check"
	KeyCheckerError  = "checker_error"
	PylintMissingMsg = "pylint not installed"
)

// GrammarIssue is one LanguageTool match.
type GrammarIssue struct {
	Message     string   `json:"message" yaml:"message"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
	Context     string   `json:"context" yaml:"context"`
}

// JSON renders the result as indented JSON. Map keys are sorted by the
// encoder, so equal results always render identically. HTML escaping is
// off so compiler output like <iostream> stays readable.
func (r Result) JSON() string {
	if r == nil {
		r = Result{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Sprintf("{\"%s\": %q}", KeyCheckerError, err.Error())
	}
	return strings.TrimRight(buf.String(), "\n")
}

// SyntaxFailed reports whether a checker positively detected a syntax error.
// A missing syntax_ok field is not a failure.
func (r Result) SyntaxFailed() bool {
	ok, present := r[KeySyntaxOK].(bool)
	return present && !ok
}

// MapStrings returns a copy of r with fn applied to every string it holds,
// including strings nested in lists and structs. The copy is built from the
// JSON form, so struct values come back as maps.
func (r Result) MapStrings(fn func(string) string) Result {
	data, err := json.Marshal(r)
	if err != nil {
		return Result{KeyCheckerError: fn(err.Error())}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic map[string]any
	if err := dec.Decode(&generic); err != nil {
		return Result{KeyCheckerError: fn(err.Error())}
	}
	out := make(Result, len(generic))
	for k, v := range generic {
		out[k] = mapStrings(v, fn)
	}
	return out
}

func mapStrings(v any, fn func(string) string) any {
	switch t := v.(type) {
	case string:
		return fn(t)
	case []any:
		for i := range t {
			t[i] = mapStrings(t[i], fn)
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = mapStrings(t[k], fn)
		}
		return t
	default:
		return v
	}
}
