package checks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultJSON(t *testing.T) {
	r := Result{"returncode": 1, "gpp_output": "#include <iostream>", "syntax_ok": false}
	want := "{\n  \"gpp_output\": \"#include <iostream>\",\n  \"returncode\": 1,\n  \"syntax_ok\": false\n}"
	assert.Equal(t, want, r.JSON())
	assert.Equal(t, r.JSON(), r.JSON())
}

func TestResultJSONNil(t *testing.T) {
	var r Result
	assert.Equal(t, "{}", r.JSON())
}

func TestSyntaxFailed(t *testing.T) {
	assert.True(t, Result{KeySyntaxOK: false}.SyntaxFailed())
	assert.False(t, Result{KeySyntaxOK: true}.SyntaxFailed())
	assert.False(t, Result{KeyReturnCode: 1}.SyntaxFailed())
}

func TestResultMapStrings(t *testing.T) {
	r := Result{
		"gpp_output": "token=abc",
		"returncode": 1,
		"syntax_ok":  false,
		"details":    []GrammarIssue{{Message: "abc here", Suggestions: []string{"abc"}, Context: "x"}},
	}
	mask := func(s string) string { return strings.ReplaceAll(s, "abc", "***") }

	got := r.MapStrings(mask)

	assert.Equal(t, "token=***", got["gpp_output"])
	assert.Equal(t, false, got["syntax_ok"])
	assert.Equal(t, "token=abc", r["gpp_output"], "original must be untouched")
	assert.NotContains(t, got.JSON(), "abc")
	assert.Contains(t, got.JSON(), `"returncode": 1`)
}
