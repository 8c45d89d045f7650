package checks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPythonCheckerSyntaxError(t *testing.T) {
	fr := &fakeRunner{}
	set := NewSet(Options{Runner: fr})

	res := set.Check(context.Background(), Python, "print('Hello Word'")

	assert.Equal(t, false, res[KeySyntaxOK])
	assert.Contains(t, res[KeyError], "line")
	assert.Equal(t, PylintMissingMsg, res[KeyPylint])
	assert.Empty(t, fr.calls)
}

func TestPythonCheckerClean(t *testing.T) {
	fr := &fakeRunner{}
	set := NewSet(Options{Runner: fr})

	res := set.Check(context.Background(), Python, "print('Hello World')")

	assert.Equal(t, true, res[KeySyntaxOK])
	assert.NotContains(t, res, KeyError)
	assert.Equal(t, PylintMissingMsg, res[KeyPylint])
}

func TestPythonCheckerCompilesWithInterpreter(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		verdict RunResult
		wantOK  bool
		wantErr string
	}{
		{"py2 print", "print 'hello'", RunResult{Output: "1\tMissing parentheses in call to 'print'. Did you mean print(...)?", ExitCode: 1}, false, "SyntaxError (line 1): Missing parentheses in call to 'print'. Did you mean print(...)?"},
		{"return outside function", "return 5", RunResult{Output: "1\t'return' outside function", ExitCode: 1}, false, "SyntaxError (line 1): 'return' outside function"},
		{"py2 exec", "exec 'x = 1'", RunResult{Output: "1\tMissing parentheses in call to 'exec'", ExitCode: 1}, false, "SyntaxError (line 1): Missing parentheses in call to 'exec'"},
		{"bad dedent", "def f():\n    x = 1\n  y = 2\n", RunResult{Output: "3\tunindent does not match any outer indentation level", ExitCode: 1}, false, "SyntaxError (line 3): unindent does not match any outer indentation level"},
		{"clean", "print('Hello World')", RunResult{}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeRunner{
				installed: map[string]bool{"python3": true},
				results:   map[string]RunResult{"python3": tt.verdict},
				readFile:  "snippet.py",
			}
			set := NewSet(Options{Runner: fr})

			res := set.Check(context.Background(), Python, tt.code)

			require.Len(t, fr.calls, 1)
			call := fr.calls[0]
			assert.Equal(t, "python3", call.name)
			assert.Equal(t, []string{"-c", compileScript, "snippet.py"}, call.args)
			assert.Equal(t, tt.code, call.content)
			assert.Equal(t, tt.wantOK, res[KeySyntaxOK])
			if tt.wantErr == "" {
				assert.NotContains(t, res, KeyError)
			} else {
				assert.Equal(t, tt.wantErr, res[KeyError])
			}
		})
	}
}

func TestPythonCheckerInterpreterWithoutVerdictFallsBack(t *testing.T) {
	fr := &fakeRunner{
		installed: map[string]bool{"python3": true},
		results:   map[string]RunResult{"python3": {ExitCode: -1, Err: fmt.Errorf("python3 %w after 20s", ErrTimeout)}},
	}
	set := NewSet(Options{Runner: fr})

	res := set.Check(context.Background(), Python, "print('Hello Word'")

	assert.Equal(t, false, res[KeySyntaxOK])
	assert.Contains(t, res[KeyError], "line 1")
}

func TestParseCompileVerdict(t *testing.T) {
	synErr, ok := parseCompileVerdict(RunResult{Output: "SyntaxWarning: invalid escape\n2\tinvalid syntax", ExitCode: 1})
	require.True(t, ok)
	assert.Equal(t, SyntaxError{Line: 2, Message: "invalid syntax"}, *synErr)

	_, ok = parseCompileVerdict(RunResult{Output: "Traceback: MemoryError", ExitCode: 1})
	assert.False(t, ok)

	synErr, ok = parseCompileVerdict(RunResult{ExitCode: 0})
	assert.True(t, ok)
	assert.Nil(t, synErr)
}

func TestPythonCheckerRunsPylint(t *testing.T) {
	fr := &fakeRunner{
		installed: map[string]bool{"pylint": true},
		result:    RunResult{Output: "snippet.py:1:0: W0611: Unused import os", ExitCode: 4},
		readFile:  "snippet.py",
	}
	set := NewSet(Options{Runner: fr})

	res := set.Check(context.Background(), Python, "import os\n")

	require.Len(t, fr.calls, 1)
	call := fr.calls[0]
	assert.Equal(t, "pylint", call.name)
	assert.Equal(t, []string{"--disable=R,C", "--score=no", "snippet.py"}, call.args)
	assert.Equal(t, "import os\n", call.content)
	assert.Equal(t, "snippet.py:1:0: W0611: Unused import os", res[KeyPylint])
	assert.NotContains(t, res, KeyPylintError)

	_, err := os.Stat(call.dir)
	assert.True(t, os.IsNotExist(err), "workspace %s should be removed", call.dir)
}

func TestPythonCheckerPylintTimeout(t *testing.T) {
	fr := &fakeRunner{
		installed: map[string]bool{"pylint": true},
		result:    RunResult{ExitCode: -1, Err: fmt.Errorf("pylint %w after 20s", ErrTimeout)},
	}
	set := NewSet(Options{Runner: fr})

	res := set.Check(context.Background(), Python, "x = 1\n")

	assert.Contains(t, res[KeyPylintError], "timed out")
}

func TestJavaChecker(t *testing.T) {
	fr := &fakeRunner{
		installed: map[string]bool{"javac": true},
		result:    RunResult{Output: "Main.java:1: error: ';' expected", ExitCode: 1},
		readFile:  "Main.java",
	}
	set := NewSet(Options{Runner: fr})
	code := "public class Main { void f() { int x = 1 } }"

	res := set.Check(context.Background(), Java, code)

	require.Len(t, fr.calls, 1)
	call := fr.calls[0]
	assert.Equal(t, "javac", call.name)
	assert.Equal(t, []string{"-Xlint", "-d", call.dir, "Main.java"}, call.args)
	assert.Equal(t, code, call.content)
	assert.Equal(t, 1, res[KeyReturnCode])
	assert.Equal(t, "Main.java:1: error: ';' expected", res["javac_output"])
	assert.Equal(t, false, res[KeySyntaxOK])
	assert.Contains(t, res, KeySyntaxError)

	_, err := os.Stat(call.dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCPPCheckerMissingCompiler(t *testing.T) {
	fr := &fakeRunner{}
	set := NewSet(Options{Runner: fr, CXX: "clang++"})

	res := set.Check(context.Background(), CPP, "int main() { return 0; }")

	assert.Empty(t, fr.calls)
	assert.Equal(t, -1, res[KeyReturnCode])
	assert.Equal(t, "clang++ not installed", res["gpp_output"])
	assert.Equal(t, true, res[KeySyntaxOK])
}

func TestCPPCheckerTimeout(t *testing.T) {
	fr := &fakeRunner{
		installed: map[string]bool{"g++": true},
		result:    RunResult{ExitCode: -1, Err: fmt.Errorf("g++ %w after 20s", ErrTimeout)},
	}
	set := NewSet(Options{Runner: fr})

	res := set.Check(context.Background(), CPP, "int main() { return 0; }")

	require.Len(t, fr.calls, 1)
	assert.Equal(t, []string{"-std=c++17", "-fsyntax-only", "snippet.cpp"}, fr.calls[0].args)
	assert.Equal(t, -1, res[KeyReturnCode])
	assert.Equal(t, "g++ timed out after 20s", res["gpp_output"])
}

func languageToolServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "en-US", r.PostForm.Get("language"))
		if r.PostForm.Get("text") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"matches":[{"message":"Possible spelling mistake found.",
			"replacements":[{"value":"World"},{"value":"Word"}],
			"context":{"text":"Hello Wrold","offset":6,"length":5}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDocChecker(t *testing.T) {
	srv := languageToolServer(t)
	set := NewSet(Options{LanguageToolURL: srv.URL})

	res := set.Check(context.Background(), Doc, "Hello Wrold")

	assert.Equal(t, 1, res[KeyIssueCount])
	details, ok := res[KeyDetails].([]GrammarIssue)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "Possible spelling mistake found.", details[0].Message)
	assert.Equal(t, []string{"World", "Word"}, details[0].Suggestions)
	assert.Equal(t, "Hello Wrold", details[0].Context)
}

func TestDocCheckerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	set := NewSet(Options{LanguageToolURL: url})
	res := set.Check(context.Background(), Doc, "Hello")

	assert.Contains(t, res[KeyGrammarCheck], "languagetool not available")
	assert.NotContains(t, res, KeyIssueCount)
}

func TestDocCheckerUnconfigured(t *testing.T) {
	set := NewSet(Options{})
	res := set.Check(context.Background(), Doc, "Hello")
	assert.Equal(t, "languagetool not available: no server configured", res[KeyGrammarCheck])
}

func TestUnknownLanguageUsesDocChecker(t *testing.T) {
	set := NewSet(Options{})
	assert.Same(t, set.doc, set.For(Language("rust")))
	assert.Same(t, set.doc, set.For(Doc))
}

type panickingRunner struct{ fakeRunner }

func (*panickingRunner) LookPath(string) (string, error) { panic("boom") }

func TestSetCheckRecoversPanic(t *testing.T) {
	set := NewSet(Options{Runner: &panickingRunner{}})

	res := set.Check(context.Background(), Java, "class A {}")

	assert.Equal(t, "checker panicked: boom", res[KeyCheckerError])
}

func TestDetect(t *testing.T) {
	srv := languageToolServer(t)
	fr := &fakeRunner{installed: map[string]bool{"pylint": true, "g++": true}}
	set := NewSet(Options{Runner: fr, LanguageToolURL: srv.URL})

	statuses := set.Detect(context.Background())

	require.Len(t, statuses, 4)
	byLang := map[Language]ToolStatus{}
	for _, s := range statuses {
		byLang[s.Language] = s
	}
	assert.True(t, byLang[Python].Available)
	assert.False(t, byLang[Java].Available)
	assert.Equal(t, "not installed", byLang[Java].Detail)
	assert.True(t, byLang[CPP].Available)
	assert.True(t, byLang[Doc].Available)
}
