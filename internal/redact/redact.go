package redact

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// rule is one secret shape. Rules run in order, so narrow provider formats
// come before the generic ones that would also match them.
type rule struct {
	kind string
	re   *regexp.Regexp
}

var rules = []rule{
	{"private-key", regexp.MustCompile(`(?s)-----BEGIN ([A-Z]+ )?PRIVATE KEY-----.*?(-----END ([A-Z]+ )?PRIVATE KEY-----|\z)`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"openrouter-key", regexp.MustCompile(`sk-or-v1-[A-Za-z0-9]{32,}`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_-]{20,}`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`)},
	{"connection-string", regexp.MustCompile(`(?i)\b(postgres(ql)?|mysql|mongodb(\+srv)?|redis|amqp)://[^:\s/@]+:[^@\s]+@`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"hex-secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
	{"credential", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
}

// Report counts replacements by secret kind.
type Report map[string]int

// Total is the number of replacements.
func (r Report) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// Kinds lists the kinds found, sorted.
func (r Report) Kinds() []string {
	kinds := make([]string, 0, len(r))
	for k := range r {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func marker(kind string) string {
	return fmt.Sprintf("[REDACTED:%s]", kind)
}

// Scrub replaces every detected secret with a [REDACTED:<kind>] marker.
func Scrub(text string) (string, Report) {
	report := Report{}
	for _, r := range rules {
		text = r.re.ReplaceAllStringFunc(text, func(string) string {
			report[r.kind]++
			return marker(r.kind)
		})
	}
	return text, report
}

// Secrets is Scrub without the report.
func Secrets(text string) string {
	out, _ := Scrub(text)
	return out
}

// Count returns how many secrets Scrub would replace.
func Count(text string) int {
	_, report := Scrub(text)
	return report.Total()
}

// MatchPath reports whether path matches any glob. A leading "**/" matches
// at any depth, so "**/.env" covers both ".env" and "svc/app/.env".
func MatchPath(p string, globs []string) bool {
	p = filepath.ToSlash(filepath.Clean(p))
	segs := strings.Split(p, "/")
	for _, g := range globs {
		g = filepath.ToSlash(g)
		rest, anyDepth := strings.CutPrefix(g, "**/")
		if !anyDepth {
			if ok, _ := path.Match(g, p); ok {
				return true
			}
			continue
		}
		for i := range segs {
			if ok, _ := path.Match(rest, strings.Join(segs[i:], "/")); ok {
				return true
			}
		}
	}
	return false
}

// withheld replaces the whole content of a file matched by path policy.
const withheld = "[REDACTED:file] (content withheld by path policy)\n"

// For returns the redaction applied to code submitted from path. Files
// matching globs are withheld entirely; everything else is scrubbed. An
// empty path (stdin, HTTP body) is only scrubbed.
func For(path string, globs []string) func(string) string {
	if path != "" && MatchPath(path, globs) {
		return func(string) string { return withheld }
	}
	return Secrets
}
