package checks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Checker runs the local checks for one language. Implementations record
// tool problems inside the Result rather than returning an error.
type Checker interface {
	Check(ctx context.Context, code string) Result
}

// Options configures a Set. Zero values select the defaults.
type Options struct {
	Timeout              time.Duration
	Python               string
	Pylint               string
	Javac                string
	CXX                  string
	LanguageToolURL      string
	LanguageToolLanguage string
	Runner               Runner
	HTTPClient           *http.Client
	Logger               *zap.Logger
}

// Set holds one checker per supported language.
type Set struct {
	python *PythonChecker
	java   *CompiledChecker
	cpp    *CompiledChecker
	doc    *ProseChecker
	tools  map[Language]string
	runner Runner
	logger *zap.Logger
}

// NewSet builds the checker set.
func NewSet(opts Options) *Set {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Python == "" {
		opts.Python = "python3"
	}
	if opts.Pylint == "" {
		opts.Pylint = "pylint"
	}
	if opts.Javac == "" {
		opts.Javac = "javac"
	}
	if opts.CXX == "" {
		opts.CXX = "g++"
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Set{
		python: NewPythonChecker(opts.Runner, opts.Python, opts.Pylint, opts.Timeout, opts.Logger),
		java:   NewJavaChecker(opts.Runner, opts.Javac, opts.Timeout, opts.Logger),
		cpp:    NewCPPChecker(opts.Runner, opts.CXX, opts.Timeout, opts.Logger),
		doc:    NewProseChecker(opts.LanguageToolURL, opts.LanguageToolLanguage, opts.HTTPClient, opts.Logger),
		tools: map[Language]string{
			Python: opts.Pylint,
			Java:   opts.Javac,
			CPP:    opts.CXX,
			Doc:    opts.LanguageToolURL,
		},
		runner: opts.Runner,
		logger: opts.Logger,
	}
}

// For returns the checker responsible for lang. Anything outside the known
// code languages is treated as a document.
func (s *Set) For(lang Language) Checker {
	switch lang {
	case Python:
		return s.python
	case Java:
		return s.java
	case CPP:
		return s.cpp
	default:
		return s.doc
	}
}

// Check runs the checker for lang. A panicking checker is recorded as
// checker_error so the remote analysis can still proceed.
func (s *Set) Check(ctx context.Context, lang Language, code string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("checker panicked", zap.String("language", string(lang)), zap.Any("panic", r))
			res = Result{KeyCheckerError: fmt.Sprintf("checker panicked: %v", r)}
		}
	}()
	res = s.For(lang).Check(ctx, code)
	if res == nil {
		res = Result{}
	}
	return res
}

// ToolStatus describes whether the external tool behind a language is usable.
type ToolStatus struct {
	Language  Language `json:"language" yaml:"language"`
	Tool      string   `json:"tool" yaml:"tool"`
	Available bool     `json:"available" yaml:"available"`
	Detail    string   `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Detect looks up every tool the set depends on.
func (s *Set) Detect(ctx context.Context) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(Languages))
	for _, lang := range Languages {
		st := ToolStatus{Language: lang, Tool: s.tools[lang]}
		if lang == Doc {
			if err := s.doc.Reachable(ctx); err != nil {
				st.Detail = err.Error()
			} else {
				st.Available = true
			}
		} else if path, err := s.runner.LookPath(st.Tool); err != nil {
			st.Detail = "not installed"
		} else {
			st.Available = true
			st.Detail = path
		}
		statuses = append(statuses, st)
	}
	return statuses
}
