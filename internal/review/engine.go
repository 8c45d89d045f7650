package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/fixdiff"
)

// EmptyCodeWarning is returned instead of running anything when the
// submitted code is blank.
const EmptyCodeWarning = "Please paste your code!"

// LocalChecks runs the local checkers. *checks.Set implements it.
type LocalChecks interface {
	Check(ctx context.Context, lang checks.Language, code string) checks.Result
}

// RemoteAnalyzer obtains the model analysis. *Analyzer implements it.
type RemoteAnalyzer interface {
	Analyze(ctx context.Context, prompt string) (Response, error)
}

// Differ renders the change between the submitted and the fixed code.
type Differ interface {
	Diff(ctx context.Context, name, before, after string) (fixdiff.Patch, error)
}

// Recorder observes pipeline outcomes. The metrics package implements it.
type Recorder interface {
	ObserveRun(language, outcome string, d time.Duration)
	ObserveCheck(language string, d time.Duration)
	ObserveRemote(outcome string, d time.Duration)
	ObserveParse(stage string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(string, string, time.Duration) {}
func (nopRecorder) ObserveCheck(string, time.Duration)       {}
func (nopRecorder) ObserveRemote(string, time.Duration)      {}
func (nopRecorder) ObserveParse(string)                      {}

// Run outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeWarning  = "warning"
	OutcomeFailure  = "failure"
	OutcomeDegraded = "degraded"
)

// Engine is the analysis pipeline: checks, prompt, remote analysis and
// normalization.
type Engine struct {
	checks   LocalChecks
	analyzer RemoteAnalyzer
	rules    *Rules
	redact   func(string) string
	differ   Differ
	recorder Recorder
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithRules appends a rules pack to every prompt.
func WithRules(r *Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithRedaction scrubs the code and the local check output before they are
// embedded in the prompt. Local checks and the returned Result still see the
// originals.
func WithRedaction(fn func(string) string) Option {
	return func(e *Engine) { e.redact = fn }
}

// WithDiffer attaches a unified diff to the fixed artifact.
func WithDiffer(d Differ) Option {
	return func(e *Engine) { e.differ = d }
}

// NewEngine creates the pipeline.
func NewEngine(lc LocalChecks, ra RemoteAnalyzer, opts ...Option) *Engine {
	e := &Engine{
		checks:   lc,
		analyzer: ra,
		recorder: nopRecorder{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one analysis. Blank code yields a Result carrying only a
// warning. A remote failure yields a Result with Local and Failure set and
// the same *ErrorResult as the error; nothing is normalized in that case.
func (e *Engine) Run(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	lang, _ := checks.ParseLanguage(string(req.Language))
	res = &Result{RequestID: uuid.NewString(), Language: lang}
	log := e.logger.With(zap.String("request_id", res.RequestID), zap.String("language", string(lang)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panicked", zap.Any("panic", r))
			failure := &ErrorResult{Message: fmt.Sprintf("internal error: %v", r)}
			res.Model, res.Fixed, res.Failure = nil, nil, failure
			err = failure
		}
		res.Timing.TotalMs = time.Since(start).Milliseconds()
		e.recorder.ObserveRun(string(lang), outcomeOf(res), time.Since(start))
	}()

	if strings.TrimSpace(req.Code) == "" {
		res.Warning = EmptyCodeWarning
		log.Info("empty input, skipping analysis")
		return res, nil
	}

	checkStart := time.Now()
	local := e.checks.Check(ctx, lang, req.Code)
	checkDur := time.Since(checkStart)
	res.Timing.ChecksMs = checkDur.Milliseconds()
	res.Local = &LocalSummary{Language: lang, Checks: local}
	e.recorder.ObserveCheck(string(lang), checkDur)
	log.Debug("local checks complete", zap.Duration("duration", checkDur), zap.Int("checks", len(local)))

	// Compiler diagnostics quote source lines, so the check output is
	// scrubbed along with the code. res.Local keeps the originals.
	promptCode, promptLocal := req.Code, local
	if e.redact != nil {
		promptCode = e.redact(promptCode)
		promptLocal = local.MapStrings(e.redact)
	}
	prompt := BuildPromptWithRules(lang, promptCode, promptLocal, e.rules)

	modelStart := time.Now()
	resp, err := e.analyzer.Analyze(ctx, prompt)
	modelDur := time.Since(modelStart)
	res.Timing.ModelMs = modelDur.Milliseconds()
	if err != nil {
		e.recorder.ObserveRemote(OutcomeFailure, modelDur)
		var er *ErrorResult
		if !errors.As(err, &er) {
			er = &ErrorResult{Message: "Request failed: " + err.Error(), cause: err}
		}
		res.Failure = er
		log.Warn("remote analysis failed", zap.String("error", er.Message))
		return res, er
	}
	e.recorder.ObserveRemote(OutcomeOK, modelDur)
	e.recorder.ObserveParse(string(resp.Stage))

	res.Model = summarize(resp)
	res.Fixed = e.fixedArtifact(ctx, lang, req.Code, resp, log)
	log.Info("analysis complete",
		zap.String("stage", string(resp.Stage)),
		zap.Int("issues", res.IssueCount()),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func outcomeOf(res *Result) string {
	switch {
	case res.Failure != nil:
		return OutcomeFailure
	case res.Warning != "":
		return OutcomeWarning
	case res.Model != nil && res.Model.ParseStage == StageRaw:
		return OutcomeDegraded
	default:
		return OutcomeOK
	}
}

var sectionTitles = map[string]string{
	CategorySyntax:  "Syntax Errors",
	CategoryLogical: "Logical Issues",
	CategoryStyle:   "Style Issues",
}

// summarize normalizes a Response. Fields the model did not report are left
// out; the raw fallback is carried through untouched.
func summarize(resp Response) *ModelSummary {
	m := &ModelSummary{
		Sections:   []IssueSection{},
		ParseStage: resp.Stage,
		RawOutput:  resp.RawOutput,
		Confidence: resp.Confidence,
	}
	for _, s := range []struct {
		category string
		items    TextList
	}{
		{CategorySyntax, resp.SyntaxErrors},
		{CategoryLogical, resp.LogicalIssues},
		{CategoryStyle, resp.StyleIssues},
	} {
		if s.items == nil {
			continue
		}
		m.Sections = append(m.Sections, IssueSection{
			Category: s.category,
			Title:    sectionTitles[s.category],
			Items:    []string(s.items),
		})
	}
	if resp.Explanation != nil {
		m.Explanation = string(*resp.Explanation)
	}
	if resp.SuggestedTests != nil {
		m.SuggestedTests = []string(resp.SuggestedTests)
	}
	return m
}

func (e *Engine) fixedArtifact(ctx context.Context, lang checks.Language, original string, resp Response, log *zap.Logger) *FixedArtifact {
	if resp.FixedCodeOrText == nil {
		return nil
	}
	fixed := &FixedArtifact{Language: lang, Content: string(*resp.FixedCodeOrText)}
	if e.differ == nil {
		return fixed
	}
	patch, err := e.differ.Diff(ctx, lang.FileName(), original, fixed.Content)
	if err != nil {
		log.Debug("fix diff unavailable", zap.Error(err))
		return fixed
	}
	fixed.Diff = patch.Unified
	if patch.Unified != "" {
		stat := patch.Stat
		fixed.Stat = &stat
	}
	return fixed
}
