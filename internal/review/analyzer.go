package review

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/providers"
)

// Defaults for the remote call.
const (
	DefaultMaxTokens   = 2500
	DefaultTemperature = 0.1
)

// Analyzer sends a prompt to a chat-completion provider and recovers a
// Response from the reply.
type Analyzer struct {
	completer   providers.Completer
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithMaxTokens overrides the response length limit.
func WithMaxTokens(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) AnalyzerOption {
	return func(a *Analyzer) { a.temperature = t }
}

// WithAnalyzerLogger sets the logger.
func WithAnalyzerLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer wraps a provider.
func NewAnalyzer(c providers.Completer, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		completer:   c,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze makes exactly one provider call. Transport and protocol failures
// come back as *ErrorResult; an unparseable reply does not, it degrades to
// the raw-text fallback.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (Response, error) {
	start := time.Now()
	out, err := a.completer.Complete(ctx, providers.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		er := toErrorResult(err)
		a.logger.Warn("remote analysis failed",
			zap.String("provider", a.completer.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return Response{}, er
	}

	resp := ParseReply(out.Content)
	a.logger.Debug("remote analysis complete",
		zap.String("provider", a.completer.Name()),
		zap.Int("tokens", out.TokensUsed),
		zap.String("stage", string(resp.Stage)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func toErrorResult(err error) *ErrorResult {
	var se *providers.StatusError
	if errors.As(err, &se) {
		return &ErrorResult{Message: "Request failed: " + se.Body, cause: err}
	}
	var de *providers.DecodeError
	if errors.As(err, &de) {
		return &ErrorResult{Message: "Response parse error: " + de.Error(), Raw: de.Body, cause: err}
	}
	return &ErrorResult{Message: "Request failed: " + err.Error(), cause: err}
}
