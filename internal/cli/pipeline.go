package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/cache"
	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/config"
	"github.com/dshills/codecritic/internal/fixdiff"
	"github.com/dshills/codecritic/internal/logging"
	"github.com/dshills/codecritic/internal/providers"
	"github.com/dshills/codecritic/internal/redact"
	"github.com/dshills/codecritic/internal/review"
)

// newCompleter is replaced in tests.
var newCompleter = providers.New

// checkRunner is the process runner handed to the checkers; replaced in tests.
var checkRunner checks.Runner = checks.ExecRunner{}

// pipeline bundles what analyze and serve both need.
type pipeline struct {
	engine *review.Engine
	checks *checks.Set
}

// pipelineOptions carries per-command settings that are not configuration.
type pipelineOptions struct {
	// SourcePath is the submitted file, used for path-based redaction.
	SourcePath string
	Recorder   review.Recorder
	Logger     *zap.Logger
	// NoCache bypasses the reply cache even when it is enabled.
	NoCache bool
}

// openCache opens the configured reply cache directory.
func openCache(cfg config.Config) (*cache.Store, error) {
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTLSeconds)
}

func checkOptions(cfg config.Config, logger *zap.Logger) checks.Options {
	return checks.Options{
		Timeout:              cfg.ToolTimeout(),
		Python:               cfg.Tools.Python,
		Pylint:               cfg.Tools.Pylint,
		Javac:                cfg.Tools.Javac,
		CXX:                  cfg.Tools.CXX,
		LanguageToolURL:      cfg.Tools.LanguageToolURL,
		LanguageToolLanguage: cfg.Tools.LanguageToolLanguage,
		Runner:               checkRunner,
		Logger:               logger,
	}
}

func buildPipeline(cfg config.Config, opts pipelineOptions) (*pipeline, error) {
	logger := logging.OrNop(opts.Logger)

	completer, err := newCompleter(cfg.ProviderSettings())
	if err != nil {
		return nil, err
	}
	cached := cfg.Cache.Enabled && !opts.NoCache
	if cached {
		store, err := openCache(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		model := cfg.Model
		if model == "" {
			model = providers.DefaultModel(cfg.Provider)
		}
		completer = cache.Wrap(completer, store, model, cfg.BaseURL, logger)
	}
	analyzer := review.NewAnalyzer(completer,
		review.WithMaxTokens(cfg.MaxTokens),
		review.WithTemperature(cfg.Temperature),
		review.WithAnalyzerLogger(logger),
	)

	rules, err := review.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	set := checks.NewSet(checkOptions(cfg, logger))
	engineOpts := []review.Option{
		review.WithLogger(logger),
		review.WithRules(rules),
		review.WithDiffer(fixdiff.GitDiffer{}),
		review.WithRecorder(opts.Recorder),
	}
	if cfg.Privacy.RedactSecrets {
		engineOpts = append(engineOpts, review.WithRedaction(redact.For(opts.SourcePath, cfg.Privacy.RedactPaths)))
	}

	logger.Debug("pipeline ready",
		zap.String("provider", completer.Name()),
		zap.Bool("redact", cfg.Privacy.RedactSecrets),
		zap.Bool("rules", rules != nil),
		zap.Bool("cache", cached),
	)
	return &pipeline{engine: review.NewEngine(set, analyzer, engineOpts...), checks: set}, nil
}

// exitCodeFor maps a pipeline error to a process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if providers.IsAuthError(err) {
		return ExitAuthError
	}
	return ExitRuntimeError
}
