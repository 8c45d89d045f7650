package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/config"
	"github.com/dshills/codecritic/internal/logging"
	"github.com/dshills/codecritic/internal/metrics"
	"github.com/dshills/codecritic/internal/output"
	"github.com/dshills/codecritic/internal/review"
)

// Shared analysis flags
var (
	flagLang        string
	flagProvider    string
	flagModel       string
	flagBaseURL     string
	flagFormat      string
	flagOut         string
	flagFailOn      string
	flagRules       string
	flagRedact      bool
	flagMetricsOut  string
	flagNoSpinner   bool
	flagNoCache     bool
	flagMaxTokens   int
	flagToolTimeout int
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openrouter, openai, anthropic, ollama, lmstudio)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Override the provider endpoint")
}

func addAnalyzeFlags(cmd *cobra.Command) {
	addProviderFlags(cmd)
	cmd.Flags().StringVarP(&flagLang, "lang", "l", "", "Language (python, java, cpp, doc); inferred from the file extension when omitted")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format (text, markdown, json, yaml)")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit 1 when findings meet the threshold (none, syntax, any)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path")
	cmd.Flags().BoolVar(&flagRedact, "redact", false, "Redact secrets before the code is sent to the model")
	cmd.Flags().StringVar(&flagMetricsOut, "metrics-out", "", "Write run metrics in Prometheus textfile format")
	cmd.Flags().BoolVar(&flagNoSpinner, "no-spinner", false, "Disable the progress spinner")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the reply cache")
	cmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens in the model reply")
	cmd.Flags().IntVar(&flagToolTimeout, "tool-timeout", 0, "Per-tool timeout in seconds")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagBaseURL != "" {
		m["baseURL"] = flagBaseURL
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = fmt.Sprintf("%d", flagMaxTokens)
	}
	if flagToolTimeout > 0 {
		m["tools.timeoutSeconds"] = fmt.Sprintf("%d", flagToolTimeout)
	}
	if flagRedact {
		m["privacy.redactSecrets"] = "true"
	}
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	return m
}

// readInput returns the code and the path it came from. No argument or "-"
// reads stdin and reports an empty path.
func readInput(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

// resolveLanguage prefers --lang, then the file extension. Stdin without
// --lang is reviewed as a document.
func resolveLanguage(flag, path string) (checks.Language, error) {
	if flag != "" {
		lang, ok := checks.ParseLanguage(flag)
		if !ok {
			return "", fmt.Errorf("unsupported language %q (want python, java, cpp or doc)", flag)
		}
		return lang, nil
	}
	if path == "" {
		return checks.Doc, nil
	}
	return checks.LanguageFromPath(path), nil
}

func useSpinner() bool {
	if flagNoSpinner {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Review a file or stdin",
	Long: "Run the local checks for the snippet's language, ask the model for a structured review " +
		"and print the local findings, the model analysis and the proposed fix.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if _, err := output.GetWriter(cfg.Format); err != nil {
			return err
		}

		code, path, err := readInput(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}
		lang, err := resolveLanguage(flagLang, path)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		exitCode = runAnalyze(ctx, cfg, review.Request{Language: lang, Code: code}, path)
		return nil
	},
}

func runAnalyze(ctx context.Context, cfg config.Config, req review.Request, path string) int {
	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsageError
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Privacy.RedactSecrets {
		logger.Info("secret redaction enabled")
	}

	popts := pipelineOptions{SourcePath: path, Logger: logger, NoCache: flagNoCache}
	var rec *metrics.Recorder
	if flagMetricsOut != "" {
		rec = metrics.New(false)
		popts.Recorder = rec
	}

	p, err := buildPipeline(cfg, popts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	var s *spinner.Spinner
	if useSpinner() {
		s = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = fmt.Sprintf(" Reviewing %s...", req.Language.DisplayName())
		s.Start()
	}
	res, runErr := p.engine.Run(ctx, req)
	if s != nil {
		s.Stop()
	}

	code := ExitSuccess
	if runErr != nil {
		var er *review.ErrorResult
		if !errors.As(runErr, &er) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		}
		code = exitCodeFor(runErr)
	}

	if res != nil {
		if err := output.WriteResult(res, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			return ExitRuntimeError
		}
	}

	if rec != nil {
		if err := rec.WriteTextfile(flagMetricsOut); err != nil {
			logger.Warn("writing metrics", zap.Error(err))
		}
	}

	switch {
	case code != ExitSuccess:
		return code
	case res.Warning != "":
		fmt.Fprintln(os.Stderr, res.Warning)
		return ExitUsageError
	case res.MeetsThreshold(cfg.FailOn):
		return ExitFindings
	}
	return ExitSuccess
}

func init() {
	addAnalyzeFlags(analyzeCmd)
}
