package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/config"
	"github.com/dshills/codecritic/internal/logging"
	"github.com/dshills/codecritic/internal/metrics"
	"github.com/dshills/codecritic/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis pipeline over HTTP",
	Long:  "Start an HTTP server exposing POST /v1/analyze, /healthz, /readyz and /metrics.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagAddr != "" {
			overrides["server.addr"] = flagAddr
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.LogLevel, true)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		rec := metrics.New(true)
		p, err := buildPipeline(cfg, pipelineOptions{Recorder: rec, Logger: logger})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = exitCodeFor(err)
			return nil
		}

		srv := server.New(p.engine, server.Options{
			Version:        version,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			// Local checks and the model call run back to back.
			RequestTimeout: cfg.RemoteTimeout() + 2*cfg.ToolTimeout(),
			Tools:          p.checks,
			Metrics:        rec,
			Logger:         logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			logger.Error("server stopped", zap.Error(err))
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addProviderFlags(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().BoolVar(&flagRedact, "redact", false, "Redact secrets before code is sent to the model")
	serveCmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path")
}
