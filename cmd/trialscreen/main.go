/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the trialscreen CLI: prepare and index a patient cohort,
// screen it against study criteria, draft criteria from trial text, and
// evaluate screening quality with an LLM judge.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/trialscreen/agents/retry"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

type config struct {
	// Model drives the verifier and the criteria parser.
	Model string `env:"TRIALSCREEN_MODEL,default=gemini-2.5-flash"`
	// JudgeModel drives evaluate; it defaults to Model.
	JudgeModel string `env:"TRIALSCREEN_JUDGE_MODEL"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// Vertex AI is used when the provider has no API key. The project is
	// detected from the metadata server when unset.
	Project string `env:"GOOGLE_CLOUD_PROJECT"`
	Region  string `env:"GOOGLE_CLOUD_REGION,default=us-central1"`

	// Without a database URL patients are indexed in memory per run.
	DatabaseURL string `env:"DATABASE_URL"`
	Table       string `env:"TRIALSCREEN_TABLE,default=patient_documents"`

	EmbeddingModel      string `env:"EMBEDDING_MODEL,default=gemini-embedding-001"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS,default=768"`

	TopK    int `env:"TOP_K,default=3"`
	Workers int `env:"WORKERS,default=4"`

	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC,default=trialscreen.match-results"`

	MetricsAddr string `env:"METRICS_ADDR"`

	// Retry applies to generation and embedding calls.
	Retry retry.Config `env:", prefix=RETRY_"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	if err := newRootCommand(&cfg).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "trialscreen",
		Short:         "Screen patient cohorts for clinical trial eligibility",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			runID := uuid.NewString()
			logger := clog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
				With("run_id", runID)
			ctx := clog.WithLogger(cmd.Context(), logger)
			ctx = withRunID(ctx, runID)
			if cfg.MetricsAddr != "" {
				go serveMetrics(ctx, cfg.MetricsAddr)
			}
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newPrepareCommand(),
		newIndexCommand(cfg),
		newScreenCommand(cfg),
		newParseCriteriaCommand(cfg),
		newEvaluateCommand(cfg),
	)
	return root
}

type runIDKey struct{}

func withRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// serveMetrics exposes the Prometheus registry until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	clog.InfoContextf(ctx, "Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.ErrorContextf(ctx, "metrics server: %v", err)
	}
}
