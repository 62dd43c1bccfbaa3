package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kdduha/audioflow/internal/config"
	"github.com/kdduha/audioflow/internal/generation"
	"github.com/kdduha/audioflow/internal/logger"
	"github.com/kdduha/audioflow/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configFile string

// @title AudioFlow API
// @version 1.0
// @description Turns meeting recordings into draw.io swimlane diagrams.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "audioflow: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audioflow",
		Short: "Meeting recordings to draw.io swimlane diagrams",
		Long: `AudioFlow sends a meeting recording to Gemini and turns the answer into a draw.io
document plus a short summary of the business process that was discussed.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (overrides AUDIOFLOW_CONFIG)")
	cmd.AddCommand(
		newServeCmd(),
		newConvertCmd(),
		newWatchCmd(),
	)
	return cmd
}

type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
}

// bootstrap loads config, builds the logger and the Gemini-backed pipeline.
func bootstrap(ctx context.Context) (*app, error) {
	if configFile != "" {
		if err := os.Setenv("AUDIOFLOW_CONFIG", configFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	gemini, err := generation.NewGemini(ctx, cfg.Gemini, log)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	p := pipeline.New(gemini, pipeline.Options{
		Language:        cfg.Pipeline.Language,
		Pacing:          cfg.Pipeline.Pacing,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	}, log)

	log.Info().
		Str("model", gemini.Model()).
		Str("language", cfg.Pipeline.Language).
		Dur("pacing", cfg.Pipeline.Pacing).
		Msg("pipeline ready")

	return &app{cfg: cfg, logger: log, pipeline: p}, nil
}
