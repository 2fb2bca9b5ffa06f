// Package main provides the skirmish binary: it loads content, runs a
// scenario interactively or unattended, and validates content trees.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/encounter"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "skirmish",
	Short: "Turn-based tactical skirmish engine",
	Long: `Runs tactical skirmishes on a square grid: heroes under your command
against AI-driven groups, with scenarios, creatures, and maps loaded from YAML
content and optional Lua scenario scripts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs/dev.yaml", "path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is everything a subcommand needs once configuration is loaded.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	content  *encounter.Content
	shutdown func(context.Context) error
}

// bootstrap loads configuration, builds the logger (with opts) and tracer
// provider, and loads content.
//
// Postcondition: on success the caller must call close.
func bootstrap(ctx context.Context, cmd *cobra.Command, opts ...zap.Option) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	content, err := encounter.LoadContent(cfg.Content)
	if err != nil {
		_ = shutdown(ctx)
		_ = logger.Sync()
		return nil, fmt.Errorf("loading content: %w", err)
	}
	c := content.Counts()
	logger.Info("content loaded",
		zap.Int("maps", c.Maps),
		zap.Int("presets", c.Presets),
		zap.Int("scenarios", c.Scenarios),
	)
	return &app{cfg: cfg, logger: logger, content: content, shutdown: shutdown}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}
