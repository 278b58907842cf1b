package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/cv-extractor/internal/config"
	"github.com/jonathan/cv-extractor/internal/observability"
	"github.com/spf13/cobra"
)

// loadRuntime resolves configuration from the secrets file, the environment
// and flags, then builds the logger.
func loadRuntime(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := observability.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}
	return cfg, observability.NewLogger(os.Stderr, level), nil
}
