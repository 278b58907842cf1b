package main

import (
	"fmt"

	"github.com/jonathan/cv-extractor/internal/ingestion"
	"github.com/jonathan/cv-extractor/internal/llm"
	"github.com/jonathan/cv-extractor/internal/pipeline"
	"github.com/jonathan/cv-extractor/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Long:  `Start an HTTP server with the upload page at / and the JSON endpoint at /api/extract.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the secrets file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	client, err := llm.NewClient(cmd.Context(), cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}
	defer func() { _ = client.Close() }()

	svc := pipeline.NewService(ingestion.NewLoader(cfg.TempDir), client, logger)

	srv, err := server.New(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("Completion provider ready", "provider", client.Provider())
	return srv.Start()
}
