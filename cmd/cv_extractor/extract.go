package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jonathan/cv-extractor/internal/ingestion"
	"github.com/jonathan/cv-extractor/internal/llm"
	"github.com/jonathan/cv-extractor/internal/observability"
	"github.com/jonathan/cv-extractor/internal/pipeline"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a résumé from a PDF file and print the JSON result",
	Long: "Runs the same pipeline as the web UI on a local PDF. The JSON result is written " +
		"to stdout; summaries, warnings and errors go to stderr.",
	RunE: runExtract,
}

var (
	extractPDFFile    string
	extractPromptFile string
	extractVerbose    bool
)

// errExtractionFailed is returned after the failure has been printed.
var errExtractionFailed = errors.New("extraction failed")

func init() {
	extractCmd.Flags().StringVarP(&extractPDFFile, "pdf", "p", "", "Path to the résumé PDF (required)")
	extractCmd.Flags().StringVarP(&extractPromptFile, "prompt", "t", "", "Path to a prompt template file containing {pdf_text} (default template when omitted)")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print the extracted document summary and pipeline progress")

	if err := extractCmd.MarkFlagRequired("pdf"); err != nil {
		panic(fmt.Sprintf("failed to mark pdf flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	template, err := readTemplate(extractPromptFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client, err := llm.NewClient(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}
	defer func() { _ = client.Close() }()

	var opts []pipeline.Option
	if extractVerbose {
		opts = append(opts, pipeline.WithProgress(progressLogger(logger)))
	}
	loader := ingestion.NewLoader(cfg.TempDir)
	svc := pipeline.NewService(loader, client, logger, opts...)

	return extractFile(ctx, loader, svc, extractRequest{
		Path:     extractPDFFile,
		Template: template,
		Verbose:  extractVerbose,
	}, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

type extractRequest struct {
	Path     string
	Template string
	Verbose  bool
}

// extractFile runs one local PDF through svc. The indented JSON result goes
// to out; everything else goes to errOut.
func extractFile(ctx context.Context, loader *ingestion.Loader, svc *pipeline.Service, req extractRequest, out, errOut io.Writer) error {
	printer := observability.NewPrinter(errOut)

	doc, err := loader.ExtractFile(ctx, req.Path)
	if err != nil {
		printer.PrintFailure(string(pipeline.KindDocument), err.Error(), "")
		return errExtractionFailed
	}
	if req.Verbose {
		printer.PrintDocument(req.Path, doc.Pages, doc.Text)
	}

	outcome := svc.RunText(ctx, doc.Text, req.Template)
	if !outcome.OK() {
		raw := ""
		if outcome.Kind == pipeline.KindInvalidJSON {
			raw = outcome.Raw
		}
		printer.PrintFailure(string(outcome.Kind), outcome.Message(), raw)
		return errExtractionFailed
	}

	printer.PrintWarnings(outcome.Warnings)
	if _, err := fmt.Fprintln(out, outcome.Result.Indented()); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// readTemplate returns the template in path, or "" for the default.
func readTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return string(content), nil
}

func progressLogger(logger *slog.Logger) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		logger.Info(e.Message, "step", e.Step)
	}
}
