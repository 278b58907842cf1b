// Package pipeline runs one résumé through extraction, prompt assembly,
// completion and parsing, and classifies the outcome.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/cv-extractor/internal/ingestion"
	"github.com/jonathan/cv-extractor/internal/llm"
	"github.com/jonathan/cv-extractor/internal/observability"
	"github.com/jonathan/cv-extractor/internal/prompts"
	"github.com/jonathan/cv-extractor/internal/result"
	"github.com/jonathan/cv-extractor/internal/schemas"
)

// Step names reported through ProgressEvent.
const (
	StepExtract  = "extract_document"
	StepAssemble = "assemble_prompt"
	StepComplete = "complete"
	StepParse    = "parse_result"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Extractor turns an uploaded PDF into text.
type Extractor interface {
	ExtractUpload(ctx context.Context, upload io.Reader) (*ingestion.Document, error)
}

// Request is one submission from the UI or API.
type Request struct {
	// Document is the uploaded PDF; nil means no file was provided.
	Document io.Reader
	// Template is the user prompt template; empty selects the default.
	Template string
}

// Service runs submissions. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	extractor  Extractor
	client     llm.Client
	logger     *slog.Logger
	params     llm.GenerationParams
	now        func() time.Time
	onProgress ProgressCallback
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for the year in the system instruction.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithProgress registers a callback for step progress.
func WithProgress(cb ProgressCallback) Option {
	return func(s *Service) { s.onProgress = cb }
}

// WithParams overrides the generation parameters.
func WithParams(params llm.GenerationParams) Option {
	return func(s *Service) { s.params = params }
}

// NewService creates a Service. logger is the fallback when the request
// context carries none.
func NewService(extractor Extractor, client llm.Client, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		extractor: extractor,
		client:    client,
		logger:    logger,
		params:    llm.DefaultParams(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the full pipeline for req. Without a document it returns a
// KindMissingUpload outcome and makes no outbound call.
func (s *Service) Run(ctx context.Context, req Request) Outcome {
	logger := observability.LoggerFrom(ctx, s.logger)

	if req.Document == nil {
		logger.Info("generation requested without upload")
		return failure(KindMissingUpload, ErrMissingUpload)
	}

	s.emit(StepExtract, "extracting text from PDF")
	doc, err := s.extractor.ExtractUpload(ctx, req.Document)
	if err != nil {
		logger.Warn("document extraction failed", "error", err)
		var docErr *ingestion.DocumentError
		if !errors.As(err, &docErr) {
			err = &ingestion.DocumentError{Message: "failed to process upload", Cause: err}
		}
		return failure(KindDocument, err)
	}
	logger.Info("document extracted", "pages", doc.Pages, "chars", len(doc.Text), "sha256", doc.Hash)

	outcome := s.RunText(ctx, doc.Text, req.Template)
	outcome.Document = doc
	return outcome
}

// RunText runs prompt assembly, completion and parsing on already extracted text.
func (s *Service) RunText(ctx context.Context, text string, template string) Outcome {
	logger := observability.LoggerFrom(ctx, s.logger)

	if strings.TrimSpace(template) == "" {
		template = prompts.DefaultTemplate()
	}

	s.emit(StepAssemble, "assembling prompt")
	conv := llm.BuildConversation(prompts.SystemInstruction(s.now()), prompts.Assemble(template, text))
	logger.Debug("prompt assembled", "template_chars", len(template), "prompt_chars", len(conv.Messages[1].Content))

	s.emit(StepComplete, "waiting for "+string(s.client.Provider())+" completion")
	start := time.Now()
	cleaned, err := s.client.Complete(ctx, conv, s.params)
	if err != nil {
		kind := classifyCompletion(err)
		logCompletionError(logger, kind, err)
		return failure(kind, err)
	}
	logger.Info("completion received", "provider", s.client.Provider(), "chars", len(cleaned), "duration", time.Since(start))

	s.emit(StepParse, "parsing completion as JSON")
	parsed, err := result.Parse(cleaned)
	if err != nil {
		logger.Warn("completion is not valid JSON", "error", err, "raw", cleaned)
		return Outcome{Kind: KindInvalidJSON, Err: err, Raw: cleaned}
	}

	warnings, err := schemas.CheckResultShape(parsed.Raw)
	if err != nil {
		logger.Debug("result shape check skipped", "error", err)
	}
	if len(warnings) > 0 {
		logger.Info("result differs from expected shape", "warnings", len(warnings))
	}

	return Outcome{Kind: KindSuccess, Result: parsed, Raw: cleaned, Warnings: warnings}
}

func logCompletionError(logger *slog.Logger, kind Kind, err error) {
	var statusErr *llm.StatusError
	var envelopeErr *llm.EnvelopeError
	switch {
	case errors.As(err, &statusErr):
		logger.Error("completion endpoint returned error", "kind", kind, "status", statusErr.StatusCode, "body", statusErr.Body)
	case errors.As(err, &envelopeErr):
		logger.Error("failed to decode completion envelope", "kind", kind, "raw", envelopeErr.Body, "error", envelopeErr.Cause)
	default:
		logger.Error("completion request failed", "kind", kind, "error", err)
	}
}

// emit calls the progress callback if configured
func (s *Service) emit(step, message string) {
	if s.onProgress != nil {
		s.onProgress(ProgressEvent{Step: step, Message: message})
	}
}
