package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/jonathan/cv-extractor/internal/observability"
	"github.com/jonathan/cv-extractor/internal/pipeline"
	"github.com/jonathan/cv-extractor/internal/result"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to disk.
const multipartMemory = 8 << 20

const pageTitle = "CV Extractor and Age Calculator"

// pageData is rendered by templates/page.html.
type pageData struct {
	Title     string
	Prompt    string
	Submitted bool
	FileName  string
	Pages     int
	Error     string
	Raw       string
	Tree      *result.Node
	Warnings  []string
}

// ExtractResponse is the body returned by POST /api/extract.
type ExtractResponse struct {
	Kind     pipeline.Kind   `json:"kind"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Raw      string          `json:"raw,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

type submission struct {
	request  pipeline.Request
	fileName string
	file     multipart.File
}

func (sub *submission) Close() {
	if sub.file != nil {
		_ = sub.file.Close()
	}
}

// handleIndex renders the empty form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, pageData{Title: pageTitle, Prompt: s.defaultTemplate})
}

// handleGenerate runs the pipeline for a form submission and renders the
// result or an error banner. It always answers 200.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFrom(r.Context(), s.logger)
	data := pageData{Title: pageTitle, Prompt: s.defaultTemplate, Submitted: true}

	sub, err := s.readSubmission(w, r)
	if err != nil {
		logger.Warn("Failed to read submission", "error", err)
		data.Error = err.Error()
		s.renderPage(w, r, data)
		return
	}
	defer sub.Close()

	if sub.request.Template != "" {
		data.Prompt = sub.request.Template
	}
	data.FileName = sub.fileName

	outcome := s.runner.Run(r.Context(), sub.request)
	if outcome.Document != nil {
		data.Pages = outcome.Document.Pages
	}
	if !outcome.OK() {
		data.Error = outcome.Message()
		if outcome.Kind == pipeline.KindInvalidJSON {
			data.Raw = outcome.Raw
		}
		s.renderPage(w, r, data)
		return
	}

	data.Tree = outcome.Result.Tree
	data.Warnings = outcome.Warnings
	s.renderPage(w, r, data)
}

// handleExtract is the JSON form of handleGenerate.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFrom(r.Context(), s.logger)

	sub, err := s.readSubmission(w, r)
	if err != nil {
		logger.Warn("Failed to read submission", "error", err)
		status := http.StatusBadRequest
		var tooLarge *ErrUploadTooLarge
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.jsonResponse(w, status, ExtractResponse{Kind: pipeline.KindDocument, Error: err.Error()})
		return
	}
	defer sub.Close()

	outcome := s.runner.Run(r.Context(), sub.request)
	resp := ExtractResponse{Kind: outcome.Kind, Warnings: outcome.Warnings}
	switch {
	case outcome.OK():
		resp.Result = json.RawMessage(outcome.Result.Raw)
	case outcome.Kind == pipeline.KindInvalidJSON:
		resp.Error = outcome.Message()
		resp.Raw = outcome.Raw
	default:
		resp.Error = outcome.Message()
	}
	s.jsonResponse(w, HTTPStatus(outcome.Kind), resp)
}

// readSubmission reads the "upload" file and "prompt" field. A request without
// a file yields a submission with a nil document; the pipeline reports that.
func (s *Server) readSubmission(w http.ResponseWriter, r *http.Request) (*submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrUploadTooLarge{Limit: s.maxUploadBytes}
		}
		return nil, fmt.Errorf("failed to read form: %w", err)
	}

	sub := &submission{request: pipeline.Request{Template: r.FormValue("prompt")}}

	file, header, err := r.FormFile("upload")
	switch {
	case err == nil:
		sub.file = file
		sub.fileName = header.Filename
		sub.request.Document = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return sub, nil
}

// renderPage executes the page into a buffer first so a template failure
// never leaves a half-written page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "page.html", data); err != nil {
		observability.LoggerFrom(r.Context(), s.logger).Error("Template render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
