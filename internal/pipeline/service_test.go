package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/cv-extractor/internal/ingestion"
	"github.com/jonathan/cv-extractor/internal/ingestion/pdftest"
	"github.com/jonathan/cv-extractor/internal/llm"
	"github.com/jonathan/cv-extractor/internal/observability"
	"github.com/jonathan/cv-extractor/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records calls and returns a canned answer.
type fakeClient struct {
	calls  int32
	answer string
	err    error
	last   llm.Conversation
	params llm.GenerationParams
}

func (f *fakeClient) Complete(_ context.Context, conv llm.Conversation, params llm.GenerationParams) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.last = conv
	f.params = params
	return f.answer, f.err
}

func (f *fakeClient) Provider() llm.Provider { return llm.ProviderAzure }
func (f *fakeClient) Close() error           { return nil }

// fakeExtractor returns fixed text for any upload.
type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractUpload(context.Context, io.Reader) (*ingestion.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ingestion.Document{Text: f.text, Pages: 1}, nil
}

func fixedClock() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(extractor Extractor, client llm.Client, opts ...Option) *Service {
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewService(extractor, client, observability.Discard(), opts...)
}

func TestRun_MissingUpload(t *testing.T) {
	client := &fakeClient{answer: `{}`}
	svc := newTestService(fakeExtractor{text: "cv"}, client)

	outcome := svc.Run(context.Background(), Request{Template: "{pdf_text}"})

	assert.Equal(t, KindMissingUpload, outcome.Kind)
	assert.False(t, outcome.OK())
	assert.Equal(t, "Please upload a PDF file.", outcome.Message())
	assert.ErrorIs(t, outcome.Err, ErrMissingUpload)
	assert.Equal(t, int32(0), atomic.LoadInt32(&client.calls))
}

func TestRun_Success(t *testing.T) {
	client := &fakeClient{answer: `{"experience": 3, "company": []}`}
	svc := newTestService(fakeExtractor{text: "Jane Doe"}, client)

	outcome := svc.Run(context.Background(), Request{
		Document: strings.NewReader("pdf"),
		Template: "Input Data: {pdf_text}",
	})

	require.True(t, outcome.OK(), outcome.Message())
	require.NotNil(t, outcome.Result)
	assert.Equal(t, "Jane Doe", outcome.Document.Text)
	assert.Empty(t, outcome.Message())
	assert.Empty(t, outcome.Warnings)

	require.Len(t, client.last.Messages, 2)
	assert.Equal(t, llm.RoleSystem, client.last.Messages[0].Role)
	assert.True(t, strings.HasPrefix(client.last.Messages[0].Content, "This year is 2025. "))
	assert.Equal(t, "Input Data: Jane Doe", client.last.Messages[1].Content)
	assert.Equal(t, llm.DefaultParams(), client.params)
}

func TestRun_EmptyTemplateUsesDefault(t *testing.T) {
	client := &fakeClient{answer: `{}`}
	svc := newTestService(fakeExtractor{text: "UNIQUE-CV-TEXT"}, client)

	svc.Run(context.Background(), Request{Document: strings.NewReader("pdf"), Template: "  "})

	user := client.last.Messages[1].Content
	assert.Contains(t, user, "Input Data: UNIQUE-CV-TEXT")
	assert.Contains(t, user, "Required Output Format (just json):")
}

func TestRun_ShapeWarnings(t *testing.T) {
	client := &fakeClient{answer: `{"name": "Jane"}`}
	svc := newTestService(fakeExtractor{text: "cv"}, client)

	outcome := svc.Run(context.Background(), Request{Document: strings.NewReader("pdf"), Template: "{pdf_text}"})

	require.True(t, outcome.OK())
	assert.NotEmpty(t, outcome.Warnings)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name        string
		extractor   fakeExtractor
		client      *fakeClient
		wantKind    Kind
		wantMessage string
		wantCalls   int32
	}{
		{
			name:        "document error",
			extractor:   fakeExtractor{err: &ingestion.DocumentError{Message: "failed to open PDF"}},
			client:      &fakeClient{},
			wantKind:    KindDocument,
			wantMessage: "document error: failed to open PDF",
			wantCalls:   0,
		},
		{
			name:        "plain extraction error is wrapped",
			extractor:   fakeExtractor{err: errors.New("disk full")},
			client:      &fakeClient{},
			wantKind:    KindDocument,
			wantMessage: "document error: failed to process upload: disk full",
			wantCalls:   0,
		},
		{
			name:        "upstream status",
			extractor:   fakeExtractor{text: "cv"},
			client:      &fakeClient{err: &llm.StatusError{StatusCode: 404, Body: "not found"}},
			wantKind:    KindUpstreamStatus,
			wantMessage: "Error: 404 - not found",
			wantCalls:   1,
		},
		{
			name:        "malformed envelope",
			extractor:   fakeExtractor{text: "cv"},
			client:      &fakeClient{err: &llm.EnvelopeError{Body: "<html>"}},
			wantKind:    KindMalformedEnvelope,
			wantMessage: "Error decoding response.",
			wantCalls:   1,
		},
		{
			name:        "transport",
			extractor:   fakeExtractor{text: "cv"},
			client:      &fakeClient{err: &llm.TransportError{Cause: errors.New("timeout")}},
			wantKind:    KindTransport,
			wantMessage: "Error: request failed: timeout",
			wantCalls:   1,
		},
		{
			name:        "invalid JSON",
			extractor:   fakeExtractor{text: "cv"},
			client:      &fakeClient{answer: `{"a":}`},
			wantKind:    KindInvalidJSON,
			wantMessage: "There was an error decoding the response. invalid JSON in response: invalid character '}' looking for beginning of value",
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.extractor, tt.client)

			outcome := svc.Run(context.Background(), Request{Document: strings.NewReader("pdf"), Template: "{pdf_text}"})

			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.False(t, outcome.OK())
			assert.Nil(t, outcome.Result)
			assert.Equal(t, tt.wantMessage, outcome.Message())
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&tt.client.calls))
		})
	}
}

func TestRun_InvalidJSONKeepsRaw(t *testing.T) {
	client := &fakeClient{answer: `{"a":}`}
	svc := newTestService(fakeExtractor{text: "cv"}, client)

	outcome := svc.Run(context.Background(), Request{Document: strings.NewReader("pdf"), Template: "{pdf_text}"})

	assert.Equal(t, `{"a":}`, outcome.Raw)
	var decodeErr *result.DecodeError
	require.ErrorAs(t, outcome.Err, &decodeErr)
}

func TestRun_Progress(t *testing.T) {
	var steps []string
	svc := newTestService(fakeExtractor{text: "cv"}, &fakeClient{answer: `{}`},
		WithProgress(func(e ProgressEvent) { steps = append(steps, e.Step) }))

	svc.Run(context.Background(), Request{Document: strings.NewReader("pdf"), Template: "{pdf_text}"})

	assert.Equal(t, []string{StepExtract, StepAssemble, StepComplete, StepParse}, steps)
}

func TestRun_EndToEndWithAzure(t *testing.T) {
	var calls int32
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotBody, _ = io.ReadAll(r.Body)
		payload, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "```json\n{\"a\":1}\n```"}}},
		})
		_, _ = w.Write(payload)
	}))
	defer upstream.Close()

	client, err := llm.NewAzureClient(llm.AzureOptions{
		Endpoint:   upstream.URL,
		Deployment: "cv",
		APIKey:     "k",
	}, upstream.Client())
	require.NoError(t, err)

	svc := newTestService(ingestion.NewLoader(t.TempDir()), client)
	outcome := svc.Run(context.Background(), Request{
		Document: bytes.NewReader(pdftest.Build("JaneDoe")),
		Template: "Input Data: {pdf_text}",
	})

	require.True(t, outcome.OK(), outcome.Message())
	assert.Equal(t, map[string]any{"a": json.Number("1")}, outcome.Result.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, string(gotBody), "JaneDoe")
}
