package pipeline

import (
	"errors"

	"github.com/jonathan/cv-extractor/internal/ingestion"
	"github.com/jonathan/cv-extractor/internal/llm"
	"github.com/jonathan/cv-extractor/internal/result"
)

// Kind classifies how a run ended. Callers branch on Kind, never on message text.
type Kind string

const (
	KindSuccess           Kind = "success"
	KindMissingUpload     Kind = "missing_upload"
	KindDocument          Kind = "document"
	KindUpstreamStatus    Kind = "upstream_status"
	KindMalformedEnvelope Kind = "malformed_envelope"
	KindTransport         Kind = "transport"
	KindInvalidJSON       Kind = "invalid_json"
)

// MissingUploadMessage is reported when a run is triggered without a file.
const MissingUploadMessage = "Please upload a PDF file."

// InvalidJSONMessage leads the message for a completion that is not valid JSON.
const InvalidJSONMessage = "There was an error decoding the response."

// ErrMissingUpload is the error carried by a KindMissingUpload outcome.
var ErrMissingUpload = errors.New(MissingUploadMessage)

// Outcome is the result of one run: either a parsed document or a typed error.
type Outcome struct {
	Kind   Kind
	Result *result.Document
	Err    error
	// Raw is the cleaned completion text, kept for triage when it is not valid JSON.
	Raw string
	// Warnings lists advisory shape mismatches for a successful result.
	Warnings []string
	// Document is the extracted résumé, when extraction got that far.
	Document *ingestion.Document
}

// OK reports whether the run produced a parsed result.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Message returns the text shown to the user for a failed run.
func (o Outcome) Message() string {
	switch o.Kind {
	case KindSuccess:
		return ""
	case KindMissingUpload:
		return MissingUploadMessage
	case KindInvalidJSON:
		if o.Err != nil {
			return InvalidJSONMessage + " " + o.Err.Error()
		}
		return InvalidJSONMessage
	default:
		if o.Err != nil {
			return o.Err.Error()
		}
		return string(o.Kind)
	}
}

// classifyCompletion maps a completion client error to its Kind.
func classifyCompletion(err error) Kind {
	var statusErr *llm.StatusError
	var envelopeErr *llm.EnvelopeError
	switch {
	case errors.As(err, &statusErr):
		return KindUpstreamStatus
	case errors.As(err, &envelopeErr):
		return KindMalformedEnvelope
	default:
		return KindTransport
	}
}

func failure(kind Kind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}
