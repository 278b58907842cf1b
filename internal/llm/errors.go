package llm

import "fmt"

// envelopeErrorMessage is shown when a 200 response is not a chat completion.
const envelopeErrorMessage = "Error decoding response."

// StatusError represents a non-200 answer from the completion endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error: %d - %s", e.StatusCode, e.Body)
}

// EnvelopeError represents a 200 response whose body is not a usable
// completion envelope. Body keeps the raw payload for logging.
type EnvelopeError struct {
	Body  string
	Cause error
}

func (e *EnvelopeError) Error() string {
	return envelopeErrorMessage
}

func (e *EnvelopeError) Unwrap() error {
	return e.Cause
}

// TransportError represents a request that never produced an HTTP response.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Error: request failed: %v", e.Cause)
	}
	return "Error: request failed"
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
