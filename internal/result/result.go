// Package result parses the cleaned completion text as JSON and builds an
// ordered tree for display. Any valid JSON is accepted regardless of shape.
package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecodeError reports completion text that is not a single JSON value.
// Raw holds the text exactly as received so it can be shown for triage.
type DecodeError struct {
	Raw   string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON in response: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Document is a successfully parsed completion.
type Document struct {
	Raw   string
	Value any // decoded with json.Number for numbers
	Tree  *Node
}

// Parse decodes cleaned as exactly one JSON value.
func Parse(cleaned string) (*Document, error) {
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response")
		}
		return nil, &DecodeError{Raw: cleaned, Cause: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Raw: cleaned, Cause: errors.New("unexpected data after top-level value")}
	}

	tree, err := BuildTree(cleaned)
	if err != nil {
		return nil, &DecodeError{Raw: cleaned, Cause: err}
	}

	return &Document{Raw: cleaned, Value: value, Tree: tree}, nil
}

// Indented returns the raw JSON re-indented with two spaces, keeping key order.
func (d *Document) Indented() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(d.Raw), "", "  "); err != nil {
		return d.Raw
	}
	return buf.String()
}
