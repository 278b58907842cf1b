package observability

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDocument("cv.pdf", 2, "Jane Doe\nBorn 1990")
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED DOCUMENT")
	assert.Contains(t, output, "cv.pdf")
	assert.Contains(t, output, "Pages:  2")
	assert.Contains(t, output, "Jane Doe Born 1990")
}

func TestPrintDocument_LongPreviewTruncated(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDocument("cv.pdf", 1, strings.Repeat("word ", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth, "line too wide: %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	warnings := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		warnings = append(warnings, fmt.Sprintf("warning %d", i))
	}

	p.PrintWarnings(warnings)
	output := buf.String()

	assert.Contains(t, output, "RESULT SHAPE WARNINGS")
	assert.Contains(t, output, "Found 7 warnings")
	assert.Contains(t, output, "warning 4")
	assert.NotContains(t, output, "warning 5")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintWarnings_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintWarnings(nil)

	assert.Empty(t, buf.String())
}

func TestPrintFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFailure("invalid_json", "Error decoding JSON", `{"a":}`)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTION FAILED")
	assert.Contains(t, output, "invalid_json")
	assert.Contains(t, output, "Raw response:")
	assert.Contains(t, output, `{"a":}`)
}

func TestPrintFailure_LongLinesAreNotCut(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	message := "Error: 500 - " + strings.Repeat("upstream said no ", 8)
	raw := `{"Acme Corporation International":{"age":31,"job_title":"Senior Mobile Developer","Tenure":24},}`

	p.PrintFailure("invalid_json", message, raw)
	output := buf.String()

	assert.Contains(t, output, message)
	assert.Contains(t, output, raw)
	assert.NotContains(t, output, "...")
}

func TestPrintFailure_NoRaw(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFailure("upstream_status", "Error: 404", "")

	assert.NotContains(t, buf.String(), "Raw response:")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "", want: slog.LevelInfo},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("hidden message")
	logger.Warn("visible message")

	assert.NotContains(t, buf.String(), "hidden message")
	assert.Contains(t, buf.String(), "visible message")
}
