// Package observability provides logging setup and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the extract command.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDocument outputs a summary of the extracted document.
func (p *Printer) PrintDocument(source string, pages int, text string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:   %s\n", source))
	sb.WriteString(fmt.Sprintf("Pages:  %d\n", pages))
	sb.WriteString(fmt.Sprintf("Chars:  %d", len(text)))

	preview := strings.Fields(text)
	if len(preview) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(strings.Join(preview, " "))
	}

	p.printBox("EXTRACTED DOCUMENT", sb.String())
}

// PrintWarnings outputs non-blocking result shape warnings.
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d warnings:\n\n", len(warnings)))

	count := min(len(warnings), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("⚠ %s", warnings[i]))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(warnings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(warnings)-maxItemsToShow))
	}

	p.printBox("RESULT SHAPE WARNINGS", sb.String())
}

// PrintFailure outputs an error banner. The message and raw text are written
// below the box as-is so long lines survive for inspection; raw is only set
// when the model's text could not be decoded.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintFailure(kind string, message string, raw string) {
	p.printBox("❌ EXTRACTION FAILED", fmt.Sprintf("Kind:   %s", kind))

	fmt.Fprintln(p.out, message)
	if raw != "" {
		fmt.Fprintln(p.out, "\nRaw response:")
		fmt.Fprintln(p.out, raw)
	}
}

// truncate shortens s to at most width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
