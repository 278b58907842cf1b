package prompts

import (
	"strconv"
	"strings"
	"time"
)

const extractionFile = "extraction.json"

// Placeholder marks where the extracted résumé text goes in a template.
const Placeholder = "{pdf_text}"

// Assemble substitutes text for every Placeholder in template.
// The inserted text is not rescanned, so a placeholder appearing inside the
// résumé itself stays literal.
func Assemble(template, text string) string {
	return strings.ReplaceAll(template, Placeholder, text)
}

// DefaultTemplate returns the user prompt template shown in the UI on first load.
func DefaultTemplate() string {
	return MustGet(extractionFile, "default-template")
}

// SystemInstruction returns the system message describing how ages are
// calculated, anchored to the year of now.
func SystemInstruction(now time.Time) string {
	return Format(MustGet(extractionFile, "system"), map[string]string{
		"Year": strconv.Itoa(now.Year()),
	})
}
