// Package prompts holds the embedded prompt texts sent to the completion
// endpoint and assembles the user prompt from a template and résumé text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// promptFile maps prompt keys to their text.
type promptFile map[string]string

var (
	cache   = make(map[string]promptFile)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename and key, e.g. Get("extraction.json", "system").
func Get(filename, key string) (string, error) {
	file, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, ok := file[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is like Get but panics when the prompt is missing.
// The embedded files ship with the binary, so a miss is a build defect.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces {{.Key}} markers in template with values from data.
// Markers without a matching key are left untouched.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// List returns the prompt keys in filename, sorted.
func List(filename string) ([]string, error) {
	file, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(file))
	for key := range file {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearCache drops every parsed prompt file. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]promptFile)
	cacheMu.Unlock()
}

func loadFile(filename string) (promptFile, error) {
	cacheMu.RLock()
	file, ok := cache[filename]
	cacheMu.RUnlock()
	if ok {
		return file, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = file
	cacheMu.Unlock()

	return file, nil
}
