// Package llm sends the extraction conversation to a chat-completion provider
// and returns the model's text with Markdown fences removed.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-extractor/internal/config"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderAzure is the Azure OpenAI chat completions deployment
	ProviderAzure Provider = config.ProviderAzure
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = config.ProviderGemini
)

// Message roles used in a Conversation.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered list of messages sent in one completion call.
type Conversation struct {
	Messages []Message
}

// BuildConversation returns the fixed two-message conversation: the system
// instruction followed by the assembled user prompt.
func BuildConversation(system, user string) Conversation {
	return Conversation{Messages: []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}}
}

// System returns the content of every system message joined by newlines.
func (c Conversation) System() string {
	var out string
	for _, m := range c.Messages {
		if m.Role != RoleSystem {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += m.Content
	}
	return out
}

// GenerationParams holds the sampling settings for a completion.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// DefaultParams returns the fixed generation parameters used for extraction.
func DefaultParams() GenerationParams {
	return GenerationParams{
		MaxTokens:   16000,
		Temperature: 1,
		TopP:        0.25,
	}
}

// Client is an abstraction over LLM providers
type Client interface {
	// Complete sends one conversation and returns the cleaned completion text.
	Complete(ctx context.Context, conv Conversation, params GenerationParams) (string, error)
	// Provider reports which backend serves the client.
	Provider() Provider
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates the client selected by cfg.Provider. httpClient is used by
// the Azure provider; nil means a client with cfg.RequestTimeout().
func NewClient(ctx context.Context, cfg *config.Config, httpClient *http.Client) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout()}
	}

	switch Provider(cfg.Provider) {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case ProviderAzure, "":
		return NewAzureClient(AzureOptions{
			Endpoint:   cfg.Endpoint,
			Deployment: cfg.DeploymentName,
			APIVersion: cfg.APIVersion,
			APIKey:     cfg.APIKey,
		}, httpClient)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
