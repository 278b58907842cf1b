package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey string, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete sends the conversation as a single Gemini request. System messages
// become the model's system instruction; the rest are sent as text parts.
func (c *GeminiClient) Complete(ctx context.Context, conv Conversation, params GenerationParams) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	configureModel(model, conv, params)

	resp, err := model.GenerateContent(ctx, userParts(conv)...)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &EnvelopeError{Cause: err}
	}
	return CleanJSONBlock(text), nil
}

// Provider reports ProviderGemini.
func (c *GeminiClient) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func configureModel(model *genai.GenerativeModel, conv Conversation, params GenerationParams) {
	if system := conv.System(); system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if params.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(params.MaxTokens))
	}
	model.SetTemperature(float32(params.Temperature))
	model.SetTopP(float32(params.TopP))
}

func userParts(conv Conversation) []genai.Part {
	var parts []genai.Part
	for _, m := range conv.Messages {
		if m.Role == RoleSystem {
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	return parts
}

// classifyGeminiError maps API status failures to StatusError so both
// providers report upstream rejections the same way.
func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Message
		if body == "" {
			body = apiErr.Body
		}
		return &StatusError{StatusCode: apiErr.Code, Body: body}
	}
	return &TransportError{Cause: err}
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
