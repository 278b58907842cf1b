package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAzureAPIVersion is the chat completions API version used when none is configured.
const DefaultAzureAPIVersion = "2023-06-01-preview"

// AzureOptions identifies one Azure OpenAI chat deployment.
type AzureOptions struct {
	Endpoint   string // resource base URL, e.g. https://name.openai.azure.com
	Deployment string
	APIVersion string
	APIKey     string
}

// AzureClient implements Client for an Azure OpenAI deployment.
type AzureClient struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

type chatRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewAzureClient creates a client for the deployment described by opts.
func NewAzureClient(opts AzureOptions, httpClient *http.Client) (*AzureClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if opts.Deployment == "" {
		return nil, fmt.Errorf("deployment name is required")
	}
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAzureAPIVersion
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &AzureClient{
		httpClient: httpClient,
		url:        completionsURL(opts),
		apiKey:     opts.APIKey,
	}, nil
}

func completionsURL(opts AzureOptions) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(opts.Endpoint, "/"),
		url.PathEscape(opts.Deployment),
		url.QueryEscape(opts.APIVersion),
	)
}

// Complete sends one synchronous chat completion request. It is never retried.
func (c *AzureClient) Complete(ctx context.Context, conv Conversation, params GenerationParams) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Messages:    conv.Messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return parseChatResponse(body)
}

func parseChatResponse(body []byte) (string, error) {
	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &EnvelopeError{Body: string(body), Cause: err}
	}
	if len(envelope.Choices) == 0 {
		return "", &EnvelopeError{Body: string(body), Cause: errors.New("no choices in response")}
	}
	return CleanJSONBlock(envelope.Choices[0].Message.Content), nil
}

// Provider reports ProviderAzure.
func (c *AzureClient) Provider() Provider {
	return ProviderAzure
}

// Close is a no-op; the HTTP client is owned by the caller.
func (c *AzureClient) Close() error {
	return nil
}
