// Package gemini implements the assistant ports on the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"milkround/internal/assistant"
	"milkround/internal/core"
)

const DefaultModel = "gemini-2.5-flash"

// Client calls generateContent for each port.
type Client struct {
	models *genai.Models
	model  string
}

// Option adjusts the SDK client configuration.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at another endpoint, such as a local test server.
func WithBaseURL(url string) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPClient = hc
	}
}

// New builds a client for the Gemini API authenticated with apiKey.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{models: client.Models, model: model}, nil
}

var (
	_ assistant.MessageGenerator  = (*Client)(nil)
	_ assistant.RouteSuggester    = (*Client)(nil)
	_ assistant.InsightSummarizer = (*Client)(nil)
)

func (c *Client) GenerateMessage(ctx context.Context, req assistant.MessageRequest) (string, error) {
	return c.generate(ctx, messagePrompt(req), nil)
}

// SuggestOrder asks for a JSON array of names and decodes it.
func (c *Client) SuggestOrder(ctx context.Context, customers []core.Customer) ([]string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	}
	text, err := c.generate(ctx, routePrompt(customers), cfg)
	if err != nil {
		return nil, err
	}
	return parseNames(text)
}

func (c *Client) Summarize(ctx context.Context, req assistant.InsightRequest) (string, error) {
	return c.generate(ctx, insightPrompt(req), nil)
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates in response")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("empty candidate text")
	}
	return b.String(), nil
}

// parseNames decodes a JSON array of strings, tolerating a fenced code block.
func parseNames(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var names []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &names); err != nil {
		return nil, fmt.Errorf("decode route suggestion: %w", err)
	}
	return names, nil
}
