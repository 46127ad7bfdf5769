// Package ai wraps the LLM provider behind two narrow calls: free-text
// completion and schema-constrained JSON completion. Everything else in the
// core consumes the Completer interface so tests can stub the model.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

// completionTimeout bounds a single model call. The upstream contract does
// not specify a budget; this is a defensive addition so a stalled provider
// cannot hang the request pipeline.
const completionTimeout = 15 * time.Second

// TextRequest is a free-text generation request.
type TextRequest struct {
	// Model overrides the client default when non-empty.
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// StructuredRequest is a JSON-schema-constrained generation request.
type StructuredRequest struct {
	// Model overrides the client default when non-empty.
	Model      string
	System     string
	User       string
	SchemaName string
	Schema     *Schema
	MaxTokens  int
}

// Completer is the text-understanding contract consumed by the classifier,
// the extraction service, and the generative handlers.
type Completer interface {
	// Complete performs free-text generation.
	Complete(ctx context.Context, req TextRequest) (string, error)

	// CompleteJSON performs generation constrained by a strict JSON schema
	// and returns the raw JSON content.
	CompleteJSON(ctx context.Context, req StructuredRequest) (string, error)
}

// Client implements Completer over an OpenAI-compatible API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new LLM client from config.
func NewClient(cfg *Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Complete performs free-text generation.
func (c *Client) Complete(ctx context.Context, req TextRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Messages:    messages,
	})
	latency := time.Since(start)

	if err != nil {
		slog.Error("LLM completion request failed",
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM")
	}

	slog.Debug("LLM completion finished",
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON performs structured generation. Temperature is pinned to 0
// for deterministic extraction output.
func (c *Client) CompleteJSON(ctx context.Context, req StructuredRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 512
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Strict: true,
				Schema: req.Schema,
			},
		},
	})
	latency := time.Since(start)

	if err != nil {
		slog.Error("LLM structured request failed",
			"schema", req.SchemaName,
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM")
	}

	slog.Debug("LLM structured completion finished",
		"schema", req.SchemaName,
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}

// Schema describes a strict JSON schema for structured output. Enum
// constrains string values to prevent hallucinated variants.
type Schema struct {
	Type                 string             `json:"type"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Description          string             `json:"description,omitempty"`
	AdditionalProperties bool               `json:"additionalProperties"`
}

// MarshalJSON implements json.Marshaler for the provider's schema format.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	return json.Marshal((*alias)(s))
}

var _ Completer = (*Client)(nil)
