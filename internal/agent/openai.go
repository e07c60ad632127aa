package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	goopenai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible API endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

const temperature = 0.7

// OpenAI is a Completer backed by the OpenAI chat completion API. It also serves Groq, which
// exposes the same API under GroqBaseURL.
type OpenAI struct {
	client *goopenai.Client

	logger *slog.Logger
}

// NewOpenAI creates an OpenAI completer. An empty baseURL keeps the client's default OpenAI
// endpoint.
func NewOpenAI(apiKey, baseURL string, logger *slog.Logger) OpenAI {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return OpenAI{
		client: goopenai.NewClientWithConfig(cfg),
		logger: logger.With(slog.String("module", "openai")),
	}
}

// NewGroq creates a completer for Groq's OpenAI-compatible API.
func NewGroq(apiKey, baseURL string, logger *slog.Logger) OpenAI {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	o := NewOpenAI(apiKey, baseURL, logger)
	o.logger = logger.With(slog.String("module", "groq"))
	return o
}

// Complete is a wrapper around the OpenAI chat completion API.
func (o OpenAI) Complete(ctx context.Context, model string, prompts []Prompt) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, len(prompts))
	for i, p := range prompts {
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    p.Role,
			Content: p.Content,
		}
	}

	req := goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
	}

	reqJSON, err := json.Marshal(req)
	if err == nil {
		o.logger.Debug("Request", slog.String("req", string(reqJSON)))
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices found")
	}

	return resp.Choices[0].Message.Content, nil
}
