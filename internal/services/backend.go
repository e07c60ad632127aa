package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

// Backend sends the conversation to an external chat backend and returns the text of its reply.
// It talks to whatever service the user configured through ChatSettings.BackendURL.
type Backend struct {
	client *http.Client

	logger *slog.Logger
}

// NewBackend creates a Backend using client for the HTTP calls. A nil client means a plain
// http.Client, which has no timeout: a request waits as long as the backend takes to answer.
func NewBackend(client *http.Client, logger *slog.Logger) Backend {
	if client == nil {
		client = &http.Client{}
	}
	return Backend{
		client: client,
		logger: logger.With(slog.String("module", "backend")),
	}
}

// Send posts the transcript and settings to {BackendURL}/chat and returns the reply text extracted
// with models.ExtractReply. Any non-2xx status, transport failure or undecodable body is returned as
// an error. Send never retries.
func (b Backend) Send(ctx context.Context, settings models.ChatSettings, transcript []models.Message) (string, error) {
	jsonBody, err := json.Marshal(models.NewChatRequest(settings, transcript))
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	endpoint := strings.TrimRight(settings.BackendURL, "/") + "/chat"
	b.logger.Debug("Request Body",
		slog.String("endpoint", endpoint),
		slog.String("body", string(jsonBody)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	reply, err := models.ExtractReply(body)
	if err != nil {
		return "", err
	}

	b.logger.Debug("Reply", slog.String("reply", reply))

	return reply, nil
}
