package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TavilyEndpoint is Tavily's search API.
const TavilyEndpoint = "https://api.tavily.com/search"

const tavilyTimeout = 10 * time.Second

// Tavily is a Searcher backed by the Tavily search API.
type Tavily struct {
	apiKey   string
	endpoint string

	client *http.Client
}

type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	MaxResults        int    `json:"max_results"`
}

type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Content string `json:"content"`
}

// NewTavily creates a Tavily searcher. An empty endpoint means TavilyEndpoint.
func NewTavily(apiKey, endpoint string) Tavily {
	if endpoint == "" {
		endpoint = TavilyEndpoint
	}
	return Tavily{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: tavilyTimeout},
	}
}

// Search returns Tavily's generated answer for query, or the content of the top result when there
// is no answer. It returns an empty string when Tavily found nothing.
func (t Tavily) Search(ctx context.Context, query string) (string, error) {
	jsonBody, err := json.Marshal(tavilyRequest{
		Query:         query,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
		MaxResults:    1,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var res tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}

	if res.Answer != "" {
		return res.Answer, nil
	}
	if len(res.Results) > 0 {
		return res.Results[0].Content, nil
	}
	return "", nil
}
