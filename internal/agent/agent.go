package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

// allowedModels lists the models the agent accepts, whichever provider is requested.
var allowedModels = []string{
	"llama3-70b-8192",
	"mixtral-8x7b-32768",
	"llama-3.3-70b-versatile",
	"gpt-4o-mini",
}

// UnknownProviderAnswer is the answer given when a request names a provider without a completer.
const UnknownProviderAnswer = "Unknown provider."

// ErrNoMessages is returned when a request carries no message to answer.
var ErrNoMessages = errors.New("request has no messages")

// Prompt is a single message of the prompt sent to a completer.
type Prompt struct {
	Role    string
	Content string
}

// Completer produces a chat completion for a model of one provider.
type Completer interface {
	Complete(ctx context.Context, model string, prompts []Prompt) (string, error)
}

// Searcher looks query up on the web and returns a short text to ground the answer with.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Response is the body returned by the /chat endpoint.
type Response struct {
	Response      string `json:"response"`
	ModelUsed     string `json:"model_used"`
	Provider      string `json:"provider"`
	SearchEnabled bool   `json:"search_enabled"`
}

// Agent answers the last message of a chat request with the requested provider and model,
// optionally grounding the answer in a web search.
type Agent struct {
	completers map[models.Provider]Completer
	searcher   Searcher

	logger *slog.Logger
}

// New creates an Agent. Providers missing from completers get UnknownProviderAnswer. A nil searcher
// disables search even when a request allows it.
func New(completers map[models.Provider]Completer, searcher Searcher, logger *slog.Logger) Agent {
	return Agent{
		completers: completers,
		searcher:   searcher,
		logger:     logger.With(slog.String("module", "agent")),
	}
}

// ModelAllowed reports whether the agent accepts the model name, whichever provider is requested.
func ModelAllowed(name string) bool {
	return slices.Contains(allowedModels, name)
}

// Respond answers req. Only the last message is used as the query; earlier messages are ignored.
func (a Agent) Respond(ctx context.Context, req models.ChatRequest) (Response, error) {
	if len(req.Messages) == 0 {
		return Response{}, ErrNoMessages
	}
	query := req.Messages[len(req.Messages)-1]

	var prompts []Prompt
	if req.SystemPrompt != "" {
		prompts = append(prompts, Prompt{Role: "system", Content: req.SystemPrompt})
	}
	if req.AllowSearch && a.searcher != nil {
		prompts = append(prompts, Prompt{
			Role:    "system",
			Content: fmt.Sprintf("\n[Relevant web search result: %s]", a.search(ctx, query)),
		})
	}
	prompts = append(prompts, Prompt{Role: "user", Content: query})

	resp := Response{
		ModelUsed:     req.ModelName,
		Provider:      req.ModelProvider,
		SearchEnabled: req.AllowSearch,
	}

	completer, ok := a.completers[models.Provider(req.ModelProvider)]
	if !ok {
		resp.Response = UnknownProviderAnswer
		return resp, nil
	}

	answer, err := completer.Complete(ctx, req.ModelName, prompts)
	if err != nil {
		return Response{}, fmt.Errorf("provider %s completion: %w", req.ModelProvider, err)
	}
	resp.Response = strings.TrimSpace(answer)

	return resp, nil
}

// search never fails: a search error is folded into the text handed to the model.
func (a Agent) search(ctx context.Context, query string) string {
	result, err := a.searcher.Search(ctx, query)
	if err != nil {
		a.logger.Warn("Search failed", slog.String("err", err.Error()))
		return fmt.Sprintf("[Tavily search error: %v]", err)
	}
	return result
}
