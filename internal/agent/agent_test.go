package agent_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/MegaGrindStone/insighta-web-ui/internal/agent"
	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

type mockCompleter struct {
	answer string
	err    error

	model   string
	prompts []agent.Prompt
}

type mockSearcher struct {
	result string
	err    error

	query string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name        string
		req         models.ChatRequest
		searcher    *mockSearcher
		answer      string
		wantPrompts []agent.Prompt
		wantAnswer  string
	}{
		{
			name: "plain",
			req: models.ChatRequest{
				ModelName:     "gpt-4o-mini",
				ModelProvider: "openai",
				SystemPrompt:  "You are a helpful AI assistant.",
				Messages:      []string{"Hi", "What is the capital of France?"},
			},
			answer: "  Paris\n",
			wantPrompts: []agent.Prompt{
				{Role: "system", Content: "You are a helpful AI assistant."},
				{Role: "user", Content: "What is the capital of France?"},
			},
			wantAnswer: "Paris",
		},
		{
			name: "no system prompt",
			req: models.ChatRequest{
				ModelName:     "llama3-70b-8192",
				ModelProvider: "groq",
				Messages:      []string{"Hello"},
			},
			answer: "Hey",
			wantPrompts: []agent.Prompt{
				{Role: "user", Content: "Hello"},
			},
			wantAnswer: "Hey",
		},
		{
			name: "with search",
			req: models.ChatRequest{
				ModelName:     "gpt-4o-mini",
				ModelProvider: "openai",
				SystemPrompt:  "Be brief.",
				Messages:      []string{"Weather in Paris?"},
				AllowSearch:   true,
			},
			searcher: &mockSearcher{result: "Sunny, 24C"},
			answer:   "Sunny.",
			wantPrompts: []agent.Prompt{
				{Role: "system", Content: "Be brief."},
				{Role: "system", Content: "\n[Relevant web search result: Sunny, 24C]"},
				{Role: "user", Content: "Weather in Paris?"},
			},
			wantAnswer: "Sunny.",
		},
		{
			name: "search failure is inlined",
			req: models.ChatRequest{
				ModelName:     "gpt-4o-mini",
				ModelProvider: "openai",
				Messages:      []string{"News?"},
				AllowSearch:   true,
			},
			searcher: &mockSearcher{err: errors.New("quota exceeded")},
			answer:   "No idea.",
			wantPrompts: []agent.Prompt{
				{Role: "system", Content: "\n[Relevant web search result: [Tavily search error: quota exceeded]]"},
				{Role: "user", Content: "News?"},
			},
			wantAnswer: "No idea.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &mockCompleter{answer: tt.answer}
			var s agent.Searcher
			if tt.searcher != nil {
				s = tt.searcher
			}
			a := agent.New(map[models.Provider]agent.Completer{
				models.ProviderOpenAI: c,
				models.ProviderGroq:   c,
			}, s, discardLogger())

			resp, err := a.Respond(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Respond() error = %v", err)
			}

			if resp.Response != tt.wantAnswer {
				t.Errorf("Response = %q, want %q", resp.Response, tt.wantAnswer)
			}
			if resp.ModelUsed != tt.req.ModelName || resp.Provider != tt.req.ModelProvider ||
				resp.SearchEnabled != tt.req.AllowSearch {
				t.Errorf("Respond() = %+v, want it to echo the request", resp)
			}
			if c.model != tt.req.ModelName {
				t.Errorf("completer model = %q, want %q", c.model, tt.req.ModelName)
			}
			if len(c.prompts) != len(tt.wantPrompts) {
				t.Fatalf("prompts = %+v, want %+v", c.prompts, tt.wantPrompts)
			}
			for i := range tt.wantPrompts {
				if c.prompts[i] != tt.wantPrompts[i] {
					t.Errorf("prompts[%d] = %+v, want %+v", i, c.prompts[i], tt.wantPrompts[i])
				}
			}
			if tt.searcher != nil && tt.searcher.query != tt.req.Messages[len(tt.req.Messages)-1] {
				t.Errorf("search query = %q", tt.searcher.query)
			}
		})
	}
}

func TestRespondUnknownProvider(t *testing.T) {
	a := agent.New(map[models.Provider]agent.Completer{}, nil, discardLogger())

	resp, err := a.Respond(context.Background(), models.ChatRequest{
		ModelName:     "gpt-4o-mini",
		ModelProvider: "anthropic",
		Messages:      []string{"Hi"},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if resp.Response != agent.UnknownProviderAnswer {
		t.Errorf("Response = %q, want %q", resp.Response, agent.UnknownProviderAnswer)
	}
}

func TestRespondErrors(t *testing.T) {
	c := &mockCompleter{err: errors.New("rate limited")}
	a := agent.New(map[models.Provider]agent.Completer{models.ProviderOpenAI: c}, nil, discardLogger())

	if _, err := a.Respond(context.Background(), models.ChatRequest{ModelProvider: "openai"}); !errors.Is(err, agent.ErrNoMessages) {
		t.Errorf("Respond() error = %v, want %v", err, agent.ErrNoMessages)
	}

	_, err := a.Respond(context.Background(), models.ChatRequest{
		ModelName:     "gpt-4o-mini",
		ModelProvider: "openai",
		Messages:      []string{"Hi"},
	})
	if !errors.Is(err, c.err) {
		t.Errorf("Respond() error = %v, want %v", err, c.err)
	}
}

func TestModelAllowed(t *testing.T) {
	for _, p := range models.Providers() {
		for _, m := range p.Models() {
			if !agent.ModelAllowed(m) {
				t.Errorf("ModelAllowed(%q) = false, the client offers it", m)
			}
		}
	}
	if agent.ModelAllowed("gpt-4o") {
		t.Error("ModelAllowed(gpt-4o) = true")
	}
}

func (m *mockCompleter) Complete(_ context.Context, model string, prompts []agent.Prompt) (string, error) {
	m.model = model
	m.prompts = prompts
	return m.answer, m.err
}

func (m *mockSearcher) Search(_ context.Context, query string) (string, error) {
	m.query = query
	return m.result, m.err
}
