package models

import (
	"errors"
	"fmt"
	"slices"
)

// Provider identifies the AI provider the chat backend should route a request to.
type Provider string

const (
	// ProviderOpenAI routes requests to OpenAI.
	ProviderOpenAI Provider = "openai"
	// ProviderGroq routes requests to Groq.
	ProviderGroq Provider = "groq"
)

const (
	// DefaultBackendURL is the chat backend the client talks to until the user changes it.
	DefaultBackendURL = "http://localhost:8000"
	// DefaultSystemPrompt is the system prompt used until the user changes it.
	DefaultSystemPrompt = "You are a helpful AI assistant."
)

var (
	// ErrUnknownProvider is returned when a provider is not part of the provider table.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrModelNotAllowed is returned when a model is not offered by the selected provider.
	ErrModelNotAllowed = errors.New("model not allowed for provider")
	// ErrNoSettings is returned by settings stores when nothing has been saved yet.
	ErrNoSettings = errors.New("no settings stored")
)

// providerModels is the validity table between providers and the models they offer. The first entry
// of each list is the model selected when switching to that provider.
var providerModels = map[Provider][]string{
	ProviderOpenAI: {"gpt-4o-mini"},
	ProviderGroq:   {"llama3-70b-8192", "mixtral-8x7b-32768", "llama-3.3-70b-versatile"},
}

var providerLabels = map[Provider]string{
	ProviderOpenAI: "OpenAI",
	ProviderGroq:   "Groq",
}

// Providers returns every known provider in display order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderGroq}
}

// ParseProvider converts s into a Provider, returning ErrUnknownProvider if s isn't in the table.
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
	return p, nil
}

// Valid reports whether p is part of the provider table.
func (p Provider) Valid() bool {
	_, ok := providerModels[p]
	return ok
}

// Models returns a copy of the models offered by p, or nil for an unknown provider.
func (p Provider) Models() []string {
	return slices.Clone(providerModels[p])
}

// Label returns the human readable name of p.
func (p Provider) Label() string {
	if l, ok := providerLabels[p]; ok {
		return l
	}
	return string(p)
}

// Offers reports whether model is in p's model list.
func (p Provider) Offers(model string) bool {
	return slices.Contains(providerModels[p], model)
}

// ChatSettings holds everything the user configures in the sidebar. Provider and Model are kept
// consistent by SetProvider and SetModel: Model is always one of Provider's models.
type ChatSettings struct {
	Provider       Provider `json:"provider"`
	Model          string   `json:"model"`
	InternetSearch bool     `json:"internetSearch"`
	SystemPrompt   string   `json:"systemPrompt"`
	BackendURL     string   `json:"backendUrl"`
}

// DefaultChatSettings returns the settings a fresh client starts with.
func DefaultChatSettings() ChatSettings {
	return ChatSettings{
		Provider:       ProviderOpenAI,
		Model:          "gpt-4o-mini",
		InternetSearch: false,
		SystemPrompt:   DefaultSystemPrompt,
		BackendURL:     DefaultBackendURL,
	}
}

// SetProvider switches to provider p. If the current model isn't offered by p, the model is reset
// to p's first model; otherwise it is left alone. An unknown provider leaves s untouched.
func (s *ChatSettings) SetProvider(p Provider) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	s.Provider = p
	if !p.Offers(s.Model) {
		s.Model = providerModels[p][0]
	}
	return nil
}

// SetModel selects model, which must be offered by the current provider.
func (s *ChatSettings) SetModel(model string) error {
	if !s.Provider.Offers(model) {
		return fmt.Errorf("%w: %q is not offered by %s", ErrModelNotAllowed, model, s.Provider)
	}
	s.Model = model
	return nil
}

// Validate checks the provider/model pairing.
func (s ChatSettings) Validate() error {
	if !s.Provider.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
	}
	if !s.Provider.Offers(s.Model) {
		return fmt.Errorf("%w: %q is not offered by %s", ErrModelNotAllowed, s.Model, s.Provider)
	}
	return nil
}
