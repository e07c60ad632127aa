package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp string
	// ReplyTo is the ID of the user message an assistant message answers. It is only set on
	// replies pushed to the page.
	ReplyTo string

	StreamingState string
}

type homePageData struct {
	Settings  models.ChatSettings
	Providers []option
	Models    []option
	Messages  []message
	InFlight  bool
	// Pending is the ID of the user message awaiting a reply, if any.
	Pending string
}

const timestampLayout = "15:04:05"

// HandleHome renders the chat page with the current settings and transcript.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data, err := m.pageData(r.Context())
	if err != nil {
		m.logger.Error("Failed to prepare page", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		m.logger.Error("Failed to execute home template", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (m Main) pageData(ctx context.Context) (homePageData, error) {
	settings, err := m.settings(ctx)
	if err != nil {
		return homePageData{}, err
	}

	transcript := m.transcript.Messages()
	msgs := make([]message, len(transcript))
	for i, msg := range transcript {
		msgs[i], err = renderMessage(msg)
		if err != nil {
			return homePageData{}, err
		}
	}

	data := homePageData{
		Settings:  settings,
		Providers: providerOptions(settings.Provider),
		Models:    modelOptions(settings),
		Messages:  msgs,
		InFlight:  m.transcript.InFlight(),
	}
	if n := len(transcript); data.InFlight && n > 0 && transcript[n-1].Role == models.RoleUser {
		data.Pending = transcript[n-1].ID
	}

	return data, nil
}

func renderMessage(msg models.Message) (message, error) {
	content, err := models.RenderContent(msg)
	if err != nil {
		return message{}, fmt.Errorf("failed to render message %s: %w", msg.ID, err)
	}
	return message{
		ID:             msg.ID,
		Role:           string(msg.Role),
		Content:        content,
		Timestamp:      msg.Timestamp.Format(timestampLayout),
		StreamingState: "ended",
	}, nil
}

func providerOptions(selected models.Provider) []option {
	providers := models.Providers()
	opts := make([]option, len(providers))
	for i, p := range providers {
		opts[i] = option{
			Value:    string(p),
			Label:    p.Label(),
			Selected: p == selected,
		}
	}
	return opts
}

func modelOptions(settings models.ChatSettings) []option {
	ms := settings.Provider.Models()
	opts := make([]option, len(ms))
	for i, model := range ms {
		opts[i] = option{
			Value:    model,
			Label:    model,
			Selected: model == settings.Model,
		}
	}
	return opts
}
