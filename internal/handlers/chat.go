package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
)

// HandleChats accepts a user message through the "message" form field and starts an exchange with
// the chat backend.
//
// Blank input, or input arriving while another exchange is still in flight, is ignored: the handler
// answers 204 No Content and the transcript is left untouched. Otherwise the message is appended, the
// handler renders the user message together with a loading placeholder for the reply, and the
// exchange continues in the background. Its outcome is pushed to the page through SSE.
func (m Main) HandleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Settings are loaded first, so a failing store can't leave the transcript stuck in flight.
	settings, err := m.settings(r.Context())
	if err != nil {
		m.logger.Error("Failed to load settings", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	text := r.FormValue("message")

	// The snapshot is taken under exchangeMu, so a concurrent Clear can't empty it before it is sent.
	m.exchangeMu.Lock()
	um, ok := m.transcript.AppendUserMessage(text)
	if !ok {
		m.exchangeMu.Unlock()
		m.logger.Debug("Message ignored", slog.Bool("inFlight", m.transcript.InFlight()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	snapshot := m.transcript.Messages()
	m.publishStatus(statusThinking)
	m.exchangeMu.Unlock()

	go m.chat(settings, snapshot, um.ID)

	userMsg, err := renderMessage(um)
	if err != nil {
		m.logger.Error("Failed to render contents",
			slog.String("message", fmt.Sprintf("%+v", um)),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := m.templates.ExecuteTemplate(w, "user_message", userMsg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := m.templates.ExecuteTemplate(w, "ai_loading", um.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleClear discards the transcript and renders the empty chat box.
func (m Main) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m.exchangeMu.Lock()
	m.transcript.Clear()
	m.exchangeMu.Unlock()

	data, err := m.pageData(r.Context())
	if err != nil {
		m.logger.Error("Failed to prepare page", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := m.templates.ExecuteTemplate(w, "chatbox", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// chat runs one exchange: it sends the transcript to the chat backend and appends either the reply
// or the apology. Every failure ends the exchange the same way, so the page always returns to the
// ready state. The rendered reply names the user message it answers in replyTo, which lets the page
// place it even when it arrives before the response to the form post.
func (m Main) chat(settings models.ChatSettings, transcript []models.Message, replyTo string) {
	reply, err := m.gateway.Send(m.ctx, settings, transcript)
	if err != nil {
		m.logger.Error("Error sending message",
			slog.String("backendURL", settings.BackendURL),
			slog.String(errLoggerKey, err.Error()))
		reply = ApologyMessage
	}

	m.exchangeMu.Lock()
	defer m.exchangeMu.Unlock()
	defer m.publishStatus(statusReady)

	am := m.transcript.AppendAssistantMessage(reply)

	aiMsg, err := renderMessage(am)
	if err != nil {
		m.logger.Error("Failed to render contents",
			slog.String("message", fmt.Sprintf("%+v", am)),
			slog.String(errLoggerKey, err.Error()))
		return
	}
	aiMsg.ReplyTo = replyTo

	var sb strings.Builder
	if err := m.templates.ExecuteTemplate(&sb, "ai_message", aiMsg); err != nil {
		m.logger.Error("Failed to execute ai_message template", slog.String(errLoggerKey, err.Error()))
		return
	}

	if err := m.publish(messagesSSEType, sb.String()); err != nil {
		m.logger.Error("Failed to publish message",
			slog.String("message", fmt.Sprintf("%+v", am)),
			slog.String(errLoggerKey, err.Error()))
	}
}
