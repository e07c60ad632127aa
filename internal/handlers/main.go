package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	insightawebui "github.com/MegaGrindStone/insighta-web-ui"
	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

// Transcript is the conversation state shown on the page. All mutation of the transcript goes
// through these operations; see services.Conversation for the semantics.
type Transcript interface {
	AppendUserMessage(text string) (models.Message, bool)
	AppendAssistantMessage(text string) models.Message
	Clear()
	Messages() []models.Message
	InFlight() bool
}

// Gateway sends the transcript to the chat backend and returns the reply text.
type Gateway interface {
	Send(ctx context.Context, settings models.ChatSettings, transcript []models.Message) (string, error)
}

// SettingsStore loads and saves the sidebar settings. Settings returns models.ErrNoSettings when
// nothing was saved yet.
type SettingsStore interface {
	Settings(ctx context.Context) (models.ChatSettings, error)
	SaveSettings(ctx context.Context, settings models.ChatSettings) error
}

// ApologyMessage is appended as the assistant's reply whenever the chat backend can't be reached or
// answers with something unusable. The underlying error is only logged.
const ApologyMessage = "Sorry, I encountered an error. Please check your backend connection and try again."

// Main serves the chat page. It renders the page from the embedded templates, accepts the form posts
// of the sidebar and the message input, runs exchanges with the chat backend in the background and
// pushes their results to the browser through server-sent events.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template

	transcript Transcript
	gateway    Gateway
	store      SettingsStore

	// settingsMu serializes read-modify-write cycles on the stored settings.
	settingsMu *sync.Mutex
	// exchangeMu pairs every in-flight transition of the transcript with the status event that
	// announces it, so pages receive the events in the order the transitions happened.
	exchangeMu *sync.Mutex

	// ctx bounds the background exchanges; it is cancelled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
}

const errLoggerKey = "err"

// SSE event types for real-time updates.
var (
	messagesSSEType = sse.Type("messages")
	statusSSEType   = sse.Type("status")
)

const (
	statusThinking = "thinking"
	statusReady    = "ready"
)

// NewMain creates a new Main with the given transcript, gateway and settings store. It parses the
// templates from the embedded filesystem and prepares the SSE server every open page subscribes to.
func NewMain(transcript Transcript, gateway Gateway, store SettingsStore, logger *slog.Logger) (Main, error) {
	tmpl, err := template.ParseFS(
		insightawebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Main{
		sseSrv: &sse.Server{
			Provider: &sse.Joe{Replayer: newStatusReplayer(statusMessage(statusReady))},
			OnSession: func(s *sse.Session) (sse.Subscription, bool) {
				return sse.Subscription{
					Client:      s,
					LastEventID: s.LastEventID,
					Topics:      []string{sse.DefaultTopic},
				}, true
			},
		},
		templates:  tmpl,
		transcript: transcript,
		gateway:    gateway,
		store:      store,
		settingsMu: &sync.Mutex{},
		exchangeMu: &sync.Mutex{},
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.With(slog.String("module", "main")),
	}, nil
}

// HandleSSE streams transcript and status updates to the page.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// Shutdown cancels pending exchanges, tells connected pages the stream is closing and waits up to
// 5 seconds for the SSE connections to terminate.
func (m Main) Shutdown(ctx context.Context) error {
	m.cancel()

	e := &sse.Message{Type: sse.Type("closeChat")}
	e.AppendData("bye")
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}

func (m Main) settings(ctx context.Context) (models.ChatSettings, error) {
	s, err := m.store.Settings(ctx)
	if errors.Is(err, models.ErrNoSettings) {
		return models.DefaultChatSettings(), nil
	}
	if err != nil {
		return models.ChatSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

func (m Main) publish(t sse.EventType, data string) error {
	msg := sse.Message{
		Type: t,
	}
	msg.AppendData(data)
	return m.sseSrv.Publish(&msg)
}

func (m Main) publishStatus(state string) {
	if err := m.sseSrv.Publish(statusMessage(state)); err != nil {
		m.logger.Error("Failed to publish status",
			slog.String("status", state),
			slog.String(errLoggerKey, err.Error()))
	}
}
