package services

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
	"github.com/google/uuid"
)

// Conversation holds the transcript of the current chat session and whether a request to the chat
// backend is in flight. The transcript only grows, until Clear discards it wholesale. A Conversation
// is safe for concurrent use.
type Conversation struct {
	mu       sync.RWMutex
	messages []models.Message
	inFlight bool

	now   func() time.Time
	newID func() string
}

// NewConversation returns an empty conversation with no request in flight.
func NewConversation() *Conversation {
	return &Conversation{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// AppendUserMessage appends text as a user message and marks a request as in flight. It does
// nothing and returns false if text is blank or a request is already in flight. The content is
// stored as typed, without trimming.
func (c *Conversation) AppendUserMessage(text string) (models.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return models.Message{}, false
	}

	msg := c.message(models.RoleUser, text)
	c.messages = append(c.messages, msg)
	c.inFlight = true
	return msg, true
}

// AppendAssistantMessage appends text as an assistant message and clears the in-flight flag.
func (c *Conversation) AppendAssistantMessage(text string) models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := c.message(models.RoleAssistant, text)
	c.messages = append(c.messages, msg)
	c.inFlight = false
	return msg
}

// Clear empties the transcript. The in-flight flag is left alone, so the reply to a request that
// is still pending lands in the fresh transcript.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = nil
}

// Messages returns a copy of the transcript in the order the messages were appended.
func (c *Conversation) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.messages)
}

// Len returns the number of messages in the transcript.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.messages)
}

// InFlight reports whether a request to the chat backend is pending.
func (c *Conversation) InFlight() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.inFlight
}

func (c *Conversation) message(role models.Role, text string) models.Message {
	return models.Message{
		ID:        c.newID(),
		Role:      role,
		Content:   text,
		Timestamp: c.now(),
	}
}
