package models

import "time"

// Message represents an individual entry in the transcript. It contains the unique identifier, the
// participant's role, the text content and the time the message was created. A Message is never
// modified after it has been appended to a conversation.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleUser represents a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant represents a reply from the chat backend, or the apology shown when the backend
	// could not be reached.
	RoleAssistant Role = "assistant"
)
