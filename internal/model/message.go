package model

import "time"

// MessageDuration is how long an action message stays visible.
const MessageDuration = 3000 * time.Millisecond

// MessageType is the tone of an action message.
type MessageType string

const (
	MessageSuccess MessageType = "success"
	MessageError   MessageType = "error"
)

// ActionMessage is transient user feedback.
type ActionMessage struct {
	Text      string
	Type      MessageType
	ExpiresAt time.Time
}

// Expired reports whether the message should no longer be shown.
func (m ActionMessage) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}
