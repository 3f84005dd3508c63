package controller

import (
	"time"

	"github.com/nikbrunner/bmtab/internal/model"
)

// Messages is the single transient feedback channel. A new message
// replaces the current one and gets its own full display window.
type Messages struct {
	now     func() time.Time
	current *model.ActionMessage
}

// NewMessages creates an empty channel using now as its clock.
func NewMessages(now func() time.Time) *Messages {
	if now == nil {
		now = time.Now
	}
	return &Messages{now: now}
}

// Show replaces the current message.
func (m *Messages) Show(text string, typ model.MessageType) {
	m.current = &model.ActionMessage{
		Text:      text,
		Type:      typ,
		ExpiresAt: m.now().Add(model.MessageDuration),
	}
}

// Success is Show with MessageSuccess.
func (m *Messages) Success(text string) {
	m.Show(text, model.MessageSuccess)
}

// Error is Show with MessageError.
func (m *Messages) Error(text string) {
	m.Show(text, model.MessageError)
}

// Current returns the visible message at now, or nil.
func (m *Messages) Current(now time.Time) *model.ActionMessage {
	if m.current == nil || m.current.Expired(now) {
		return nil
	}
	return m.current
}

// Clear drops the current message.
func (m *Messages) Clear() {
	m.current = nil
}
