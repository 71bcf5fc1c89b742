// Package domain contains core concepts of the chat system.
// This file defines Message entities and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"github.com/google/uuid"
	"time"
)

// Message represents an immutable direct message between two users.
// At least one of Text or ImageURL must be non-empty.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Empty reports whether the message carries no content at all.
// An empty message must never reach the store.
func (m Message) Empty() bool {
	return m.Text == "" && m.ImageURL == ""
}
