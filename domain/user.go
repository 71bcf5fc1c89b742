// Package domain contains core concepts of the chat system.
// This file defines User entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is a registered account. Identity fields are immutable after
// signup; only profile fields (FullName, AvatarURL) may change.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
