package models

import (
	"time"

	"github.com/segmentio/ksuid"
)

// Session represents one authenticated WebSocket connection to the editor.
// Sessions are ephemeral: created on connect, destroyed on disconnect,
// never persisted.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ConnectedAt  time.Time `json:"connected_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

func NewSession(userID string) *Session {
	return &Session{
		ID:           ksuid.New().String(),
		UserID:       userID,
		ConnectedAt:  time.Now(),
		LastActiveAt: time.Now(),
	}
}

// CursorPosition is ephemeral presence state relayed between editors.
// It is passed through unvalidated and never stored.
type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}
