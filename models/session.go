package models

import "time"

// SessionState is the document lifecycle of a session.
type SessionState string

const (
	SessionEmpty      SessionState = "empty"
	SessionProcessing SessionState = "processing"
	SessionReady      SessionState = "ready"
)

// SessionSnapshot is a consistent read-only view of a session.
type SessionSnapshot struct {
	ID         string        `json:"id"`
	State      SessionState  `json:"state"`
	Document   *DocumentInfo `json:"document,omitempty"`
	Chunks     int           `json:"chunks"`
	Turns      int           `json:"turns"`
	CreatedAt  time.Time     `json:"created_at"`
	LastActive time.Time     `json:"last_active"`
}

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
