package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one entry of a session transcript.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Answer is a grounded reply together with the chunks it was built from.
type Answer struct {
	Text     string        `json:"text"`
	Question string        `json:"question"`
	Sources  []ScoredChunk `json:"sources"`
}

type ChatRequest struct {
	Question string `json:"question" binding:"required,min=1,max=4000"`
}

type ChatResponse struct {
	Answer    string      `json:"answer"`
	Sources   []SourceRef `json:"sources"`
	Turns     int         `json:"turns"`
	Timestamp time.Time   `json:"timestamp"`
}

// SourceRef is the client-facing view of a retrieved chunk.
type SourceRef struct {
	ChunkID string  `json:"chunk_id"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

type TranscriptResponse struct {
	Turns []ConversationTurn `json:"turns"`
}
