package models

import "time"

// DocumentStatus tracks whether an uploaded PDF has been chunked and indexed.
type DocumentStatus string

const (
	StatusUnprocessed DocumentStatus = "unprocessed"
	StatusProcessed   DocumentStatus = "processed"
)

// Document is one uploaded PDF.
type Document struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Content  []byte         `json:"-"`
	Status   DocumentStatus `json:"status"`
}

// DocumentInfo is the processed-document identity kept by a session.
type DocumentInfo struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	SHA256      string    `json:"sha256"`
	Pages       int       `json:"pages"`
	Chunks      int       `json:"chunks"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Page is the extracted text of one PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a contiguous span of page text. Offset is measured in runes from
// the start of the page; Order is the position in the document's chunk set.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	Order      int    `json:"order"`
	Offset     int    `json:"offset"`
	Text       string `json:"text"`
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// UploadResponse represents the response after a document is processed
type UploadResponse struct {
	Document DocumentInfo `json:"document"`
	State    string       `json:"state"`
	Message  string       `json:"message"`
}
