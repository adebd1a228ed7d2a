package models

import "strings"

// SummaryStyle selects the prompt template a summary is generated with.
type SummaryStyle string

const (
	StyleLong  SummaryStyle = "long"
	StyleShort SummaryStyle = "short"
)

// NormalizeStyle lowercases and trims a user supplied style name. Whether the
// style exists is decided by the prompt catalog.
func NormalizeStyle(s string) SummaryStyle {
	return SummaryStyle(strings.ToLower(strings.TrimSpace(s)))
}

type SummaryRequest struct {
	Style string `json:"style" binding:"required"`
}

type SummaryResponse struct {
	Style   SummaryStyle `json:"style"`
	Summary string       `json:"summary"`
	Chunks  int          `json:"chunks"`
}
