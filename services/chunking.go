package services

import (
	"strings"

	"summarysnap/internal/apperr"
	"summarysnap/models"

	"github.com/google/uuid"
)

// Chunker splits page text into fixed-size windows that overlap by a fixed
// number of runes. Windows never cross a page boundary.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, apperr.Errorf(apperr.ErrConfig, "chunker.new", "chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, apperr.Errorf(apperr.ErrConfig, "chunker.new", "chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks every page in order. Pages with only whitespace yield no
// chunks. Order numbers run across the whole document.
func (c *Chunker) Split(documentID string, pages []models.Page) []models.Chunk {
	stride := c.size - c.overlap
	var chunks []models.Chunk

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		runes := []rune(page.Text)

		for start := 0; ; start += stride {
			end := min(start+c.size, len(runes))
			chunks = append(chunks, models.Chunk{
				ID:         uuid.NewString(),
				DocumentID: documentID,
				Page:       page.Number,
				Order:      len(chunks),
				Offset:     start,
				Text:       string(runes[start:end]),
			})
			if end == len(runes) {
				break
			}
		}
	}
	return chunks
}
