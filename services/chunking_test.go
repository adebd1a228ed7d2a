package services

import (
	"errors"
	"strings"
	"testing"

	"summarysnap/internal/apperr"
	"summarysnap/models"
)

func TestNewChunkerValidation(t *testing.T) {
	tests := []struct {
		size, overlap int
		ok            bool
	}{
		{1000, 200, true},
		{10, 0, true},
		{10, 9, true},
		{0, 0, false},
		{-5, 0, false},
		{10, 10, false},
		{10, -1, false},
	}
	for _, tt := range tests {
		_, err := NewChunker(tt.size, tt.overlap)
		if tt.ok && err != nil {
			t.Errorf("NewChunker(%d, %d) unexpected error: %v", tt.size, tt.overlap, err)
		}
		if !tt.ok && !errors.Is(err, apperr.ErrConfig) {
			t.Errorf("NewChunker(%d, %d) expected ErrConfig, got %v", tt.size, tt.overlap, err)
		}
	}
}

func TestChunkerCoverageAndOverlap(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
		textLen       int
	}{
		{"default shape", 1000, 200, 4321},
		{"exact fit", 100, 20, 100},
		{"shorter than size", 100, 20, 37},
		{"stride multiple", 10, 5, 25},
		{"no overlap", 7, 0, 50},
		{"max overlap", 6, 5, 20},
		{"single rune", 1, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.size, tt.overlap)
			if err != nil {
				t.Fatal(err)
			}
			// multi-byte runes make byte and rune offsets differ
			text := []rune(strings.Repeat("aé✓z", tt.textLen/4+1))[:tt.textLen]
			chunks := c.Split("doc", []models.Page{{Number: 1, Text: string(text)}})
			if len(chunks) == 0 {
				t.Fatal("no chunks")
			}

			covered := make([]bool, len(text))
			for i, ch := range chunks {
				r := []rune(ch.Text)
				if len(r) > tt.size {
					t.Errorf("chunk %d has %d runes > %d", i, len(r), tt.size)
				}
				if string(text[ch.Offset:ch.Offset+len(r)]) != ch.Text {
					t.Errorf("chunk %d text does not match page at offset %d", i, ch.Offset)
				}
				for p := ch.Offset; p < ch.Offset+len(r); p++ {
					covered[p] = true
				}
				if ch.Order != i || ch.Page != 1 || ch.DocumentID != "doc" || ch.ID == "" {
					t.Errorf("chunk %d metadata = %+v", i, ch)
				}
				if i > 0 {
					prev := chunks[i-1]
					if ch.Offset != prev.Offset+tt.size-tt.overlap {
						t.Errorf("chunk %d offset %d, want stride %d from %d", i, ch.Offset, tt.size-tt.overlap, prev.Offset)
					}
					prevEnd := prev.Offset + len([]rune(prev.Text))
					if got := prevEnd - ch.Offset; got != tt.overlap {
						t.Errorf("chunks %d/%d overlap %d, want %d", i-1, i, got, tt.overlap)
					}
				}
			}
			for p, ok := range covered {
				if !ok {
					t.Fatalf("rune %d not covered", p)
				}
			}
			last := chunks[len(chunks)-1]
			if last.Offset+len([]rune(last.Text)) != len(text) {
				t.Error("last chunk does not end at page end")
			}
		})
	}
}

func TestChunkerPagesAndBlankPages(t *testing.T) {
	c, _ := NewChunker(5, 1)
	chunks := c.Split("doc", []models.Page{
		{Number: 1, Text: "abcdefgh"},
		{Number: 2, Text: "  \n "},
		{Number: 3, Text: "xyz"},
	})
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if chunks[0].Text != "abcde" || chunks[1].Text != "efgh" || chunks[2].Text != "xyz" {
		t.Errorf("unexpected texts: %q %q %q", chunks[0].Text, chunks[1].Text, chunks[2].Text)
	}
	if chunks[2].Page != 3 || chunks[2].Order != 2 || chunks[2].Offset != 0 {
		t.Errorf("page 3 chunk = %+v", chunks[2])
	}
	if got := c.Split("doc", nil); len(got) != 0 {
		t.Errorf("expected no chunks for no pages, got %d", len(got))
	}
}
