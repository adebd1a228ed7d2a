package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"summarysnap/internal/apperr"
	"summarysnap/internal/config"
	"summarysnap/internal/testutil"
	"summarysnap/models"
)

func newTestLoader(t *testing.T) (*PDFLoader, string) {
	t.Helper()
	dir := t.TempDir()
	return NewPDFLoader(&config.Config{TempDir: dir, MaxFileSize: 1 << 20}), dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not cleaned up: %d entries left", len(entries))
	}
}

func TestPDFLoaderExtractsPagesInOrder(t *testing.T) {
	loader, dir := newTestLoader(t)
	doc := &models.Document{
		Filename: "report.pdf",
		Content:  testutil.BuildPDF("First page about apples", "Second page about oranges\nwith two lines", ""),
	}

	pages, err := loader.Load(context.Background(), doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d numbered %d", i, p.Number)
		}
	}
	if !strings.Contains(pages[0].Text, "apples") {
		t.Errorf("page 1 text = %q", pages[0].Text)
	}
	if !strings.Contains(pages[1].Text, "oranges") || !strings.Contains(pages[1].Text, "two lines") {
		t.Errorf("page 2 text = %q", pages[1].Text)
	}
	if strings.TrimSpace(pages[2].Text) != "" {
		t.Errorf("page 3 should be blank, got %q", pages[2].Text)
	}
	assertDirEmpty(t, dir)
}

func TestPDFLoaderRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello, I am a text file")},
		{"truncated pdf", []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\n")},
		{"no text", testutil.BuildPDF("", "   ")},
		{"too large", append([]byte("%PDF-1.4\n"), make([]byte, 2<<20)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, dir := newTestLoader(t)
			_, err := loader.Load(context.Background(), &models.Document{Filename: "x.pdf", Content: tt.content})
			if !errors.Is(err, apperr.ErrLoad) {
				t.Fatalf("expected ErrLoad, got %v", err)
			}
			assertDirEmpty(t, dir)
		})
	}
}

func TestPDFLoaderHonoursCancellation(t *testing.T) {
	loader, _ := newTestLoader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader.Load(ctx, &models.Document{Filename: "a.pdf", Content: testutil.BuildPDF("text")})
	if !errors.Is(err, apperr.ErrLoad) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled ErrLoad, got %v", err)
	}
}
