package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"summarysnap/internal/apperr"
	"summarysnap/internal/config"
	"summarysnap/internal/logger"
	"summarysnap/models"

	"github.com/ledongthuc/pdf"
)

// PDFLoader turns uploaded PDF bytes into ordered page texts. The bytes are
// spooled to a temp file that is always removed before Load returns.
type PDFLoader struct {
	tempDir string
	maxSize int64
}

func NewPDFLoader(cfg *config.Config) *PDFLoader {
	return &PDFLoader{tempDir: cfg.TempDir, maxSize: cfg.MaxFileSize}
}

// Load extracts the text of every page. It fails with apperr.ErrLoad when the
// bytes are not a PDF, cannot be parsed, or contain no extractable text.
func (l *PDFLoader) Load(ctx context.Context, doc *models.Document) ([]models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.New(apperr.ErrLoad, "pdf.load", err)
	}
	if len(doc.Content) == 0 {
		return nil, apperr.Errorf(apperr.ErrLoad, "pdf.load", "%s is empty", doc.Filename)
	}
	if l.maxSize > 0 && int64(len(doc.Content)) > l.maxSize {
		return nil, apperr.Errorf(apperr.ErrLoad, "pdf.load", "%s exceeds the %d byte limit", doc.Filename, l.maxSize)
	}
	if !bytes.HasPrefix(doc.Content, []byte("%PDF-")) {
		return nil, apperr.Errorf(apperr.ErrLoad, "pdf.load", "%s is not a PDF file", doc.Filename)
	}

	tmp, err := os.CreateTemp(l.tempDir, "upload-*.pdf")
	if err != nil {
		return nil, apperr.New(apperr.ErrLoad, "pdf.load", fmt.Errorf("create temp file: %w", err))
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove temp file", "path", path, "error", err)
		}
	}()

	if _, err := tmp.Write(doc.Content); err != nil {
		tmp.Close()
		return nil, apperr.New(apperr.ErrLoad, "pdf.load", fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return nil, apperr.New(apperr.ErrLoad, "pdf.load", fmt.Errorf("close temp file: %w", err))
	}

	pages, err := extractPages(ctx, path)
	if err != nil {
		return nil, apperr.New(apperr.ErrLoad, "pdf.load", fmt.Errorf("%s: %w", doc.Filename, err))
	}

	hasText := false
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			hasText = true
			break
		}
	}
	if !hasText {
		return nil, apperr.Errorf(apperr.ErrLoad, "pdf.load", "%s contains no extractable text", doc.Filename)
	}

	logger.Debug("pdf loaded", "filename", doc.Filename, "pages", len(pages))
	return pages, nil
}

// extractPages reads page text with ledongthuc/pdf. The library panics on
// some malformed input; that is reported as an error.
func extractPages(ctx context.Context, path string) (pages []models.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n := reader.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = make([]models.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, models.Page{Number: i})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("failed to extract page text", "page", i, "error", err)
			text = ""
		}
		pages = append(pages, models.Page{Number: i, Text: text})
	}
	return pages, nil
}
