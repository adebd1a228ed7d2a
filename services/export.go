package services

import (
	"bytes"
	"fmt"
	"strings"

	"summarysnap/internal/logger"
	"summarysnap/models"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatText  = "txt"
	ExportFormatExcel = "xlsx"

	transcriptSheet = "Transcript"
)

// TranscriptText renders turns as plain text, one block per turn.
func TranscriptText(turns []models.ConversationTurn) []byte {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		label := "You"
		if t.Role == models.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "[%s] %s:\n%s\n", t.Timestamp.Format("2006-01-02 15:04:05"), label, t.Content)
	}
	return []byte(b.String())
}

// TranscriptExcel renders turns as an xlsx workbook with one row per turn.
func TranscriptExcel(turns []models.ConversationTurn) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("error closing Excel file", "error", err)
		}
	}()

	index, err := f.NewSheet(transcriptSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"#", "Role", "Content", "Timestamp"}
	for i, header := range headers {
		if err := f.SetCellValue(transcriptSheet, fmt.Sprintf("%c1", 'A'+i), header); err != nil {
			return nil, err
		}
	}

	for i, t := range turns {
		row := i + 2
		values := []any{i + 1, string(t.Role), t.Content, t.Timestamp.Format("2006-01-02 15:04:05")}
		for col, v := range values {
			if err := f.SetCellValue(transcriptSheet, fmt.Sprintf("%c%d", 'A'+col, row), v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(transcriptSheet, "B", "B", 12); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(transcriptSheet, "C", "C", 100); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(transcriptSheet, "D", "D", 20); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
