package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"summarysnap/models"

	"github.com/xuri/excelize/v2"
)

var exportTurns = []models.ConversationTurn{
	{Role: models.RoleUser, Content: "What is this about?", Timestamp: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)},
	{Role: models.RoleAssistant, Content: "It is about aardvarks.", Timestamp: time.Date(2025, 3, 1, 9, 30, 5, 0, time.UTC)},
}

func TestTranscriptText(t *testing.T) {
	out := string(TranscriptText(exportTurns))
	want := "[2025-03-01 09:30:00] You:\nWhat is this about?\n\n[2025-03-01 09:30:05] Assistant:\nIt is about aardvarks.\n"
	if out != want {
		t.Errorf("TranscriptText =\n%q\nwant\n%q", out, want)
	}
	if len(TranscriptText(nil)) != 0 {
		t.Error("empty transcript should render nothing")
	}
}

func TestTranscriptExcel(t *testing.T) {
	data, err := TranscriptExcel(exportTurns)
	if err != nil {
		t.Fatalf("TranscriptExcel: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != transcriptSheet {
		t.Errorf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(transcriptSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != "#,Role,Content,Timestamp" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][1] != "assistant" || rows[2][2] != "It is about aardvarks." {
		t.Errorf("row 2 = %v", rows[2])
	}
}
