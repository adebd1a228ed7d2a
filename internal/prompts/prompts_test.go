package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"summarysnap/internal/apperr"
	"summarysnap/models"
)

func TestDefaultCatalogStyles(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	names := c.StyleNames()
	if len(names) != 2 || names[0] != "long" || names[1] != "short" {
		t.Fatalf("StyleNames = %v", names)
	}

	short, ok := c.Style(models.StyleShort)
	if !ok {
		t.Fatal("short style missing")
	}
	if short.MaxLines != 6 {
		t.Errorf("short MaxLines = %d, want 6", short.MaxLines)
	}
	long, _ := c.Style(" LONG ")
	if long.MaxLines != 0 {
		t.Errorf("long MaxLines = %d, want 0", long.MaxLines)
	}

	out, err := short.Render("The quick brown fox.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "The quick brown fox.") || !strings.Contains(out, "SHORT SUMMARY:") {
		t.Errorf("unexpected render: %q", out)
	}

	if _, ok := c.Style("haiku"); ok {
		t.Error("unexpected haiku style")
	}
}

func TestRenderAnswerAndCondense(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	answer, err := c.RenderAnswer([]models.ScoredChunk{
		{Chunk: models.Chunk{Text: "alpha context"}},
		{Chunk: models.Chunk{Text: "beta context"}},
	}, "what is alpha?")
	if err != nil {
		t.Fatalf("RenderAnswer: %v", err)
	}
	if !strings.Contains(answer, "alpha context\n\nbeta context") || !strings.Contains(answer, "Question: what is alpha?") {
		t.Errorf("unexpected answer prompt: %q", answer)
	}

	condense, err := c.RenderCondense([]models.ConversationTurn{
		{Role: models.RoleUser, Content: "who wrote it?"},
		{Role: models.RoleAssistant, Content: "Ada."},
	}, "when?")
	if err != nil {
		t.Fatalf("RenderCondense: %v", err)
	}
	if !strings.Contains(condense, "Human: who wrote it?\nAssistant: Ada.\n") {
		t.Errorf("history not rendered: %q", condense)
	}
}

func TestLoadOverridesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	data := `summary_styles:
  bullets:
    description: Bullet list
    max_lines: 10
    template: "List the key points of: {{.Text}}"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.StyleNames(); len(got) != 3 {
		t.Fatalf("StyleNames = %v, want long, short and bullets", got)
	}
	bullets, ok := c.Style("bullets")
	if !ok || bullets.MaxLines != 10 {
		t.Fatalf("bullets style = %+v, ok=%v", bullets, ok)
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "summary_styles: ["},
		{"no styles", "answer: '{{.Question}}'"},
		{"style without text", "summary_styles:\n  x:\n    template: 'no placeholder'\ncondense_question: '{{.Question}}'\nanswer: '{{.Question}}'"},
		{"missing answer", "summary_styles:\n  x:\n    template: '{{.Text}}'\ncondense_question: '{{.Question}}'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, apperr.ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
