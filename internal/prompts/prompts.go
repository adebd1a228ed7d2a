// Package prompts holds the prompt catalog: one template per summary style
// plus the question-condensing and answer templates used for chat.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"summarysnap/internal/apperr"
	"summarysnap/models"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultCatalog []byte

type styleSpec struct {
	Description string `yaml:"description"`
	MaxLines    int    `yaml:"max_lines"`
	Template    string `yaml:"template"`
}

type catalogFile struct {
	SummaryStyles    map[string]styleSpec `yaml:"summary_styles"`
	CondenseQuestion string               `yaml:"condense_question"`
	Answer           string               `yaml:"answer"`
}

// Style is one summary variant. MaxLines of zero means unbounded.
type Style struct {
	Name        models.SummaryStyle
	Description string
	MaxLines    int
	tmpl        *template.Template
}

// Render fills the style template with text.
func (s Style) Render(text string) (string, error) {
	return execute(s.tmpl, struct{ Text string }{text})
}

type Catalog struct {
	styles   map[models.SummaryStyle]Style
	condense *template.Template
	answer   *template.Template
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. Sections missing from the file fall back to the
// embedded defaults; styles in the file are added to (or replace) the
// default styles. An empty path returns the defaults.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.New(apperr.ErrConfig, "prompts.load", err)
	}

	var base, override catalogFile
	if err := yaml.Unmarshal(defaultCatalog, &base); err != nil {
		return nil, apperr.New(apperr.ErrConfig, "prompts.load", err)
	}
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, apperr.New(apperr.ErrConfig, "prompts.load", fmt.Errorf("%s: %w", path, err))
	}

	for name, spec := range override.SummaryStyles {
		base.SummaryStyles[name] = spec
	}
	if override.CondenseQuestion != "" {
		base.CondenseQuestion = override.CondenseQuestion
	}
	if override.Answer != "" {
		base.Answer = override.Answer
	}
	return build(base)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperr.New(apperr.ErrConfig, "prompts.parse", err)
	}
	return build(f)
}

func build(f catalogFile) (*Catalog, error) {
	if len(f.SummaryStyles) == 0 {
		return nil, apperr.Errorf(apperr.ErrConfig, "prompts.parse", "catalog defines no summary styles")
	}

	c := &Catalog{styles: make(map[models.SummaryStyle]Style, len(f.SummaryStyles))}
	for name, spec := range f.SummaryStyles {
		key := models.NormalizeStyle(name)
		tmpl, err := parse("style."+string(key), spec.Template, "{{.Text}}")
		if err != nil {
			return nil, err
		}
		c.styles[key] = Style{
			Name:        key,
			Description: spec.Description,
			MaxLines:    spec.MaxLines,
			tmpl:        tmpl,
		}
	}

	var err error
	if c.condense, err = parse("condense_question", f.CondenseQuestion, "{{.Question}}"); err != nil {
		return nil, err
	}
	if c.answer, err = parse("answer", f.Answer, "{{.Question}}"); err != nil {
		return nil, err
	}
	return c, nil
}

func parse(name, text, required string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Errorf(apperr.ErrConfig, "prompts.parse", "template %s is empty", name)
	}
	if !strings.Contains(text, required) {
		return nil, apperr.Errorf(apperr.ErrConfig, "prompts.parse", "template %s must reference %s", name, required)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, apperr.New(apperr.ErrConfig, "prompts.parse", err)
	}
	return tmpl, nil
}

// Style looks up a summary style by name.
func (c *Catalog) Style(name models.SummaryStyle) (Style, bool) {
	s, ok := c.styles[models.NormalizeStyle(string(name))]
	return s, ok
}

// StyleNames returns the known style names in sorted order.
func (c *Catalog) StyleNames() []string {
	names := make([]string, 0, len(c.styles))
	for name := range c.styles {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// RenderCondense builds the prompt that turns a follow-up question into a
// standalone one.
func (c *Catalog) RenderCondense(history []models.ConversationTurn, question string) (string, error) {
	return execute(c.condense, struct {
		History  string
		Question string
	}{FormatHistory(history), question})
}

// RenderAnswer builds the grounded answer prompt from retrieved chunks.
func (c *Catalog) RenderAnswer(chunks []models.ScoredChunk, question string) (string, error) {
	parts := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		parts = append(parts, sc.Chunk.Text)
	}
	return execute(c.answer, struct {
		Context  string
		Question string
	}{strings.Join(parts, "\n\n"), question})
}

// FormatHistory renders a transcript as Human/Assistant lines.
func FormatHistory(turns []models.ConversationTurn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case models.RoleUser:
			b.WriteString("Human: ")
		default:
			b.WriteString("Assistant: ")
		}
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func execute(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
