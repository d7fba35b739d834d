package site

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/sidetoc/internal/doctree"
)

// Meta is the YAML frontmatter of an article.
type Meta struct {
	Title       string   `yaml:"title" json:"title,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
	TOC         *bool    `yaml:"toc" json:"toc,omitempty"` // nil means enabled
	Draft       bool     `yaml:"draft" json:"draft,omitempty"`
}

// TOCEnabled reports whether the article wants a sidebar.
func (m Meta) TOCEnabled() bool {
	return m.TOC == nil || *m.TOC
}

// Rendered is one markdown source turned into an HTML fragment.
type Rendered struct {
	Meta    Meta
	Title   string // Text of the first h1, "" if none
	HTML    string
	Outline *doctree.Outline
	Words   int // Prose words, code blocks excluded
}

// Markdown renders article sources with goldmark.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown builds a renderer with GFM, auto heading ids and syntax
// highlighting in the given chroma style.
func NewMarkdown(style string) *Markdown {
	if style == "" {
		style = "github"
	}
	return &Markdown{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)}
}

// Render splits off frontmatter, renders the body and builds its outline.
// The outline is read back from the rendered HTML, so labels are the text a
// browser shows for each heading.
func (m *Markdown) Render(src []byte) (*Rendered, error) {
	meta, body, err := extractFrontmatter(src)
	if err != nil {
		return nil, err
	}

	doc := m.md.Parser().Parse(text.NewReader(body))

	out := &Rendered{Meta: meta}
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			out.Words += len(strings.Fields(string(t.Segment.Value(body))))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := m.md.Renderer().Render(&buf, body, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	out.HTML = buf.String()

	out.Outline, _, err = PageOutline(strings.NewReader(out.HTML), "")
	if err != nil {
		return nil, fmt.Errorf("read rendered headings: %w", err)
	}
	out.Outline.Walk(func(e *doctree.Entry, _ int) {
		if e.Level == 1 && out.Title == "" {
			out.Title = e.Label
		}
	})
	return out, nil
}

// extractFrontmatter splits a leading "---" YAML block from content.
func extractFrontmatter(content []byte) (Meta, []byte, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return Meta{}, content, nil
	}

	rest := content[4:]
	var yamlContent, remaining []byte
	if bytes.HasPrefix(rest, []byte("---\n")) {
		remaining = rest[4:]
	} else if end := bytes.Index(rest, []byte("\n---\n")); end >= 0 {
		yamlContent, remaining = rest[:end], rest[end+5:]
	} else if bytes.Equal(rest, []byte("---")) {
		// Empty block closing at end of file.
	} else if bytes.HasSuffix(rest, []byte("\n---")) {
		yamlContent = rest[:len(rest)-4]
	} else {
		return Meta{}, nil, fmt.Errorf("unclosed frontmatter")
	}

	var meta Meta
	if err := yaml.Unmarshal(yamlContent, &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, remaining, nil
}
