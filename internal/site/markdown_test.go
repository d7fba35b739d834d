package site

import (
	"strings"
	"testing"
)

func TestMarkdown_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	r, err := NewMarkdown("").Render([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", r.Title)
	}

	// Top-level: one h1 ("Title")
	if len(r.Outline.Entries) != 1 {
		t.Fatalf("expected 1 top-level entry (h1), got %d", len(r.Outline.Entries))
	}

	h1 := r.Outline.Entries[0]
	if h1.Label != "Title" || h1.HeadingID != "title" {
		t.Errorf("expected h1 Title/#title, got %q/#%q", h1.Label, h1.HeadingID)
	}

	// h1 has two h2 children: "Section A" and "Section B"
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 h2 children, got %d", len(h1.Children))
	}

	secA := h1.Children[0]
	if secA.HeadingID != "section-a" {
		t.Errorf("expected %q, got %q", "section-a", secA.HeadingID)
	}

	// Section A has one h3 child
	if len(secA.Children) != 1 {
		t.Fatalf("expected 1 h3 child under Section A, got %d", len(secA.Children))
	}
	if sub := secA.Children[0]; sub.Label != "Subsection A1" {
		t.Errorf("expected %q, got %q", "Subsection A1", sub.Label)
	}

	if secB := h1.Children[1]; secB.Label != "Section B" {
		t.Errorf("expected %q, got %q", "Section B", secB.Label)
	}

	if !strings.Contains(r.HTML, `<h2 id="section-a">Section A</h2>`) {
		t.Errorf("expected rendered heading with auto id, got:\n%s", r.HTML)
	}
}

func TestMarkdown_NoHeadings(t *testing.T) {
	r, err := NewMarkdown("").Render([]byte("Just some plain text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Outline.Len() != 0 {
		t.Errorf("expected empty outline, got %d entries", r.Outline.Len())
	}
	if r.Title != "" {
		t.Errorf("expected no title, got %q", r.Title)
	}
	if !strings.Contains(r.HTML, "<p>Just some plain text.</p>") {
		t.Errorf("unexpected html: %s", r.HTML)
	}
}

func TestMarkdown_LevelSkip(t *testing.T) {
	input := "## A\n\n#### B\n\n### C\n\n## D\n"
	r, err := NewMarkdown("").Render([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(r.Outline.Entries) != 2 {
		t.Fatalf("expected 2 top-level entries, got %d", len(r.Outline.Entries))
	}
	a := r.Outline.Entries[0]
	if len(a.Children) != 2 {
		t.Fatalf("expected B and C under A, got %d children", len(a.Children))
	}
	if a.Children[0].Level != 4 || a.Children[1].Level != 3 {
		t.Errorf("expected levels 4 then 3, got %d then %d", a.Children[0].Level, a.Children[1].Level)
	}
}

func TestMarkdown_InlineMarkupInHeading(t *testing.T) {
	r, err := NewMarkdown("").Render([]byte("## The `--watch` *flag*\n\n## Next\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Outline.Entries[0].Label; got != "The --watch flag" {
		t.Errorf("expected plain label, got %q", got)
	}
}

func TestMarkdown_LabelsAreDisplayedText(t *testing.T) {
	r, err := NewMarkdown("").Render([]byte("# Tom &amp; Jerry\n\n## A \\* B\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Tom & Jerry" {
		t.Errorf("expected title %q, got %q", "Tom & Jerry", r.Title)
	}
	if got := r.Outline.Entries[0].Label; got != "Tom & Jerry" {
		t.Errorf("expected decoded entity, got %q", got)
	}
	if got := r.Outline.Entries[0].Children[0].Label; got != "A * B" {
		t.Errorf("expected unescaped label, got %q", got)
	}
}

func TestMarkdown_Frontmatter(t *testing.T) {
	input := `---
title: Custom Title
description: A paper.
tags: [go, toc]
toc: false
---
# Heading

Body.
`
	r, err := NewMarkdown("").Render([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Meta.Title != "Custom Title" {
		t.Errorf("expected meta title, got %q", r.Meta.Title)
	}
	if len(r.Meta.Tags) != 2 || r.Meta.Tags[1] != "toc" {
		t.Errorf("unexpected tags %v", r.Meta.Tags)
	}
	if r.Meta.TOCEnabled() {
		t.Error("expected toc disabled")
	}
	if strings.Contains(r.HTML, "Custom Title") || strings.Contains(r.HTML, "description:") {
		t.Errorf("frontmatter leaked into body: %s", r.HTML)
	}
	if r.Title != "Heading" {
		t.Errorf("expected h1 title %q, got %q", "Heading", r.Title)
	}
}

func TestExtractFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		body    string
		title   string
		wantErr bool
	}{
		{"none", "# Hi\n", "# Hi\n", "", false},
		{"crlf", "---\r\ntitle: T\r\n---\r\nbody\r\n", "body\n", "T", false},
		{"empty block", "---\n---\nbody\n", "body\n", "", false},
		{"empty block at eof", "---\n---", "", "", false},
		{"only frontmatter", "---\ntitle: T\n---", "", "T", false},
		{"unclosed", "---\ntitle: T\nbody\n", "", "", true},
		{"bad yaml", "---\ntitle: [\n---\nbody\n", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := extractFrontmatter([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(body) != tt.body {
				t.Errorf("body: expected %q, got %q", tt.body, body)
			}
			if meta.Title != tt.title {
				t.Errorf("title: expected %q, got %q", tt.title, meta.Title)
			}
		})
	}
}

func TestMarkdown_HighlightsCode(t *testing.T) {
	r, err := NewMarkdown("monokai").Render([]byte("```go\nfunc main() {}\n```\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(r.HTML, "<pre") || !strings.Contains(r.HTML, "style=") {
		t.Errorf("expected highlighted code block, got %s", r.HTML)
	}
}

func TestMarkdown_WordCount(t *testing.T) {
	src := "# Two words\n\nSome *bold* text.\n\n```go\nx := 1\n```\n"
	r, err := NewMarkdown("").Render([]byte(src))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.Words != 5 {
		t.Errorf("Words = %d, want 5", r.Words)
	}
}

func TestReadingMinutes(t *testing.T) {
	tests := []struct {
		words, want int
	}{
		{0, 0},
		{1, 1},
		{220, 1},
		{221, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		if got := ReadingMinutes(tt.words); got != tt.want {
			t.Errorf("ReadingMinutes(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}
