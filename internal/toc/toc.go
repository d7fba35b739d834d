// Package toc turns a flat heading sequence into a nested outline.
package toc

import (
	"fmt"

	"github.com/dgallion1/sidetoc/internal/doctree"
)

// MinHeadings is the fewest headings for which a sidebar is worth creating.
const MinHeadings = 2

// SyntheticID returns the id assigned to a heading that has none.
func SyntheticID(index int) string {
	return fmt.Sprintf("heading-%d", index)
}

// AssignIDs gives every heading without an id the synthetic id for its
// position and writes it back to the source element. Existing ids are left
// alone, so running it twice changes nothing.
func AssignIDs(headings []*doctree.Heading) {
	for i, h := range headings {
		if h == nil || h.ID != "" {
			continue
		}
		h.ID = SyntheticID(i)
		if h.Anchor != nil {
			h.Anchor.SetID(h.ID)
		}
	}
}

// Build assigns missing ids and nests the headings. Each heading becomes a
// child of the nearest open entry with a lower level; skipped levels are not
// synthesized.
func Build(headings []*doctree.Heading) *doctree.Outline {
	AssignIDs(headings)

	type stackEntry struct {
		entry *doctree.Entry
		level int
	}

	// Root is level 0, all h1+ nest under it.
	root := &doctree.Entry{}
	stack := []stackEntry{{entry: root, level: 0}}

	for _, h := range headings {
		if h == nil {
			continue
		}
		level := clampLevel(h.Level)
		entry := &doctree.Entry{
			HeadingID: h.ID,
			Label:     h.Text,
			Level:     level,
		}

		// Pop stack until we find a parent with lower level.
		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}

		parent := stack[len(stack)-1].entry
		parent.Children = append(parent.Children, entry)
		stack = append(stack, stackEntry{entry: entry, level: level})
	}

	return &doctree.Outline{Entries: root.Children}
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}
