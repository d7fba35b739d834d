package doctree

// Anchor is the source element a heading was read from. The builder writes
// synthetic ids back through it so the heading becomes a scroll target.
type Anchor interface {
	SetID(id string)
}

// Heading is a titled section marker read from a rendered article.
type Heading struct {
	Level  int    // 1..6
	ID     string // Stable identifier (empty until assigned)
	Text   string // Visible label
	Anchor Anchor // Source element; nil for synthetic input
}

// Outline is the nested table of contents for one article.
type Outline struct {
	Entries []*Entry `json:"entries"` // Top-level entries
}

// Entry is a recursive node of the outline.
type Entry struct {
	HeadingID string   `json:"id"`
	Label     string   `json:"label"`
	Level     int      `json:"level"`
	Children  []*Entry `json:"children,omitempty"`
}

// Walk visits every entry in pre-order. depth is the number of open
// ancestors, so top-level entries have depth 0.
func (o *Outline) Walk(fn func(e *Entry, depth int)) {
	if o == nil {
		return
	}
	var walk func(entries []*Entry, depth int)
	walk = func(entries []*Entry, depth int) {
		for _, e := range entries {
			fn(e, depth)
			walk(e.Children, depth+1)
		}
	}
	walk(o.Entries, 0)
}

// Flatten returns entries in pre-order, which is document order.
func (o *Outline) Flatten() []*Entry {
	var out []*Entry
	o.Walk(func(e *Entry, _ int) {
		out = append(out, e)
	})
	return out
}

// Len returns the total number of entries.
func (o *Outline) Len() int {
	n := 0
	o.Walk(func(*Entry, int) { n++ })
	return n
}

// Find returns the entry for a heading id, or nil.
func (o *Outline) Find(id string) *Entry {
	var found *Entry
	o.Walk(func(e *Entry, _ int) {
		if found == nil && e.HeadingID == id {
			found = e
		}
	})
	return found
}

// Depth returns the nesting depth of a heading id, or -1 if absent.
func (o *Outline) Depth(id string) int {
	depth := -1
	o.Walk(func(e *Entry, d int) {
		if depth < 0 && e.HeadingID == id {
			depth = d
		}
	})
	return depth
}

// Breadcrumb returns the labels from the outermost ancestor down to the
// entry itself, e.g. ["Intro", "Background", "Prior Work"].
func (o *Outline) Breadcrumb(id string) []string {
	if o == nil {
		return nil
	}
	var path []string
	var search func(entries []*Entry) bool
	search = func(entries []*Entry) bool {
		for _, e := range entries {
			path = append(path, e.Label)
			if e.HeadingID == id || search(e.Children) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !search(o.Entries) {
		return nil
	}
	return copyBreadcrumb(path)
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
