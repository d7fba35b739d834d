// Package htmldoc implements dom.Document over a golang.org/x/net/html tree.
// It is the host for server-side prerendering and for tests: listeners and
// observers are recorded and fired explicitly through Click, KeyDown and
// Deliver.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/sidetoc/internal/dom"
)

// DefaultViewportWidth is the width reported until SetViewportWidth is called.
const DefaultViewportWidth = 1280

// Document is a parsed HTML page.
type Document struct {
	root *html.Node

	mu        sync.Mutex
	width     int
	listeners []*listener
	observers []*observer
	scrolled  []string
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return New(root), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// New wraps an already parsed tree.
func New(root *html.Node) *Document {
	return &Document{root: root, width: DefaultViewportWidth}
}

// Root returns the underlying tree.
func (d *Document) Root() *html.Node {
	return d.root
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// SetViewportWidth changes the width reported to the widget.
func (d *Document) SetViewportWidth(w int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width = w
}

func (d *Document) ViewportWidth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

func (d *Document) wrap(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return &Element{n: n, doc: d}
}

// Title returns the text of the page's <title>, or "".
func (d *Document) Title() string {
	n := findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "title"
	})
	if n == nil {
		return ""
	}
	return textContent(n)
}

func (d *Document) Body() dom.Element {
	return d.wrap(findBody(d.root))
}

func (d *Document) Main() dom.Element {
	return d.wrap(findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "main"
	}))
}

func (d *Document) ByID(id string) dom.Element {
	if id == "" {
		return nil
	}
	return d.wrap(findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	}))
}

func (d *Document) ByClass(class string) []dom.Element {
	var out []dom.Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, class) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

func (d *Document) Headings(scopeClass string) []dom.Element {
	var scope *html.Node
	if scopeClass == "" {
		scope = findBody(d.root)
	} else {
		scope = findFirst(d.root, func(n *html.Node) bool {
			return n.Type == html.ElementNode && hasClass(n, scopeClass)
		})
	}
	if scope == nil {
		return nil
	}

	var out []dom.Element
	walk(scope, func(n *html.Node) bool {
		if n.Type == html.ElementNode && dom.HeadingLevel(n.Data) > 0 {
			out = append(out, d.wrap(n))
			return false // Headings don't nest.
		}
		return true
	})
	return out
}

func (d *Document) Links(in dom.Element) []dom.Element {
	el, ok := in.(*Element)
	if !ok || el == nil {
		return nil
	}
	var out []dom.Element
	walk(el.n, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

func (d *Document) Append(fragment string) ([]dom.Element, error) {
	body := findBody(d.root)
	if body == nil {
		return nil, fmt.Errorf("append: document has no body")
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	var out []dom.Element
	for _, n := range nodes {
		body.AppendChild(n)
		if n.Type == html.ElementNode {
			out = append(out, d.wrap(n))
		}
	}
	return out, nil
}

// Scrolled returns the ids of elements scrolled into view, oldest first.
func (d *Document) Scrolled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.scrolled)
}

func (d *Document) recordScroll(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrolled = append(d.scrolled, id)
}

// Element is a node of a Document.
type Element struct {
	n   *html.Node
	doc *Document
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node {
	return e.n
}

func (e *Element) TagName() string {
	return e.n.Data
}

func (e *Element) ID() string {
	return attr(e.n, "id")
}

func (e *Element) SetID(id string) {
	setAttr(e.n, "id", id)
}

func (e *Element) Text() string {
	return textContent(e.n)
}

func (e *Element) Attr(name string) string {
	return attr(e.n, name)
}

func (e *Element) AddClass(name string) {
	classes := strings.Fields(attr(e.n, "class"))
	if slices.Contains(classes, name) {
		return
	}
	setAttr(e.n, "class", strings.Join(append(classes, name), " "))
}

func (e *Element) RemoveClass(name string) {
	classes := strings.Fields(attr(e.n, "class"))
	kept := slices.DeleteFunc(classes, func(c string) bool { return c == name })
	if len(kept) == 0 {
		removeAttr(e.n, "class")
		return
	}
	setAttr(e.n, "class", strings.Join(kept, " "))
}

func (e *Element) HasClass(name string) bool {
	return hasClass(e.n, name)
}

func (e *Element) Contains(other dom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	for n := o.n; n != nil; n = n.Parent {
		if n == e.n {
			return true
		}
	}
	return false
}

func (e *Element) ScrollIntoView() {
	e.doc.recordScroll(e.ID())
}

func (e *Element) Remove() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

// walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := findFirst(c, match); m != nil {
			return m
		}
	}
	return nil
}

func findBody(n *html.Node) *html.Node {
	return findFirst(n, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "body"
	})
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}
