// Package render serializes an outline into the sidebar markup.
package render

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/sidetoc/internal/doctree"
)

// Class names the widget inserts or toggles.
const (
	ClassToggle      = "toc-toggle"
	ClassSidebar     = "toc-sidebar"
	ClassClose       = "toc-close"
	ClassHeader      = "toc-header"
	ClassList        = "sidebar-toc-list"
	ClassMainContent = "main-content"

	ClassOpen    = "open"
	ClassHidden  = "hidden"
	ClassShifted = "shifted"
	ClassActive  = "active"
)

// HeadingAttr links an outline anchor back to its heading id.
const HeadingAttr = "data-heading"

// Toggle returns the toggle button markup.
func Toggle() (string, error) {
	btn := element(atom.Button, "class", ClassToggle, "aria-label", "Toggle Table of Contents")
	btn.AppendChild(text("TOC"))
	return serialize(btn)
}

// Sidebar returns the sidebar container holding the nested outline list.
func Sidebar(o *doctree.Outline) (string, error) {
	div := SidebarNode(o)
	return serialize(div)
}

// SidebarNode builds the sidebar container as a detached node tree.
func SidebarNode(o *doctree.Outline) *html.Node {
	div := element(atom.Div, "class", ClassSidebar)

	closeBtn := element(atom.Button, "class", ClassClose, "aria-label", "Close Table of Contents")
	closeBtn.AppendChild(text("×"))
	div.AppendChild(closeBtn)

	header := element(atom.Div, "class", ClassHeader)
	header.AppendChild(text("Table of Contents"))
	div.AppendChild(header)

	list := element(atom.Ul, "class", ClassList)
	if o != nil {
		appendEntries(list, o.Entries)
	}
	div.AppendChild(list)
	return div
}

// List renders only the nested list, without the sidebar chrome.
func List(o *doctree.Outline) (string, error) {
	list := element(atom.Ul, "class", ClassList)
	if o != nil {
		appendEntries(list, o.Entries)
	}
	return serialize(list)
}

// appendEntries adds one <li> per entry, recursing into a nested <ul> for
// children.
func appendEntries(ul *html.Node, entries []*doctree.Entry) {
	for _, e := range entries {
		li := element(atom.Li)
		a := element(atom.A, "href", "#"+e.HeadingID, HeadingAttr, e.HeadingID)
		a.AppendChild(text(e.Label))
		li.AppendChild(a)

		if len(e.Children) > 0 {
			nested := element(atom.Ul)
			appendEntries(nested, e.Children)
			li.AppendChild(nested)
		}
		ul.AppendChild(li)
	}
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func serialize(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render %s: %w", n.Data, err)
	}
	return buf.String(), nil
}
