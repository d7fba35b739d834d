//go:build js && wasm

// Package jsdom implements the dom boundary over the live browser document
// through syscall/js.
package jsdom

import (
	"strings"
	"sync"
	"syscall/js"

	"github.com/dgallion1/sidetoc/internal/dom"
)

// Element wraps a browser element.
type Element struct {
	v js.Value
}

func wrap(v js.Value) dom.Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &Element{v: v}
}

func (e *Element) TagName() string      { return strings.ToLower(e.v.Get("tagName").String()) }
func (e *Element) ID() string           { return e.v.Get("id").String() }
func (e *Element) SetID(id string)      { e.v.Set("id", id) }
func (e *Element) Text() string         { return strings.TrimSpace(e.v.Get("textContent").String()) }
func (e *Element) AddClass(name string) { e.v.Get("classList").Call("add", name) }
func (e *Element) RemoveClass(name string) {
	e.v.Get("classList").Call("remove", name)
}

func (e *Element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *Element) Attr(name string) string {
	a := e.v.Call("getAttribute", name)
	if a.IsNull() {
		return ""
	}
	return a.String()
}

func (e *Element) Contains(other dom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	return e.v.Call("contains", o.v).Bool()
}

func (e *Element) ScrollIntoView() {
	e.v.Call("scrollIntoView", map[string]any{"behavior": "smooth"})
}

func (e *Element) Remove() { e.v.Call("remove") }

// Document is the page the program is running in.
type Document struct {
	win js.Value
	doc js.Value
}

// New binds to window.document.
func New() *Document {
	win := js.Global()
	return &Document{win: win, doc: win.Get("document")}
}

// Loading reports whether the document is still being parsed.
func (d *Document) Loading() bool {
	return d.doc.Get("readyState").String() == "loading"
}

func (d *Document) Body() dom.Element { return wrap(d.doc.Get("body")) }
func (d *Document) Main() dom.Element { return wrap(d.doc.Call("querySelector", "main")) }

func (d *Document) ByID(id string) dom.Element {
	if id == "" {
		return nil
	}
	return wrap(d.doc.Call("getElementById", id))
}

func (d *Document) ByClass(class string) []dom.Element {
	return collect(d.doc.Call("getElementsByClassName", class))
}

func (d *Document) Headings(scopeClass string) []dom.Element {
	root := d.doc.Get("body")
	if scopeClass != "" {
		scopes := d.doc.Call("getElementsByClassName", scopeClass)
		if scopes.Length() == 0 {
			return nil
		}
		root = scopes.Index(0)
	}
	if root.IsNull() {
		return nil
	}
	return collect(root.Call("querySelectorAll", "h1, h2, h3, h4, h5, h6"))
}

func (d *Document) Links(in dom.Element) []dom.Element {
	el, ok := in.(*Element)
	if !ok || el == nil {
		return nil
	}
	return collect(el.v.Call("querySelectorAll", "a"))
}

func (d *Document) Append(fragment string) ([]dom.Element, error) {
	tmpl := d.doc.Call("createElement", "template")
	tmpl.Set("innerHTML", fragment)
	added := collect(tmpl.Get("content").Get("children"))
	body := d.doc.Get("body")
	for _, el := range added {
		body.Call("appendChild", el.(*Element).v)
	}
	return added, nil
}

func (d *Document) Listen(target dom.Element, typ string, fn func(dom.Event)) dom.Release {
	tgt := d.doc
	if el, ok := target.(*Element); ok && el != nil {
		tgt = el.v
	}
	return d.listen(tgt, typ, fn)
}

// OnWindow registers fn for events dispatched to the window, such as
// pagehide.
func (d *Document) OnWindow(typ string, fn func(dom.Event)) dom.Release {
	return d.listen(d.win, typ, fn)
}

func (d *Document) listen(tgt js.Value, typ string, fn func(dom.Event)) dom.Release {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(&event{v: args[0]})
		}
		return nil
	})
	tgt.Call("addEventListener", typ, cb)

	var once sync.Once
	return func() error {
		once.Do(func() {
			tgt.Call("removeEventListener", typ, cb)
			cb.Release()
		})
		return nil
	}
}

func (d *Document) Observe(targets []dom.Element, rootMargin string, fn func([]dom.Visibility)) dom.Release {
	ctor := d.win.Get("IntersectionObserver")
	if ctor.IsUndefined() {
		return func() error { return nil }
	}

	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		entries := args[0]
		batch := make([]dom.Visibility, 0, entries.Length())
		for i := 0; i < entries.Length(); i++ {
			e := entries.Index(i)
			batch = append(batch, dom.Visibility{
				Target:       wrap(e.Get("target")),
				Intersecting: e.Get("isIntersecting").Bool(),
			})
		}
		fn(batch)
		return nil
	})
	obs := ctor.New(cb, map[string]any{"rootMargin": rootMargin})
	for _, t := range targets {
		if el, ok := t.(*Element); ok && el != nil {
			obs.Call("observe", el.v)
		}
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			obs.Call("disconnect")
			cb.Release()
		})
		return nil
	}
}

func (d *Document) ViewportWidth() int { return d.win.Get("innerWidth").Int() }

// collect snapshots a NodeList or HTMLCollection.
func collect(list js.Value) []dom.Element {
	n := list.Length()
	out := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Element{v: list.Index(i)})
	}
	return out
}

type event struct {
	v js.Value
}

func (e *event) Type() string { return e.v.Get("type").String() }

func (e *event) Target() dom.Element {
	t := e.v.Get("target")
	if t.IsNull() || t.IsUndefined() || t.Get("nodeType").Int() != 1 {
		return nil
	}
	return &Element{v: t}
}

func (e *event) Key() string {
	k := e.v.Get("key")
	if k.IsUndefined() || k.IsNull() {
		return ""
	}
	return k.String()
}

func (e *event) PreventDefault() { e.v.Call("preventDefault") }
