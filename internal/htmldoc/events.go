package htmldoc

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/dgallion1/sidetoc/internal/dom"
)

type listener struct {
	node     *html.Node // nil for the document itself
	typ      string
	fn       func(dom.Event)
	released bool
}

type observer struct {
	targets    []*html.Node
	rootMargin string
	fn         func([]dom.Visibility)
	released   bool
}

type event struct {
	typ       string
	target    dom.Element
	key       string
	prevented bool
}

func (e *event) Type() string        { return e.typ }
func (e *event) Target() dom.Element { return e.target }
func (e *event) Key() string         { return e.key }
func (e *event) PreventDefault()     { e.prevented = true }

func (d *Document) Listen(target dom.Element, typ string, fn func(dom.Event)) dom.Release {
	var node *html.Node
	if el, ok := target.(*Element); ok && el != nil {
		node = el.n
	}
	l := &listener{node: node, typ: typ, fn: fn}

	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()

	return func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		l.released = true
		d.listeners = slices.DeleteFunc(d.listeners, func(x *listener) bool { return x == l })
		return nil
	}
}

func (d *Document) Observe(targets []dom.Element, rootMargin string, fn func([]dom.Visibility)) dom.Release {
	o := &observer{rootMargin: rootMargin, fn: fn}
	for _, t := range targets {
		if el, ok := t.(*Element); ok && el != nil {
			o.targets = append(o.targets, el.n)
		}
	}

	d.mu.Lock()
	d.observers = append(d.observers, o)
	d.mu.Unlock()

	return func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		o.released = true
		d.observers = slices.DeleteFunc(d.observers, func(x *observer) bool { return x == o })
		return nil
	}
}

// Click dispatches a click on target: listeners on the target run first,
// then on each ancestor, then on the document. It reports whether a
// listener called PreventDefault.
func (d *Document) Click(target dom.Element) bool {
	el, ok := target.(*Element)
	if !ok || el == nil {
		return false
	}
	ev := &event{typ: "click", target: el}
	for n := el.n; n != nil; n = n.Parent {
		d.fire(n, ev)
	}
	d.fire(nil, ev)
	return ev.prevented
}

// KeyDown dispatches a keydown to document listeners.
func (d *Document) KeyDown(key string) bool {
	ev := &event{typ: "keydown", target: d.Body(), key: key}
	d.fire(nil, ev)
	return ev.prevented
}

// fire runs the listeners registered on node for ev without holding the
// document lock, so listeners may call back into the document.
func (d *Document) fire(node *html.Node, ev *event) {
	d.mu.Lock()
	var matched []*listener
	for _, l := range d.listeners {
		if l.node == node && l.typ == ev.typ {
			matched = append(matched, l)
		}
	}
	d.mu.Unlock()

	for _, l := range matched {
		d.mu.Lock()
		released := l.released
		d.mu.Unlock()
		if released {
			continue
		}
		l.fn(ev)
	}
}

// Deliver hands one notification batch to every observer, filtered to the
// targets each observer registered. Entries keep their order.
func (d *Document) Deliver(batch []dom.Visibility) {
	d.mu.Lock()
	observers := slices.Clone(d.observers)
	d.mu.Unlock()

	for _, o := range observers {
		var entries []dom.Visibility
		for _, v := range batch {
			el, ok := v.Target.(*Element)
			if ok && el != nil && slices.Contains(o.targets, el.n) {
				entries = append(entries, v)
			}
		}
		if len(entries) > 0 {
			o.fn(entries)
		}
	}
}

// Enter delivers one batch in which the headings with the given ids entered
// the trigger band, in argument order.
func (d *Document) Enter(ids ...string) {
	var batch []dom.Visibility
	for _, id := range ids {
		if el := d.ByID(id); el != nil {
			batch = append(batch, dom.Visibility{Target: el, Intersecting: true})
		}
	}
	d.Deliver(batch)
}

// Leave delivers one batch in which the given headings left the band.
func (d *Document) Leave(ids ...string) {
	var batch []dom.Visibility
	for _, id := range ids {
		if el := d.ByID(id); el != nil {
			batch = append(batch, dom.Visibility{Target: el, Intersecting: false})
		}
	}
	d.Deliver(batch)
}

// ListenerCount returns the number of live listener registrations.
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// ObserverCount returns the number of live observer registrations.
func (d *Document) ObserverCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

// RootMargins returns the root margin of every live observer.
func (d *Document) RootMargins() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.observers))
	for _, o := range d.observers {
		out = append(out, o.rootMargin)
	}
	return out
}
