// Package dom is the boundary between the widget and the page it mounts
// into. A browser host implements it over syscall/js and a static host over
// golang.org/x/net/html.
package dom

// Element is a single element of the host document.
type Element interface {
	TagName() string // lower-case, e.g. "h2"
	ID() string
	SetID(id string)
	Text() string
	Attr(name string) string
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
	// Contains reports whether other is this element or one of its descendants.
	Contains(other Element) bool
	// ScrollIntoView smooth-scrolls the document to the element.
	ScrollIntoView()
	// Remove detaches the element from the document.
	Remove()
}

// Event is a user input notification delivered to a listener.
type Event interface {
	Type() string
	Target() Element
	Key() string // KeyboardEvent.key, empty for other events
	PreventDefault()
}

// Visibility is one entry of a visibility notification batch.
type Visibility struct {
	Target       Element
	Intersecting bool
}

// Release stops a registration. Calling it more than once is allowed.
type Release func() error

// Document is the page the widget mounts into.
type Document interface {
	Body() Element
	// Main returns the main content region, or nil.
	Main() Element
	// ByID returns the element with the given id, or nil.
	ByID(id string) Element
	// ByClass returns elements carrying class, in document order.
	ByClass(class string) []Element
	// Headings returns h1..h6 elements inside the first element carrying
	// scopeClass, in document order. An empty scopeClass searches the body.
	Headings(scopeClass string) []Element
	// Links returns the <a> descendants of in, in document order.
	Links(in Element) []Element
	// Append parses an HTML fragment and appends it to the body, returning
	// the new top-level elements.
	Append(fragment string) ([]Element, error)
	// Listen registers fn for events of type typ dispatched to target or
	// bubbling through it. A nil target listens on the document itself.
	Listen(target Element, typ string, fn func(Event)) Release
	// Observe registers targets for visibility notifications against a
	// viewport inset by rootMargin (CSS margin syntax). Batches are
	// delivered asynchronously, in an order the host decides.
	Observe(targets []Element, rootMargin string, fn func([]Visibility)) Release
	// ViewportWidth is the layout viewport width in CSS pixels.
	ViewportWidth() int
}

// HeadingLevel returns 1..6 for h1..h6 tags and 0 otherwise.
func HeadingLevel(tag string) int {
	switch tag {
	case "h1", "H1":
		return 1
	case "h2", "H2":
		return 2
	case "h3", "H3":
		return 3
	case "h4", "H4":
		return 4
	case "h5", "H5":
		return 5
	case "h6", "H6":
		return 6
	}
	return 0
}
