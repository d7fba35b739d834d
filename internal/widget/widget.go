// Package widget mounts the table of contents sidebar into a document and
// keeps it in sync with user input and scroll position.
package widget

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dgallion1/sidetoc/internal/doctree"
	"github.com/dgallion1/sidetoc/internal/dom"
	"github.com/dgallion1/sidetoc/internal/render"
	"github.com/dgallion1/sidetoc/internal/scrollspy"
	"github.com/dgallion1/sidetoc/internal/sidebar"
	"github.com/dgallion1/sidetoc/internal/toc"
)

// Config controls where the widget looks for headings and how it lays out.
type Config struct {
	ContentClass     string         `json:"content_class"`     // Class of the article container; "" searches the body
	MinHeadings      int            `json:"min_headings"`      // Fewest headings that create a sidebar
	MobileBreakpoint int            `json:"mobile_breakpoint"` // Widest viewport treated as narrow
	Band             scrollspy.Band `json:"focus_band"`        // Scroll-spy trigger band
}

// DefaultConfig returns the settings used by the site.
func DefaultConfig() Config {
	return Config{
		ContentClass:     "prose",
		MinHeadings:      toc.MinHeadings,
		MobileBreakpoint: sidebar.DefaultBreakpoint,
		Band:             scrollspy.DefaultBand,
	}
}

// Widget is one sidebar instance bound to one document. Create it with New,
// mount it with Start, and release it with Stop.
type Widget struct {
	id  string
	doc dom.Document
	cfg Config
	log *slog.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	mounted  bool
	state    sidebar.State
	outline  *doctree.Outline
	toggle   dom.Element
	panel    dom.Element
	main     dom.Element
	spy      *scrollspy.Controller
	releases []dom.Release
}

// New creates an unmounted widget.
func New(doc dom.Document, cfg Config, log *slog.Logger) *Widget {
	if cfg.MinHeadings < toc.MinHeadings {
		cfg.MinHeadings = toc.MinHeadings
	}
	if cfg.MobileBreakpoint <= 0 {
		cfg.MobileBreakpoint = sidebar.DefaultBreakpoint
	}
	if !cfg.Band.Valid() || cfg.Band == (scrollspy.Band{}) {
		cfg.Band = scrollspy.DefaultBand
	}
	id := uuid.NewString()
	return &Widget{
		id:  id,
		doc: doc,
		cfg: cfg,
		log: log.With("widget_id", id),
	}
}

// ID identifies the instance in logs.
func (w *Widget) ID() string {
	return w.id
}

// Start builds the outline and mounts the sidebar. It is a no-op when the
// article has too few headings, when the document already carries a
// sidebar, or when the widget was started or stopped before. Panics are
// recovered and logged so the host page keeps working.
func (w *Widget) Start() (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return nil
	}
	w.started = true

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("widget start panicked", "panic", r)
			w.unmountLocked()
			err = nil
		}
	}()

	if len(w.doc.ByClass(render.ClassSidebar)) > 0 {
		w.log.Info("sidebar already present, skipping")
		return nil
	}

	elements := w.doc.Headings(w.cfg.ContentClass)
	if len(elements) < w.cfg.MinHeadings {
		w.log.Debug("not enough headings for a sidebar", "headings", len(elements))
		return nil
	}

	if err := w.mountLocked(elements); err != nil {
		w.unmountLocked()
		return fmt.Errorf("mount sidebar: %w", err)
	}
	w.log.Info("sidebar mounted", "headings", len(elements), "entries", w.outline.Len())
	return nil
}

func (w *Widget) mountLocked(elements []dom.Element) error {
	w.outline = toc.Build(ReadHeadings(elements))

	toggleHTML, err := render.Toggle()
	if err != nil {
		return err
	}
	sidebarHTML, err := render.Sidebar(w.outline)
	if err != nil {
		return err
	}
	inserted, err := w.doc.Append(toggleHTML + sidebarHTML)
	if err != nil {
		return err
	}
	for _, el := range inserted {
		switch {
		case el.HasClass(render.ClassToggle):
			w.toggle = el
		case el.HasClass(render.ClassSidebar):
			w.panel = el
		}
	}
	if w.toggle == nil || w.panel == nil {
		for _, el := range inserted {
			el.Remove()
		}
		w.toggle, w.panel = nil, nil
		return errors.New("inserted markup is missing the toggle or sidebar")
	}

	if w.main = w.doc.Main(); w.main != nil {
		w.main.AddClass(render.ClassMainContent)
	}

	closeBtn := w.within(render.ClassClose)
	list := w.within(render.ClassList)
	if closeBtn == nil || list == nil {
		return errors.New("sidebar markup is missing the close button or list")
	}

	w.bindLocked(closeBtn, list)

	w.spy = scrollspy.New(scrollspy.LinksByHeading(w.doc.Links(list)), w.cfg.Band)
	w.spy.Start(w.doc, elements, func(id string) {
		w.Dispatch(sidebar.HeadingEnteredFocus{HeadingID: id})
	})

	w.mounted = true
	return nil
}

// ReadHeadings converts heading elements into builder input. Each heading
// keeps its element as anchor so backfilled ids land in the document.
func ReadHeadings(elements []dom.Element) []*doctree.Heading {
	headings := make([]*doctree.Heading, 0, len(elements))
	for _, el := range elements {
		headings = append(headings, &doctree.Heading{
			Level:  dom.HeadingLevel(el.TagName()),
			ID:     el.ID(),
			Text:   el.Text(),
			Anchor: el,
		})
	}
	return headings
}

// within returns the first element with class inside the sidebar.
func (w *Widget) within(class string) dom.Element {
	for _, el := range w.doc.ByClass(class) {
		if w.panel.Contains(el) {
			return el
		}
	}
	return nil
}

func (w *Widget) bindLocked(closeBtn, list dom.Element) {
	listen := func(target dom.Element, typ string, fn func(dom.Event)) {
		w.releases = append(w.releases, w.doc.Listen(target, typ, fn))
	}

	listen(w.toggle, "click", func(dom.Event) {
		w.Dispatch(sidebar.Toggle{})
	})
	listen(closeBtn, "click", func(dom.Event) {
		w.Dispatch(sidebar.Close{Cause: sidebar.CloseButton})
	})
	listen(list, "click", func(e dom.Event) {
		t := e.Target()
		if t == nil || !strings.EqualFold(t.TagName(), "a") {
			return
		}
		e.PreventDefault()
		w.Navigate(strings.TrimPrefix(t.Attr("href"), "#"))
	})
	listen(nil, "keydown", func(e dom.Event) {
		if e.Key() == "Escape" {
			w.Dispatch(sidebar.Close{Cause: sidebar.EscapeKey})
		}
	})
	listen(nil, "click", func(e dom.Event) {
		t := e.Target()
		if w.panel.Contains(t) || w.toggle.Contains(t) {
			return
		}
		w.Dispatch(sidebar.Close{Cause: sidebar.OutsideClick})
	})
}

// Navigate scrolls to the heading with the given id. Unknown ids are
// ignored.
func (w *Widget) Navigate(id string) {
	resolved := id != "" && w.doc.ByID(id) != nil
	if !resolved {
		w.log.Debug("navigate target not found", "heading_id", id)
	}
	w.Dispatch(sidebar.Navigate{
		HeadingID: id,
		Resolved:  resolved,
		Narrow:    w.viewport().Narrow(),
	})
}

// Dispatch applies one event. Events are applied one at a time, in the
// order Dispatch is called.
func (w *Widget) Dispatch(e sidebar.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.mounted || w.stopped {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("event handler panicked", "event", e.Type(), "panic", r)
		}
	}()

	prev := w.state
	next, effects := sidebar.Step(prev, e, w.viewport())
	w.state = next
	for _, eff := range effects {
		w.applyLocked(eff)
	}
	if prev != next {
		w.log.Debug("sidebar transition", "event", e.Type(), "open", next.Open, "active", next.ActiveHeadingID)
	}
	if next.ActiveHeadingID != prev.ActiveHeadingID {
		w.log.Debug("reading position",
			"section", strings.Join(w.outline.Breadcrumb(next.ActiveHeadingID), " > "),
			"depth", w.outline.Depth(next.ActiveHeadingID))
	}
}

func (w *Widget) applyLocked(eff sidebar.Effect) {
	switch e := eff.(type) {
	case sidebar.ShowSidebar:
		w.panel.AddClass(render.ClassOpen)
		w.toggle.AddClass(render.ClassHidden)
		if w.main != nil && e.Shift {
			w.main.AddClass(render.ClassShifted)
		}
	case sidebar.HideSidebar:
		w.panel.RemoveClass(render.ClassOpen)
		w.toggle.RemoveClass(render.ClassHidden)
		if w.main != nil {
			w.main.RemoveClass(render.ClassShifted)
		}
	case sidebar.MarkActive:
		w.spy.Mark(e.HeadingID)
	case sidebar.ScrollTo:
		if el := w.doc.ByID(e.HeadingID); el != nil {
			el.ScrollIntoView()
		}
	}
}

func (w *Widget) viewport() sidebar.Viewport {
	return sidebar.Viewport{Width: w.doc.ViewportWidth(), Breakpoint: w.cfg.MobileBreakpoint}
}

// Stop releases every listener and observer and removes the inserted
// elements. It is safe to call before Start and more than once.
func (w *Widget) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if !w.started {
		return nil
	}

	err := w.unmountLocked()
	if err != nil {
		w.log.Warn("sidebar teardown", "error", err)
		return err
	}
	w.log.Info("sidebar stopped")
	return nil
}

func (w *Widget) unmountLocked() error {
	var err error
	for _, release := range w.releases {
		err = multierr.Append(err, release())
	}
	w.releases = nil

	if w.spy != nil {
		err = multierr.Append(err, w.spy.Stop())
	}
	if w.toggle != nil {
		w.toggle.Remove()
	}
	if w.panel != nil {
		w.panel.Remove()
	}
	if w.main != nil {
		w.main.RemoveClass(render.ClassShifted)
		w.main.RemoveClass(render.ClassMainContent)
	}
	w.mounted = false
	return err
}

// State returns the current sidebar state.
func (w *Widget) State() sidebar.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Outline returns the outline built by Start, or nil when nothing mounted.
func (w *Widget) Outline() *doctree.Outline {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outline
}

// Mounted reports whether the sidebar is currently in the document.
func (w *Widget) Mounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mounted
}
