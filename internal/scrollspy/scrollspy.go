// Package scrollspy tracks which heading is in reading focus. Headings are
// registered for visibility notifications against a narrow band near the top
// of the viewport; each heading entering the band is reported in delivery
// order, so the last entry of a batch wins.
package scrollspy

import (
	"fmt"
	"sync"

	"github.com/dgallion1/sidetoc/internal/dom"
	"github.com/dgallion1/sidetoc/internal/render"
)

// Band is the trigger region, as the percentage of viewport height cut off
// above and below it.
type Band struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// DefaultBand triggers between 20% and 30% of the viewport height.
var DefaultBand = Band{Top: 20, Bottom: 70}

// RootMargin is the band in CSS margin syntax.
func (b Band) RootMargin() string {
	return fmt.Sprintf("-%d%% 0px -%d%% 0px", b.Top, b.Bottom)
}

// Valid reports whether the band leaves a non-empty region.
func (b Band) Valid() bool {
	return b.Top >= 0 && b.Bottom >= 0 && b.Top+b.Bottom < 100
}

// Controller owns the visibility registration and the active link marker.
type Controller struct {
	band  Band
	links map[string]dom.Element // heading id -> outline link

	mu      sync.Mutex
	active  string
	release dom.Release
}

// New creates a controller over the outline links, keyed by heading id.
func New(links map[string]dom.Element, band Band) *Controller {
	if !band.Valid() {
		band = DefaultBand
	}
	return &Controller{band: band, links: links}
}

// LinksByHeading indexes outline anchors by their data-heading attribute.
func LinksByHeading(links []dom.Element) map[string]dom.Element {
	out := make(map[string]dom.Element, len(links))
	for _, l := range links {
		if id := l.Attr(render.HeadingAttr); id != "" {
			out[id] = l
		}
	}
	return out
}

// Start registers headings for visibility notifications. onFocus is called
// for every heading that enters the band, in delivery order.
func (c *Controller) Start(doc dom.Document, headings []dom.Element, onFocus func(id string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.release != nil {
		return
	}
	c.release = doc.Observe(headings, c.band.RootMargin(), func(batch []dom.Visibility) {
		for _, v := range batch {
			if !v.Intersecting || v.Target == nil {
				continue
			}
			onFocus(v.Target.ID())
		}
	})
}

// Mark moves the active marker to the link for id. Every link loses the
// marker first, so at most one carries it.
func (c *Controller) Mark(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.links {
		l.RemoveClass(render.ClassActive)
	}
	c.active = ""
	if l, ok := c.links[id]; ok {
		l.AddClass(render.ClassActive)
		c.active = id
	}
}

// Active returns the heading id whose link carries the marker, or "".
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Stop releases the visibility registration. It is safe to call before
// Start and more than once.
func (c *Controller) Stop() error {
	c.mu.Lock()
	release := c.release
	c.release = nil
	c.mu.Unlock()

	if release == nil {
		return nil
	}
	return release()
}
