// Package sidebar is the sidebar shell's state machine. Transition is pure;
// Plan turns a transition into effects the widget applies to the page.
package sidebar

// DefaultBreakpoint is the widest viewport, in CSS pixels, treated as a
// narrow (mobile) layout.
const DefaultBreakpoint = 768

// State is the shell's entire mutable state.
type State struct {
	Open            bool   `json:"open"`
	ActiveHeadingID string `json:"active_heading_id,omitempty"` // "" when nothing is active
}

// Viewport describes the layout the effects are applied to.
type Viewport struct {
	Width      int
	Breakpoint int
}

// Narrow reports whether the viewport uses the overlay (mobile) layout.
func (v Viewport) Narrow() bool {
	bp := v.Breakpoint
	if bp <= 0 {
		bp = DefaultBreakpoint
	}
	return v.Width <= bp
}

// Transition returns the state after e. It never mutates its input.
func Transition(s State, e Event) State {
	switch ev := e.(type) {
	case Toggle:
		s.Open = !s.Open
	case Close:
		s.Open = false
	case Navigate:
		if ev.Resolved && ev.Narrow {
			s.Open = false
		}
	case HeadingEnteredFocus:
		if ev.HeadingID != "" {
			s.ActiveHeadingID = ev.HeadingID
		}
	}
	return s
}

// Plan lists the effects that bring the page from prev to next after e.
func Plan(prev, next State, e Event, vp Viewport) []Effect {
	var effects []Effect

	if nav, ok := e.(Navigate); ok && nav.Resolved {
		effects = append(effects, ScrollTo{HeadingID: nav.HeadingID})
	}

	switch {
	case !prev.Open && next.Open:
		effects = append(effects, ShowSidebar{Shift: !vp.Narrow()})
	case prev.Open && !next.Open:
		effects = append(effects, HideSidebar{})
	}

	if _, ok := e.(HeadingEnteredFocus); ok && next.ActiveHeadingID != "" {
		effects = append(effects, MarkActive{HeadingID: next.ActiveHeadingID})
	}
	return effects
}

// Step is Transition followed by Plan.
func Step(s State, e Event, vp Viewport) (State, []Effect) {
	next := Transition(s, e)
	return next, Plan(s, next, e, vp)
}
