package sidebar

// EventType names an event for logging.
type EventType string

const (
	EventToggle              EventType = "Toggle"
	EventClose               EventType = "Close"
	EventNavigate            EventType = "Navigate"
	EventHeadingEnteredFocus EventType = "HeadingEnteredFocus"
)

// Event is an input to Transition.
type Event interface {
	Type() EventType
}

// CloseCause records what closed the sidebar.
type CloseCause string

const (
	CloseButton  CloseCause = "close_button"
	EscapeKey    CloseCause = "escape_key"
	OutsideClick CloseCause = "outside_click"
)

// Toggle is fired by the toggle affordance.
type Toggle struct{}

func (Toggle) Type() EventType { return EventToggle }

// Close is fired by the close button, Escape, or a click outside the
// sidebar and toggle.
type Close struct {
	Cause CloseCause
}

func (Close) Type() EventType { return EventClose }

// Navigate is fired by clicking an outline link.
type Navigate struct {
	HeadingID string
	Resolved  bool // target element exists
	Narrow    bool // viewport at or below the breakpoint when clicked
}

func (Navigate) Type() EventType { return EventNavigate }

// HeadingEnteredFocus is fired when a heading enters the trigger band.
// Delivery order decides the active entry: the last one applied wins.
type HeadingEnteredFocus struct {
	HeadingID string
}

func (HeadingEnteredFocus) Type() EventType { return EventHeadingEnteredFocus }

// Effect is a page change planned for a transition.
type Effect interface {
	effect()
}

// ShowSidebar opens the sidebar; Shift also reflows the main content.
type ShowSidebar struct {
	Shift bool
}

// HideSidebar closes the sidebar and undoes any reflow.
type HideSidebar struct{}

// MarkActive moves the active marker to the link for HeadingID.
type MarkActive struct {
	HeadingID string
}

// ScrollTo smooth-scrolls the document to the heading.
type ScrollTo struct {
	HeadingID string
}

func (ShowSidebar) effect() {}
func (HideSidebar) effect() {}
func (MarkActive) effect()  {}
func (ScrollTo) effect()    {}
