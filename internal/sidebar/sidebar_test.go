package sidebar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	closed = State{}
	open   = State{Open: true}
	wide   = Viewport{Width: 1280, Breakpoint: 768}
	narrow = Viewport{Width: 375, Breakpoint: 768}
)

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		event Event
		want  State
	}{
		{"closed toggle opens", closed, Toggle{}, open},
		{"open toggle closes", open, Toggle{}, closed},
		{"open close button", open, Close{Cause: CloseButton}, closed},
		{"open escape", open, Close{Cause: EscapeKey}, closed},
		{"open outside click", open, Close{Cause: OutsideClick}, closed},
		{"closed escape stays closed", closed, Close{Cause: EscapeKey}, closed},
		{"closed outside click stays closed", closed, Close{Cause: OutsideClick}, closed},
		{"open navigate narrow closes", open, Navigate{HeadingID: "m", Resolved: true, Narrow: true}, closed},
		{"open navigate wide stays open", open, Navigate{HeadingID: "m", Resolved: true}, open},
		{"open navigate unresolved stays open", open, Navigate{HeadingID: "x", Narrow: true}, open},
		{"closed navigate stays closed", closed, Navigate{HeadingID: "m", Resolved: true, Narrow: true}, closed},
		{"focus sets active", closed, HeadingEnteredFocus{HeadingID: "a"}, State{ActiveHeadingID: "a"}},
		{"focus keeps open", open, HeadingEnteredFocus{HeadingID: "a"}, State{Open: true, ActiveHeadingID: "a"}},
		{"empty focus ignored", State{ActiveHeadingID: "a"}, HeadingEnteredFocus{}, State{ActiveHeadingID: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transition(tt.from, tt.event))
		})
	}
}

func TestTransition_ClosedOnlyToggleOpens(t *testing.T) {
	events := []Event{
		Close{Cause: CloseButton},
		Close{Cause: EscapeKey},
		Close{Cause: OutsideClick},
		Navigate{HeadingID: "a", Resolved: true},
		Navigate{HeadingID: "a", Resolved: true, Narrow: true},
		HeadingEnteredFocus{HeadingID: "a"},
	}
	for _, e := range events {
		assert.False(t, Transition(closed, e).Open, "%s must not open the sidebar", e.Type())
	}
	assert.True(t, Transition(closed, Toggle{}).Open)
}

func TestTransition_ActiveSurvivesOpenClose(t *testing.T) {
	s := Transition(closed, HeadingEnteredFocus{HeadingID: "method"})
	s = Transition(s, Toggle{})
	s = Transition(s, Close{Cause: EscapeKey})
	assert.Equal(t, "method", s.ActiveHeadingID)
}

func TestTransition_LastFocusWins(t *testing.T) {
	s := closed
	for _, id := range []string{"a", "c", "b"} {
		s = Transition(s, HeadingEnteredFocus{HeadingID: id})
	}
	assert.Equal(t, "b", s.ActiveHeadingID)
}

func TestPlan_Open(t *testing.T) {
	_, effects := Step(closed, Toggle{}, wide)
	assert.Equal(t, []Effect{ShowSidebar{Shift: true}}, effects)

	_, effects = Step(closed, Toggle{}, narrow)
	assert.Equal(t, []Effect{ShowSidebar{Shift: false}}, effects)
}

func TestPlan_Close(t *testing.T) {
	_, effects := Step(open, Close{Cause: OutsideClick}, wide)
	assert.Equal(t, []Effect{HideSidebar{}}, effects)

	_, effects = Step(closed, Close{Cause: OutsideClick}, wide)
	assert.Empty(t, effects)
}

func TestPlan_Navigate(t *testing.T) {
	next, effects := Step(open, Navigate{HeadingID: "method", Resolved: true, Narrow: true}, narrow)
	assert.False(t, next.Open)
	assert.Equal(t, []Effect{ScrollTo{HeadingID: "method"}, HideSidebar{}}, effects)

	next, effects = Step(open, Navigate{HeadingID: "method", Resolved: true}, wide)
	assert.True(t, next.Open)
	assert.Equal(t, []Effect{ScrollTo{HeadingID: "method"}}, effects)

	next, effects = Step(open, Navigate{HeadingID: "stale", Narrow: true}, narrow)
	assert.True(t, next.Open)
	assert.Empty(t, effects)
}

func TestPlan_Focus(t *testing.T) {
	_, effects := Step(closed, HeadingEnteredFocus{HeadingID: "a"}, wide)
	assert.Equal(t, []Effect{MarkActive{HeadingID: "a"}}, effects)
}

func TestViewport_Narrow(t *testing.T) {
	assert.True(t, Viewport{Width: 768, Breakpoint: 768}.Narrow())
	assert.False(t, Viewport{Width: 769, Breakpoint: 768}.Narrow())
	assert.True(t, Viewport{Width: 500}.Narrow(), "zero breakpoint falls back to default")
	assert.False(t, Viewport{Width: 1024}.Narrow())
}
