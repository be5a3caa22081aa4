package indicator

import (
	"strconv"

	"github.com/gammazero/deque"
)

// WindowDelta tracks the change across a trailing window: the newest value
// minus the oldest value still inside the window. A single-element window has
// a delta of 0.
type WindowDelta struct {
	period int
	win    deque.Deque[float64]
}

// NewWindowDelta creates a WindowDelta over the last period values.
// Periods below 1 are raised to 1.
func NewWindowDelta(period int) *WindowDelta {
	if period < 1 {
		period = 1
	}
	return &WindowDelta{period: period}
}

func (d *WindowDelta) Name() string { return "DELTA_" + strconv.Itoa(d.period) }

func (d *WindowDelta) Update(v float64) {
	d.win.PushBack(v)
	if d.win.Len() > d.period {
		d.win.PopFront()
	}
}

func (d *WindowDelta) Value() float64 {
	if d.win.Len() == 0 {
		return 0
	}
	return d.win.Back() - d.win.Front()
}

func (d *WindowDelta) Ready() bool { return d.win.Len() >= d.period }

// Len returns how many values the current window holds.
func (d *WindowDelta) Len() int { return d.win.Len() }

// Reset clears the window for reuse.
func (d *WindowDelta) Reset() { d.win.Clear() }
