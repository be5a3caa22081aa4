// Package indicator provides trailing-window calculations over a sample stream.
//
// Indicators are fed one value at a time in series order and expose the value
// for the most recent window. Windows are row-count based: a window of N holds
// the last N values regardless of how far apart their timestamps are. Near the
// start of a stream the window shrinks to however many values have been seen.
package indicator

// Indicator is the interface for all trailing-window indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA_5", "DELTA_10").
	Name() string

	// Update feeds the next value of the stream.
	Update(v float64)

	// Value returns the value for the current (possibly partial) window.
	// Returns 0 before the first Update.
	Value() float64

	// Ready returns true once the window holds its full period.
	Ready() bool

	// Reset clears all state for reuse.
	Reset()
}
