package model

import "time"

// Record is a single heart-rate measurement as read from the input.
// MeasuredAtMs is a Unix epoch timestamp in milliseconds.
type Record struct {
	MeasuredAtMs int64   `json:"measured_at_ms"`
	HeartRate    float64 `json:"heart_rate"`
}

// Time returns the measurement time in UTC.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.MeasuredAtMs).UTC()
}

// Sample is a Record together with the values derived from it by the pipeline.
type Sample struct {
	Record
	TS          time.Time `json:"ts"`
	Smoothed    float64   `json:"smoothed"`     // trailing moving average of HeartRate
	WindowDelta float64   `json:"window_delta"` // newest - oldest smoothed value in the trailing window
	Spike       bool      `json:"spike"`        // WindowDelta >= threshold
	Drop        bool      `json:"drop"`         // WindowDelta <= -threshold
}

// SpikeValue returns the smoothed value at a spike. ok is false when the
// sample is not a spike and nothing should be plotted.
func (s *Sample) SpikeValue() (v float64, ok bool) {
	if !s.Spike {
		return 0, false
	}
	return s.Smoothed, true
}

// DropValue is the rapid-decrease counterpart of SpikeValue.
func (s *Sample) DropValue() (v float64, ok bool) {
	if !s.Drop {
		return 0, false
	}
	return s.Smoothed, true
}

// Series is an ordered sequence of samples, ascending by TS.
type Series []Sample

// Spikes returns the number of samples flagged as rapid increases.
func (s Series) Spikes() int {
	n := 0
	for i := range s {
		if s[i].Spike {
			n++
		}
	}
	return n
}
