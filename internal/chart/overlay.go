// Package chart renders a processed heart-rate series.
//
// Interactive renders an HTML page with a zoomable time axis; PNG renders a
// static image. Both draw the same overlays: raw samples as small markers, the
// smoothed signal as a line and rapid increases as triangle markers.
package chart

import (
	"time"

	"hrplot/internal/model"
)

// Static labels.
const (
	DefaultTitle = "Heart Rate Over Time with Rapid Increases (10-second window)"
	XAxisName    = "Time"
	YAxisName    = "Heart Rate (bpm)"

	SeriesRaw      = "Raw"
	SeriesSmoothed = "Smoothed"
	SeriesSpikes   = "Rapid increase"
	SeriesDrops    = "Rapid decrease"
)

// Point is one plotted value on the time axis.
type Point struct {
	TS    time.Time
	Value float64
}

// Overlays holds the plotted series. Spikes and Drops contain only the
// flagged samples.
type Overlays struct {
	Raw      []Point
	Smoothed []Point
	Spikes   []Point
	Drops    []Point
}

// BuildOverlays splits s into its plotted series.
func BuildOverlays(s model.Series) Overlays {
	o := Overlays{
		Raw:      make([]Point, 0, len(s)),
		Smoothed: make([]Point, 0, len(s)),
		Spikes:   []Point{},
		Drops:    []Point{},
	}
	for i := range s {
		o.Raw = append(o.Raw, Point{TS: s[i].TS, Value: s[i].HeartRate})
		o.Smoothed = append(o.Smoothed, Point{TS: s[i].TS, Value: s[i].Smoothed})
		if v, ok := s[i].SpikeValue(); ok {
			o.Spikes = append(o.Spikes, Point{TS: s[i].TS, Value: v})
		}
		if v, ok := s[i].DropValue(); ok {
			o.Drops = append(o.Drops, Point{TS: s[i].TS, Value: v})
		}
	}
	return o
}
