package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hrplot/internal/model"
)

// ErrTooFewPoints is returned by PNG when the series cannot span an axis.
var ErrTooFewPoints = errors.New("chart: need at least two samples for a static image")

var colorOrange = drawing.Color{R: 255, G: 165, B: 0, A: 255}

// pointStyle renders markers only, no connecting line.
func pointStyle(col drawing.Color, size float64) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    size,
		DotColor:    col,
	}
}

// PNG writes a static image of s to w. The range slider has no static
// equivalent, so the image always shows the whole series.
func PNG(w io.Writer, s model.Series, o Options) error {
	if len(s) < 2 {
		return ErrTooFewPoints
	}
	o = o.withDefaults()
	ov := BuildOverlays(s)

	series := []gochart.Series{
		timeSeries(SeriesRaw, ov.Raw, pointStyle(drawing.ColorBlue, 2)),
		timeSeries(SeriesSmoothed, ov.Smoothed, gochart.Style{
			StrokeColor: drawing.ColorRed,
			StrokeWidth: 2,
		}),
	}
	if len(ov.Spikes) > 0 {
		series = append(series, timeSeries(SeriesSpikes, ov.Spikes, pointStyle(colorOrange, 5)))
	}
	if o.ShowDrops && len(ov.Drops) > 0 {
		series = append(series, timeSeries(SeriesDrops, ov.Drops, pointStyle(drawing.Color{R: 128, B: 128, A: 255}, 5)))
	}

	graph := gochart.Chart{
		Title:  o.Title,
		Width:  1280,
		Height: 640,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:           XAxisName,
			ValueFormatter: gochart.TimeMinuteValueFormatter,
		},
		YAxis:  gochart.YAxis{Name: YAxisName},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func timeSeries(name string, pts []Point, style gochart.Style) gochart.TimeSeries {
	xs := make([]time.Time, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.TS
		ys[i] = p.Value
	}
	return gochart.TimeSeries{Name: name, Style: style, XValues: xs, YValues: ys}
}
