package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"hrplot/internal/model"
)

// Options controls chart presentation.
type Options struct {
	Title     string
	Subtitle  string
	ShowDrops bool // adds the rapid-decrease overlay
	Width     string
	Height    string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Width == "" {
		o.Width = "1280px"
	}
	if o.Height == "" {
		o.Height = "640px"
	}
	return o
}

// Interactive builds the echarts page for s: raw markers, the smoothed line
// and spike markers on a shared time axis, with a range slider and a single
// tooltip listing every series at the hovered time.
func Interactive(s model.Series, o Options) *charts.Line {
	o = o.withDefaults()
	ov := BuildOverlays(s)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: o.Subtitle}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "40"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time", Name: XAxisName}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: YAxisName, Min: "dataMin"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
		),
	)

	line.AddSeries(SeriesSmoothed, lineData(ov.Smoothed),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "red", Width: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
	)

	markers := charts.NewScatter()
	markers.AddSeries(SeriesRaw, scatterData(ov.Raw, "circle", 3),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "blue"}),
	)
	markers.AddSeries(SeriesSpikes, scatterData(ov.Spikes, "triangle", 8),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "orange"}),
	)
	if o.ShowDrops {
		markers.AddSeries(SeriesDrops, scatterData(ov.Drops, "triangle", 8),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "purple"}),
		)
	}
	line.Overlap(markers)

	return line
}

// RenderHTML writes the interactive chart page for s to w.
func RenderHTML(w io.Writer, s model.Series, o Options) error {
	return Interactive(s, o).Render(w)
}

func lineData(pts []Point) []opts.LineData {
	out := make([]opts.LineData, len(pts))
	for i, p := range pts {
		out[i] = opts.LineData{Value: []interface{}{p.TS.UnixMilli(), p.Value}}
	}
	return out
}

func scatterData(pts []Point, symbol string, size int) []opts.ScatterData {
	out := make([]opts.ScatterData, len(pts))
	for i, p := range pts {
		out[i] = opts.ScatterData{
			Value:      []interface{}{p.TS.UnixMilli(), p.Value},
			Symbol:     symbol,
			SymbolSize: size,
		}
	}
	return out
}
