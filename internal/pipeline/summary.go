package pipeline

import (
	"log/slog"
	"math"
	"time"

	"hrplot/internal/model"
)

// Summary describes a processed series.
type Summary struct {
	Samples int       `json:"samples"`
	Spikes  int       `json:"spikes"`
	Drops   int       `json:"drops"`
	Min     float64   `json:"min_bpm"`
	Max     float64   `json:"max_bpm"`
	Mean    float64   `json:"mean_bpm"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Summarize computes raw heart-rate statistics and flag counts for s.
// An empty series yields a zero Summary.
func Summarize(s model.Series) Summary {
	if len(s) == 0 {
		return Summary{}
	}
	sum := Summary{
		Samples: len(s),
		Min:     math.Inf(1),
		Max:     math.Inf(-1),
		Start:   s[0].TS,
		End:     s[len(s)-1].TS,
	}
	var total float64
	for i := range s {
		hr := s[i].HeartRate
		total += hr
		sum.Min = math.Min(sum.Min, hr)
		sum.Max = math.Max(sum.Max, hr)
		if s[i].Spike {
			sum.Spikes++
		}
		if s[i].Drop {
			sum.Drops++
		}
	}
	sum.Mean = total / float64(len(s))
	return sum
}

// Duration returns the time covered by the series.
func (s Summary) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", s.Samples),
		slog.Int("spikes", s.Spikes),
		slog.Int("drops", s.Drops),
		slog.Float64("min_bpm", s.Min),
		slog.Float64("max_bpm", s.Max),
		slog.Float64("mean_bpm", s.Mean),
		slog.String("duration", s.Duration().String()),
	)
}
