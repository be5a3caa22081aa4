package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := run(recordsAt(1000, 60, 60, 80, 80, 80, 80))
	sum := Summarize(s)

	assert.Equal(t, 6, sum.Samples)
	assert.Equal(t, 60.0, sum.Min)
	assert.Equal(t, 80.0, sum.Max)
	assert.InDelta(t, 73.333333, sum.Mean, 1e-5)
	assert.Equal(t, s.Spikes(), sum.Spikes)
	assert.Zero(t, sum.Drops)
	assert.Equal(t, 5*time.Second, sum.Duration())
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, Summary{}, sum)
	assert.Zero(t, sum.Duration())
}
