package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

// ────────────────────────────────────────────────────────────
// SMA Correctness
// ────────────────────────────────────────────────────────────

func TestSMA_PartialWindowAtStart(t *testing.T) {
	// Values: 60, 70, 80, 90, 100, 110, 120
	// Window 5 shrinks at the start:
	//   1: 60
	//   2: (60+70)/2 = 65
	//   3: (60+70+80)/3 = 70
	//   4: (60+..+90)/4 = 75
	//   5: (60+..+100)/5 = 80
	//   6: (70+..+110)/5 = 90
	//   7: (80+..+120)/5 = 100
	sma := NewSMA(5)
	values := []float64{60, 70, 80, 90, 100, 110, 120}
	expected := []float64{60, 65, 70, 75, 80, 90, 100}
	ready := []bool{false, false, false, false, true, true, true}

	for i, v := range values {
		sma.Update(v)
		assert.InDelta(t, expected[i], sma.Value(), tol, "value %d", i)
		assert.Equal(t, ready[i], sma.Ready(), "ready %d", i)
	}
}

func TestSMA_FirstValueEqualsItself(t *testing.T) {
	sma := NewSMA(5)
	sma.Update(73.5)
	assert.Equal(t, 73.5, sma.Value())
	assert.Equal(t, 1, sma.Len())
}

func TestSMA_EmptyIsZero(t *testing.T) {
	sma := NewSMA(5)
	assert.Zero(t, sma.Value())
	assert.False(t, sma.Ready())
}

func TestSMA_WrapsManyTimes(t *testing.T) {
	sma := NewSMA(3)
	for i := 1; i <= 1000; i++ {
		sma.Update(float64(i))
	}
	// last three: 998, 999, 1000
	assert.InDelta(t, 999.0, sma.Value(), tol)
	assert.Equal(t, 3, sma.Len())
}

func TestSMA_PeriodClampedToOne(t *testing.T) {
	sma := NewSMA(0)
	sma.Update(10)
	sma.Update(20)
	assert.Equal(t, 20.0, sma.Value())
	assert.Equal(t, "SMA_1", sma.Name())
}

func TestSMA_Reset(t *testing.T) {
	sma := NewSMA(3)
	for _, v := range []float64{1, 2, 3, 4} {
		sma.Update(v)
	}
	sma.Reset()
	assert.Zero(t, sma.Value())
	sma.Update(42)
	assert.Equal(t, 42.0, sma.Value())
}

// ────────────────────────────────────────────────────────────
// WindowDelta Correctness
// ────────────────────────────────────────────────────────────

func TestWindowDelta_SingleElementIsZero(t *testing.T) {
	d := NewWindowDelta(10)
	d.Update(70)
	assert.Zero(t, d.Value())
}

func TestWindowDelta_NewestMinusOldest(t *testing.T) {
	// Window 3 over 1, 4, 9, 16, 10
	//   1: [1]          → 0
	//   2: [1 4]        → 3
	//   3: [1 4 9]      → 8
	//   4: [4 9 16]     → 12
	//   5: [9 16 10]    → 1
	d := NewWindowDelta(3)
	values := []float64{1, 4, 9, 16, 10}
	expected := []float64{0, 3, 8, 12, 1}

	for i, v := range values {
		d.Update(v)
		assert.InDelta(t, expected[i], d.Value(), tol, "delta %d", i)
	}
	assert.True(t, d.Ready())
	assert.Equal(t, 3, d.Len())
}

func TestWindowDelta_Decrease(t *testing.T) {
	d := NewWindowDelta(2)
	d.Update(90)
	d.Update(80)
	assert.Equal(t, -10.0, d.Value())
}

func TestWindowDelta_IgnoresMiddleValues(t *testing.T) {
	d := NewWindowDelta(4)
	for _, v := range []float64{70, 200, -50, 71} {
		d.Update(v)
	}
	assert.InDelta(t, 1.0, d.Value(), tol)
}

func TestWindowDelta_Reset(t *testing.T) {
	d := NewWindowDelta(3)
	d.Update(1)
	d.Update(9)
	d.Reset()
	require.Zero(t, d.Len())
	assert.Zero(t, d.Value())
	assert.Equal(t, "DELTA_3", d.Name())
}

func TestIndicatorInterface(t *testing.T) {
	var _ Indicator = NewSMA(5)
	var _ Indicator = NewWindowDelta(10)
}
