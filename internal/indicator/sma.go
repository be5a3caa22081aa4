package indicator

import "strconv"

// SMA calculates a trailing Simple Moving Average over a rolling window.
// Until period values have been seen it averages all values so far, so the
// first value equals itself and the second is the mean of the first two.
type SMA struct {
	period int
	buf    []float64 // preallocated circular buffer
	idx    int       // current write position
	count  int       // total values received
}

// NewSMA creates a new SMA with the given period. Periods below 1 are raised to 1.
func NewSMA(period int) *SMA {
	if period < 1 {
		period = 1
	}
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Name() string { return "SMA_" + strconv.Itoa(s.period) }

func (s *SMA) Update(v float64) {
	s.buf[s.idx] = v
	s.idx = (s.idx + 1) % s.period
	s.count++
}

// Value sums the live part of the buffer on every call. Periods are small and
// this keeps the mean free of running-sum drift.
func (s *SMA) Value() float64 {
	n := s.filled()
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += s.buf[i]
	}
	return sum / float64(n)
}

func (s *SMA) Ready() bool { return s.count >= s.period }

// Len returns how many values the current window holds.
func (s *SMA) Len() int { return s.filled() }

func (s *SMA) filled() int {
	if s.count < s.period {
		return s.count
	}
	return s.period
}

// Reset clears the SMA state for reuse.
func (s *SMA) Reset() {
	s.idx = 0
	s.count = 0
	for i := range s.buf {
		s.buf[i] = 0
	}
}
