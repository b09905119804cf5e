package producer

// DefaultStatsWindow is the number of recent message sizes kept.
const DefaultStatsWindow = 200

// SizeStats tracks encoded message sizes over a rolling window.
type SizeStats struct {
	window []int
	next   int
	full   bool
	sum    int
}

// NewSizeStats creates a window of n samples; n <= 0 uses DefaultStatsWindow.
func NewSizeStats(n int) *SizeStats {
	if n <= 0 {
		n = DefaultStatsWindow
	}
	return &SizeStats{window: make([]int, n)}
}

// Add records one size, evicting the oldest sample once the window is full.
func (s *SizeStats) Add(size int) {
	s.sum += size - s.window[s.next]
	s.window[s.next] = size
	s.next++
	if s.next == len(s.window) {
		s.next = 0
		s.full = true
	}
}

// Count returns the number of samples in the window.
func (s *SizeStats) Count() int {
	if s.full {
		return len(s.window)
	}
	return s.next
}

// Average returns the mean size, or 0 with no samples.
func (s *SizeStats) Average() float64 {
	n := s.Count()
	if n == 0 {
		return 0
	}
	return float64(s.sum) / float64(n)
}

// Max returns the largest size in the window.
func (s *SizeStats) Max() int {
	m := 0
	for _, v := range s.window[:s.Count()] {
		if v > m {
			m = v
		}
	}
	return m
}
