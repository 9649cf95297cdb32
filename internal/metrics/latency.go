package metrics

import "sort"

// LatencyHistogram is a fixed-capacity circular buffer of recent
// latency samples with percentile queries, grounded on
// LatencyTracker in the original hybrid graph engine: zero allocation
// after construction (Percentile allocates a scratch copy to sort,
// same tradeoff the original makes), one instance per goroutine.
type LatencyHistogram struct {
	samples    []int64
	writeIndex int
	count      int

	totalNanos int64
	minNanos   int64
	maxNanos   int64
}

// NewLatencyHistogram allocates a histogram retaining up to capacity
// recent samples.
func NewLatencyHistogram(capacity int) *LatencyHistogram {
	return &LatencyHistogram{samples: make([]int64, capacity)}
}

// Record adds one latency sample in nanoseconds. Negative samples are
// ignored.
func (h *LatencyHistogram) Record(nanos int64) {
	if nanos < 0 {
		return
	}

	evicting := h.count == len(h.samples)
	var evicted int64
	if evicting {
		evicted = h.samples[h.writeIndex]
	}

	h.samples[h.writeIndex] = nanos
	h.writeIndex = (h.writeIndex + 1) % len(h.samples)
	if !evicting {
		h.count++
	}

	h.totalNanos += nanos
	if evicting {
		h.totalNanos -= evicted
	}

	switch {
	case h.count == 1:
		h.minNanos = nanos
		h.maxNanos = nanos
	case evicting && (evicted == h.minNanos || evicted == h.maxNanos):
		// The sample being overwritten held the current min or max;
		// re-derive both from the retained window rather than trusting
		// stale extremes.
		h.rescanMinMax()
	default:
		if nanos < h.minNanos {
			h.minNanos = nanos
		}
		if nanos > h.maxNanos {
			h.maxNanos = nanos
		}
	}
}

// rescanMinMax recomputes minNanos/maxNanos from the currently
// retained samples. Only called when eviction removes the sample
// holding the current extreme, so it stays off the hot path for
// steady non-evicting recording.
func (h *LatencyHistogram) rescanMinMax() {
	min, max := h.samples[0], h.samples[0]
	for _, v := range h.samples[:h.count] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	h.minNanos = min
	h.maxNanos = max
}

// Count returns the number of samples currently recorded.
func (h *LatencyHistogram) Count() int { return h.count }

// AverageNanos returns the mean of the recorded samples, or 0 if
// empty.
func (h *LatencyHistogram) AverageNanos() float64 {
	if h.count == 0 {
		return 0
	}
	return float64(h.totalNanos) / float64(h.count)
}

// MinNanos returns the minimum recorded sample, or 0 if empty.
func (h *LatencyHistogram) MinNanos() int64 { return h.minNanos }

// MaxNanos returns the maximum recorded sample, or 0 if empty.
func (h *LatencyHistogram) MaxNanos() int64 { return h.maxNanos }

// Percentile returns the sample at the given percentile (0-100),
// or 0 if no samples have been recorded.
func (h *LatencyHistogram) Percentile(p float64) int64 {
	if h.count == 0 {
		return 0
	}
	sorted := make([]int64, h.count)
	copy(sorted, h.samples[:h.count])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(p/100.0*float64(h.count)+0.9999999) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > h.count-1 {
		idx = h.count - 1
	}
	return sorted[idx]
}

// P50 returns the median latency.
func (h *LatencyHistogram) P50() int64 { return h.Percentile(50) }

// P95 returns the 95th percentile latency.
func (h *LatencyHistogram) P95() int64 { return h.Percentile(95) }

// P99 returns the 99th percentile latency.
func (h *LatencyHistogram) P99() int64 { return h.Percentile(99) }

// Reset clears all recorded samples.
func (h *LatencyHistogram) Reset() {
	h.writeIndex = 0
	h.count = 0
	h.totalNanos = 0
	h.minNanos = 0
	h.maxNanos = 0
	for i := range h.samples {
		h.samples[i] = 0
	}
}
