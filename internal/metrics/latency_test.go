package metrics

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLatencyHistogramBasics(t *testing.T) {
	h := NewLatencyHistogram(4)
	assert.Equal(t, 0, h.Count())
	assert.Equal(t, 0.0, h.AverageNanos())

	h.Record(10)
	h.Record(20)
	h.Record(30)

	assert.Equal(t, 3, h.Count())
	assert.Equal(t, 20.0, h.AverageNanos())
	assert.Equal(t, int64(10), h.MinNanos())
	assert.Equal(t, int64(30), h.MaxNanos())
}

func TestLatencyHistogramEvictsOldest(t *testing.T) {
	h := NewLatencyHistogram(2)
	h.Record(1)
	h.Record(2)
	h.Record(3) // evicts the 1

	assert.Equal(t, 2, h.Count())
	assert.Equal(t, int64(2), h.MinNanos())
	assert.Equal(t, int64(3), h.MaxNanos())
}

func TestLatencyHistogramIgnoresNegative(t *testing.T) {
	h := NewLatencyHistogram(4)
	h.Record(-1)
	assert.Equal(t, 0, h.Count())
}

func TestLatencyHistogramPercentiles(t *testing.T) {
	h := NewLatencyHistogram(100)
	for i := int64(1); i <= 100; i++ {
		h.Record(i)
	}
	assert.Equal(t, int64(50), h.P50())
	assert.Equal(t, int64(95), h.P95())
	assert.Equal(t, int64(99), h.P99())
}

func TestLatencyHistogramReset(t *testing.T) {
	h := NewLatencyHistogram(4)
	h.Record(5)
	h.Reset()
	assert.Equal(t, 0, h.Count())
	assert.Equal(t, int64(0), h.P50())
}
