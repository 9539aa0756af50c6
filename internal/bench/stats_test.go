package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5m", 300},
		{"1h", 3600},
		{"90", 90},
		{"30s", 30},
		{"2d", 172800},
		{"1H", 3600},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		require.NoError(t, err, "ParseDuration(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseDuration(%q)", tt.in)
	}
}

func TestParseDurationRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "m", "abc", "-"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, "ParseDuration(%q)", in)
	}
}

func TestSummarizeNearestRank(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40, 50})

	assert.Equal(t, 30.0, s.P50)
	// floor(0.95 * 4) = 3 into the sorted sequence.
	assert.Equal(t, 40.0, s.P95)
}

func TestSummarizeUnsortedInput(t *testing.T) {
	s := Summarize([]float64{50, 10, 40, 20, 30})

	assert.Equal(t, 30.0, s.P50)
	assert.Equal(t, 40.0, s.P95)
}

func TestSummarizeEvenCountMedian(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40})

	assert.Equal(t, 25.0, s.P50)
	assert.Equal(t, 30.0, s.P95)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.P50)
	assert.Zero(t, s.P95)
}
