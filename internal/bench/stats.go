package bench

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

var durationUnits = map[byte]int{
	's': 1,
	'm': 60,
	'h': 3600,
	'd': 86400,
}

// ParseDuration converts strings like "90", "5m" or "1h" into seconds. A
// purely numeric string is taken as seconds; unknown unit suffixes count as
// seconds too.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	last := s[len(s)-1]
	if unicode.IsDigit(rune(last)) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return v, nil
	}

	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	unit, ok := durationUnits[byte(unicode.ToLower(rune(last)))]
	if !ok {
		unit = 1
	}
	return value * unit, nil
}

// Summary holds the latency percentiles of one query/backend batch, in
// milliseconds.
type Summary struct {
	P50 float64
	P95 float64
}

// Summarize computes the median and the nearest-rank 95th percentile of the
// recorded latencies. The p95 index is floor(0.95 * (n-1)) into the
// ascending-sorted sequence.
func Summarize(latencies []float64) Summary {
	if len(latencies) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	n := len(sorted)
	var p50 float64
	if n%2 == 1 {
		p50 = sorted[n/2]
	} else {
		p50 = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	idx95 := int(0.95 * float64(n-1))
	return Summary{P50: p50, P95: sorted[idx95]}
}
