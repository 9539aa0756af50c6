package generator

import (
	"fmt"
	"iter"
	"math"
	"math/rand"
)

const (
	jobName = "demo"

	baseQPS     = 100.0
	errorFactor = 0.05
	noiseBound  = 10.0
)

// LabelSet is the fixed-dimension identity tuple of one synthetic series.
type LabelSet struct {
	Job        string
	Instance   string
	StatusCode string
	Method     string
}

// SeriesSpace describes the configured cardinality space: the cross-product
// of instances, status codes and methods.
type SeriesSpace struct {
	NumInstances int
	StatusCodes  []string
	Methods      []string
}

// Size returns the number of distinct label sets in the space.
func (s SeriesSpace) Size() int {
	return s.NumInstances * len(s.StatusCodes) * len(s.Methods)
}

// All enumerates every label set in the space. The sequence is lazy, finite
// and restartable; membership carries no randomness, so every tick sweeps an
// identical space.
func (s SeriesSpace) All() iter.Seq[LabelSet] {
	return func(yield func(LabelSet) bool) {
		for i := 0; i < s.NumInstances; i++ {
			instance := fmt.Sprintf("inst-%05d", i)
			for _, sc := range s.StatusCodes {
				for _, m := range s.Methods {
					ls := LabelSet{Job: jobName, Instance: instance, StatusCode: sc, Method: m}
					if !yield(ls) {
						return
					}
				}
			}
		}
	}
}

// Value synthesizes the QPS sample for one label set. Healthy 200s run near
// the full base rate, every other code near zero; both carry uniform noise
// in [-noiseBound, noiseBound] and are floored at zero.
func Value(ls LabelSet, rng *rand.Rand) float64 {
	factor := errorFactor
	if ls.StatusCode == "200" {
		factor = 1.0
	}
	noise := (rng.Float64()*2 - 1) * noiseBound
	return math.Max(0.0, baseQPS*factor+noise)
}
