package generator

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesSpaceEnumeratesFullCrossProduct(t *testing.T) {
	space := SeriesSpace{
		NumInstances: 10,
		StatusCodes:  []string{"200", "500", "404"},
		Methods:      []string{"GET", "POST"},
	}

	seen := make(map[LabelSet]struct{})
	for ls := range space.All() {
		_, dup := seen[ls]
		require.False(t, dup, "duplicate label set %+v", ls)
		seen[ls] = struct{}{}

		assert.Equal(t, "demo", ls.Job)
	}

	assert.Equal(t, 10*3*2, len(seen))
	assert.Equal(t, space.Size(), len(seen))
}

func TestSeriesSpaceIsRestartable(t *testing.T) {
	space := SeriesSpace{
		NumInstances: 3,
		StatusCodes:  []string{"200"},
		Methods:      []string{"GET"},
	}

	var first, second []LabelSet
	for ls := range space.All() {
		first = append(first, ls)
	}
	for ls := range space.All() {
		second = append(second, ls)
	}

	assert.Equal(t, first, second, "membership must be identical across sweeps")
}

func TestSeriesSpaceInstanceNaming(t *testing.T) {
	space := SeriesSpace{
		NumInstances: 2,
		StatusCodes:  []string{"200"},
		Methods:      []string{"GET"},
	}

	var instances []string
	for ls := range space.All() {
		instances = append(instances, ls.Instance)
	}

	assert.Equal(t, []string{"inst-00000", "inst-00001"}, instances)
}

func TestSeriesSpaceEnumerationStopsEarly(t *testing.T) {
	space := SeriesSpace{
		NumInstances: 1000,
		StatusCodes:  []string{"200", "500"},
		Methods:      []string{"GET", "POST"},
	}

	count := 0
	for range space.All() {
		count++
		if count == 7 {
			break
		}
	}
	assert.Equal(t, 7, count)
}

func TestValueBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	healthy := LabelSet{Job: "demo", Instance: "inst-00000", StatusCode: "200", Method: "GET"}
	for i := 0; i < 1000; i++ {
		v := Value(healthy, rng)
		assert.GreaterOrEqual(t, v, 90.0)
		assert.LessOrEqual(t, v, 110.0)
	}

	for _, code := range []string{"500", "400", "404", "502"} {
		errored := LabelSet{Job: "demo", Instance: "inst-00000", StatusCode: code, Method: "GET"}
		for i := 0; i < 1000; i++ {
			v := Value(errored, rng)
			assert.GreaterOrEqual(t, v, 0.0, "value must be floored at zero")
			assert.LessOrEqual(t, v, 15.0, fmt.Sprintf("status %s centers at 5.0", code))
		}
	}
}
