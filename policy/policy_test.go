package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/knngo/bound"
	"github.com/hupe1980/knngo/metric"
)

func rect1D(lo, hi float64) *bound.Rect {
	return &bound.Rect{Lo: []float64{lo}, Hi: []float64{hi}}
}

func TestNearestSentinels(t *testing.T) {
	p := Nearest{}

	assert.Equal(t, 0.0, p.BestDistance())
	assert.True(t, math.IsInf(p.WorstDistance(), 1))
}

func TestFurthestSentinels(t *testing.T) {
	p := Furthest{}

	assert.True(t, math.IsInf(p.BestDistance(), 1))
	assert.Equal(t, 0.0, p.WorstDistance())
}

func TestIsBetterIsStrict(t *testing.T) {
	assert.True(t, Nearest{}.IsBetter(5.0, 6.0))
	assert.False(t, Nearest{}.IsBetter(6.0, 5.0))
	assert.False(t, Nearest{}.IsBetter(5.0, 5.0))

	assert.True(t, Furthest{}.IsBetter(6.0, 5.0))
	assert.False(t, Furthest{}.IsBetter(5.0, 6.0))
	assert.False(t, Furthest{}.IsBetter(5.0, 5.0))
}

func TestNearestSortDistance(t *testing.T) {
	p := Nearest{}
	list := []float64{0.66, 0.89, 1.14}

	assert.Equal(t, 0, p.SortDistance(list, 0.61))
	assert.Equal(t, 1, p.SortDistance(list, 0.76))
	assert.Equal(t, 2, p.SortDistance(list, 0.99))
	assert.Equal(t, NotInserted, p.SortDistance(list, 1.22))
}

func TestFurthestSortDistance(t *testing.T) {
	p := Furthest{}
	list := []float64{1.14, 0.89, 0.66}

	assert.Equal(t, 0, p.SortDistance(list, 1.22))
	assert.Equal(t, 1, p.SortDistance(list, 0.93))
	assert.Equal(t, 2, p.SortDistance(list, 0.68))
	assert.Equal(t, NotInserted, p.SortDistance(list, 0.62))
}

func TestSortDistanceIntoSentinelList(t *testing.T) {
	near := make([]float64, 5)
	for i := range near {
		near[i] = Nearest{}.WorstDistance()
	}
	assert.Equal(t, 0, Nearest{}.SortDistance(near, 5.0))

	far := make([]float64, 5) // zero-filled, the Furthest worst sentinel
	assert.Equal(t, 0, Furthest{}.SortDistance(far, 5.0))
}

func TestNearestNodeBounds(t *testing.T) {
	p := Nearest{}
	m := metric.Euclidean{}
	unit := rect1D(0, 1)

	assert.InDelta(t, 4.0, p.BestNodeToNodeDistance(m, unit, rect1D(5, 6)), 1e-12)
	assert.InDelta(t, 6.0, p.WorstNodeToNodeDistance(m, unit, rect1D(5, 6)), 1e-12)

	assert.InDelta(t, 1.0, p.BestNodeToNodeDistance(m, unit, rect1D(-2, -1)), 1e-12)
	assert.InDelta(t, 3.0, p.WorstNodeToNodeDistance(m, unit, rect1D(-2, -1)), 1e-12)

	assert.InDelta(t, 0.0, p.BestNodeToNodeDistance(m, unit, rect1D(-0.5, 0.5)), 1e-12)
	assert.InDelta(t, 1.5, p.WorstNodeToNodeDistance(m, unit, rect1D(-0.5, 0.5)), 1e-12)
}

func TestFurthestNodeBounds(t *testing.T) {
	p := Furthest{}
	m := metric.Euclidean{}
	unit := rect1D(0, 1)

	assert.InDelta(t, 6.0, p.BestNodeToNodeDistance(m, unit, rect1D(5, 6)), 1e-12)
	assert.InDelta(t, 4.0, p.WorstNodeToNodeDistance(m, unit, rect1D(5, 6)), 1e-12)

	assert.InDelta(t, 3.0, p.BestNodeToNodeDistance(m, unit, rect1D(-2, -1)), 1e-12)
	assert.InDelta(t, 1.0, p.WorstNodeToNodeDistance(m, unit, rect1D(-2, -1)), 1e-12)
}

func TestPointToNodeBounds(t *testing.T) {
	m := metric.Euclidean{}
	unit := rect1D(0, 1)

	tests := []struct {
		point    float64
		min, max float64
	}{
		{-0.5, 0.5, 1.5},
		{1.5, 0.5, 1.5},
		{0.5, 0.0, 0.5},
	}

	for _, tt := range tests {
		p := []float64{tt.point}

		assert.InDelta(t, tt.min, Nearest{}.BestPointToNodeDistance(m, p, unit), 1e-12)
		assert.InDelta(t, tt.max, Nearest{}.WorstPointToNodeDistance(m, p, unit), 1e-12)

		assert.InDelta(t, tt.max, Furthest{}.BestPointToNodeDistance(m, p, unit), 1e-12)
		assert.InDelta(t, tt.min, Furthest{}.WorstPointToNodeDistance(m, p, unit), 1e-12)
	}
}
