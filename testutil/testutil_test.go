package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/knngo/metric"
	"github.com/hupe1980/knngo/policy"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], 1.0)
	assert.GreaterOrEqual(t, v[1][0], 0.0)
}

func TestUniformRangeVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformRangeVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], 1.0)
	assert.GreaterOrEqual(t, v[1][0], -1.0)
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ClusteredVectors(100, 32, 5, 0.1)

	assert.Equal(t, 100, len(v))
	assert.Equal(t, 32, len(v[0]))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)

	rng.Reset()
	v2 := rng.UniformVectors(1, 10)

	assert.Equal(t, v1, v2)
}

func TestBruteForceNeighbors(t *testing.T) {
	points := [][]float64{
		{0, 0},
		{1, 0},
		{0, 2},
		{3, 3},
	}
	query := []float64{0, 0}

	t.Run("nearest ordering", func(t *testing.T) {
		idx, dist := BruteForceNeighbors(points, query, 3, metric.Euclidean{}, policy.Nearest{}, nil)

		assert.Equal(t, []int{0, 1, 2}, idx)
		assert.Equal(t, []float64{0, 1, 2}, dist)
	})

	t.Run("furthest ordering", func(t *testing.T) {
		idx, _ := BruteForceNeighbors(points, query, 2, metric.Euclidean{}, policy.Furthest{}, nil)

		assert.Equal(t, []int{3, 2}, idx)
	})

	t.Run("filter excludes points", func(t *testing.T) {
		idx, _ := BruteForceNeighbors(points, query, 2, metric.Euclidean{}, policy.Nearest{},
			func(i int) bool { return i != 0 })

		assert.Equal(t, []int{1, 2}, idx)
	})

	t.Run("pads underfull results", func(t *testing.T) {
		idx, dist := BruteForceNeighbors(points, query, 6, metric.Euclidean{}, policy.Nearest{}, nil)

		assert.Equal(t, []int{0, 1, 2, 3, -1, -1}, idx)
		assert.True(t, math.IsInf(dist[4], 1))
		assert.True(t, math.IsInf(dist[5], 1))
	})
}
