package tree

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPoints(t *testing.T, n, dims int) [][]float64 {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	points := make([][]float64, n)
	for i := range points {
		p := make([]float64, dims)
		for d := range p {
			p[d] = rng.Float64()*2 - 1
		}
		points[i] = p
	}
	return points
}

func TestNewValidation(t *testing.T) {
	t.Run("empty dataset", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("invalid leaf size", func(t *testing.T) {
		_, err := New([][]float64{{1, 2}}, func(o *Options) {
			o.LeafSize = 0
		})
		assert.ErrorIs(t, err, ErrInvalidLeafSize)
	})

	t.Run("zero dimension point", func(t *testing.T) {
		_, err := New([][]float64{{}})

		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
	})

	t.Run("ragged points", func(t *testing.T) {
		_, err := New([][]float64{{1, 2}, {1, 2, 3}})

		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
	})
}

func TestTreeStructure(t *testing.T) {
	points := randomPoints(t, 500, 3)
	tr, err := New(points, func(o *Options) {
		o.LeafSize = 8
	})
	require.NoError(t, err)

	assert.Equal(t, 500, tr.NumPoints())
	assert.Equal(t, 3, tr.Dims())
	assert.Equal(t, 8, tr.LeafSize())

	var seen []int
	var checkNode func(n Node)
	checkNode = func(n Node) {
		indices := n.PointIndices()
		assert.NotEmpty(t, indices)

		// every point of the subtree lies inside the node's bound
		for _, i := range indices {
			assert.True(t, n.Bound().Contains(tr.Point(i)), "point %d outside bound", i)
		}

		left, right := n.Children()
		if n.IsLeaf() {
			assert.Nil(t, left)
			assert.Nil(t, right)
			assert.LessOrEqual(t, len(indices), 8)
			seen = append(seen, indices...)
			return
		}

		require.NotNil(t, left)
		require.NotNil(t, right)
		assert.Equal(t, len(indices), len(left.PointIndices())+len(right.PointIndices()))

		checkNode(left)
		checkNode(right)
	}
	checkNode(tr.Root())

	// the leaves partition the dataset
	sort.Ints(seen)
	require.Len(t, seen, 500)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestPointReturnsOriginalOrder(t *testing.T) {
	points := [][]float64{{5, 5}, {1, 1}, {3, 3}, {2, 2}, {4, 4}}
	tr, err := New(points, func(o *Options) {
		o.LeafSize = 1
	})
	require.NoError(t, err)

	for i, p := range points {
		assert.Equal(t, p, tr.Point(i))
	}
}

func TestIdenticalPoints(t *testing.T) {
	points := make([][]float64, 50)
	for i := range points {
		points[i] = []float64{1, 2, 3}
	}

	tr, err := New(points, func(o *Options) {
		o.LeafSize = 4
	})
	require.NoError(t, err)

	stats := tr.Stats()
	assert.Equal(t, 50, stats.NumPoints)
	assert.Greater(t, stats.NumLeaves, 1)
}

func TestStats(t *testing.T) {
	tr, err := New(randomPoints(t, 100, 2), func(o *Options) {
		o.LeafSize = 5
	})
	require.NoError(t, err)

	stats := tr.Stats()
	assert.Equal(t, 100, stats.NumPoints)
	assert.Equal(t, 2, stats.Dims)
	assert.Equal(t, 5, stats.LeafSize)
	assert.Equal(t, stats.NumNodes, 2*stats.NumLeaves-1)
	assert.Greater(t, stats.MaxDepth, 0)
}

func TestGobRoundTrip(t *testing.T) {
	points := randomPoints(t, 200, 4)
	tr, err := New(points, func(o *Options) {
		o.LeafSize = 10
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(tr))

	var restored KDTree
	require.NoError(t, gob.NewDecoder(&buf).Decode(&restored))

	assert.Equal(t, tr.NumPoints(), restored.NumPoints())
	assert.Equal(t, tr.Dims(), restored.Dims())
	assert.Equal(t, tr.LeafSize(), restored.LeafSize())
	assert.Equal(t, tr.Stats(), restored.Stats())

	for i := 0; i < tr.NumPoints(); i++ {
		assert.Equal(t, tr.Point(i), restored.Point(i))
	}

	// identical shape and identical leaf contents
	var collect func(n Node, out *[][]int)
	collect = func(n Node, out *[][]int) {
		if n.IsLeaf() {
			*out = append(*out, n.PointIndices())
			return
		}
		l, r := n.Children()
		collect(l, out)
		collect(r, out)
	}

	var orig, rest [][]int
	collect(tr.Root(), &orig)
	collect(restored.Root(), &rest)
	assert.Equal(t, orig, rest)
}
