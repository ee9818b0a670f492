package tree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/knngo/bound"
)

var (
	// ErrEmptyDataset is returned when a tree is built over no points.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrInvalidLeafSize is returned when the configured leaf size is not positive.
	ErrInvalidLeafSize = errors.New("leaf size must be positive")
)

// ErrDimensionMismatch indicates a point whose dimensionality does not match
// the rest of the dataset.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Node is one node of a built tree, as consumed by the traversal.
// Internal nodes have exactly two children; PointIndices covers the node's
// full subtree, so leaves own exactly the points stored at them.
type Node interface {
	// Bound is the axis-aligned region containing every point of the subtree.
	Bound() *bound.Rect

	// IsLeaf reports whether the node has no children.
	IsLeaf() bool

	// Children returns the two children, or (nil, nil) for a leaf.
	Children() (left, right Node)

	// PointIndices returns the original dataset indices of every point in
	// the subtree. The returned slice is a view and must not be modified.
	PointIndices() []int
}

// Options holds the tree construction parameters.
type Options struct {
	// LeafSize is the maximum number of points stored in a leaf.
	LeafSize int
}

// DefaultOptions are the default tree construction parameters.
var DefaultOptions = Options{
	LeafSize: 20,
}

// KDTree is a static KD-tree over a point set: median splits on the dimension
// of maximum spread, axis-aligned bounds per node, points stored row-major
// with a permutation mapping tree order back to original indices.
//
// The tree is read-only after construction and safe for concurrent readers.
type KDTree struct {
	data     []float64 // row-major, numPoints*dims, original order
	idx      []int     // tree-order permutation of original indices
	dims     int
	leafSize int
	root     *node
}

type node struct {
	tree  *KDTree
	bnd   *bound.Rect
	left  *node
	right *node
	start int // range into tree.idx
	end   int
}

// New builds a KD-tree over the given points. Points are copied; the caller
// may reuse the input. All points must share one non-zero dimensionality.
func New(points [][]float64, optFns ...func(o *Options)) (*KDTree, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.LeafSize <= 0 {
		return nil, ErrInvalidLeafSize
	}
	if len(points) == 0 {
		return nil, ErrEmptyDataset
	}

	dims := len(points[0])
	if dims == 0 {
		return nil, &ErrDimensionMismatch{Expected: 1, Actual: 0}
	}

	data := make([]float64, 0, len(points)*dims)
	for _, p := range points {
		if len(p) != dims {
			return nil, &ErrDimensionMismatch{Expected: dims, Actual: len(p)}
		}
		data = append(data, p...)
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}

	t := &KDTree{
		data:     data,
		idx:      idx,
		dims:     dims,
		leafSize: opts.LeafSize,
	}
	t.root = t.build(0, len(points))

	return t, nil
}

// build recursively partitions idx[start:end). The median split keeps both
// halves non-empty whenever the range exceeds the leaf size, so recursion
// always terminates, identical points included.
func (t *KDTree) build(start, end int) *node {
	n := &node{tree: t, start: start, end: end}

	n.bnd = bound.NewRect(t.dims)
	for _, i := range t.idx[start:end] {
		n.bnd.GrowPoint(t.Point(i))
	}

	if end-start <= t.leafSize {
		return n
	}

	d := widestDim(n.bnd)
	sub := t.idx[start:end]
	sort.Slice(sub, func(i, j int) bool {
		return t.coord(sub[i], d) < t.coord(sub[j], d)
	})

	mid := (start + end) / 2
	n.left = t.build(start, mid)
	n.right = t.build(mid, end)

	return n
}

func widestDim(r *bound.Rect) int {
	best := 0
	bestSpread := r.Hi[0] - r.Lo[0]
	for d := 1; d < len(r.Lo); d++ {
		if spread := r.Hi[d] - r.Lo[d]; spread > bestSpread {
			best = d
			bestSpread = spread
		}
	}
	return best
}

func (t *KDTree) coord(point, dim int) float64 {
	return t.data[point*t.dims+dim]
}

// Root returns the root node.
func (t *KDTree) Root() Node { return t.root }

// NumPoints returns the number of points in the tree.
func (t *KDTree) NumPoints() int { return len(t.idx) }

// Dims returns the dimensionality of the point set.
func (t *KDTree) Dims() int { return t.dims }

// LeafSize returns the leaf size the tree was built with.
func (t *KDTree) LeafSize() int { return t.leafSize }

// Point returns the point with the given original index. The returned slice
// is a view into the tree's storage and must not be modified.
func (t *KDTree) Point(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

// Stats describes the shape of a built tree.
type Stats struct {
	NumPoints int
	Dims      int
	LeafSize  int
	NumNodes  int
	NumLeaves int
	MaxDepth  int
}

// Stats walks the tree and reports its shape.
func (t *KDTree) Stats() Stats {
	s := Stats{
		NumPoints: t.NumPoints(),
		Dims:      t.dims,
		LeafSize:  t.leafSize,
	}
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		s.NumNodes++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if n.left == nil {
			s.NumLeaves++
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(t.root, 0)
	return s
}

func (n *node) Bound() *bound.Rect { return n.bnd }

func (n *node) IsLeaf() bool { return n.left == nil }

func (n *node) Children() (Node, Node) {
	if n.left == nil {
		return nil, nil
	}
	return n.left, n.right
}

func (n *node) PointIndices() []int {
	return n.tree.idx[n.start:n.end]
}
