package neighbor

import (
	"context"
	"errors"

	"github.com/hupe1980/knngo/metric"
	"github.com/hupe1980/knngo/policy"
	"github.com/hupe1980/knngo/tree"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNilTree is returned when a Search is created without a tree.
	ErrNilTree = errors.New("tree must not be nil")

	// ErrNilMetric is returned when a Search is created without a metric.
	ErrNilMetric = errors.New("metric must not be nil")

	// ErrNilPolicy is returned when a Search is created without a policy.
	ErrNilPolicy = errors.New("policy must not be nil")
)

// QueryOptions hold the per-query knobs.
type QueryOptions struct {
	// Filter withholds matching points from the results. Nil admits all.
	Filter Filter

	// ExcludeSelf skips reference points whose index equals the query's own
	// index. Only meaningful for QueryTree when the query tree is built over
	// the same dataset as the reference tree.
	ExcludeSelf bool
}

// Search runs bounded neighbor queries against a reference tree. The ranking
// direction comes from the policy, the geometry from the metric; Search never
// branches on the direction itself.
//
// A Search is immutable and safe for concurrent queries.
type Search struct {
	tree *tree.KDTree
	m    metric.Metric
	pol  policy.Policy
}

// New creates a Search over the given reference tree.
func New(t *tree.KDTree, m metric.Metric, pol policy.Policy) (*Search, error) {
	switch {
	case t == nil:
		return nil, ErrNilTree
	case m == nil:
		return nil, ErrNilMetric
	case pol == nil:
		return nil, ErrNilPolicy
	}
	return &Search{tree: t, m: m, pol: pol}, nil
}

// Tree returns the reference tree the search runs against.
func (s *Search) Tree() *tree.KDTree { return s.tree }

// Policy returns the ranking policy.
func (s *Search) Policy() policy.Policy { return s.pol }

// Metric returns the distance metric.
func (s *Search) Metric() metric.Metric { return s.m }

// Query finds the k best neighbors of a single query point. When fewer than
// k eligible points exist the remaining slots hold NoIndex and the policy's
// worst-distance sentinel. Cancellation is honored at entry only; a running
// descent always completes.
func (s *Search) Query(ctx context.Context, query []float64, k int, optFns ...func(o *QueryOptions)) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var opts QueryOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := s.validate(query, k); err != nil {
		return Result{}, err
	}

	list := NewCandidateList(s.pol, k)
	s.descend(query, s.tree.Root(), list, opts.Filter)

	return list.Result(), nil
}

// QueryTree finds the k best neighbors for every point of the query tree in
// one dual-tree descent. Results are indexed by the query tree's original
// point indices. Both trees must share one dimensionality.
func (s *Search) QueryTree(ctx context.Context, queryTree *tree.KDTree, k int, optFns ...func(o *QueryOptions)) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts QueryOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if queryTree == nil {
		return nil, ErrNilTree
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if queryTree.Dims() != s.tree.Dims() {
		return nil, &tree.ErrDimensionMismatch{Expected: s.tree.Dims(), Actual: queryTree.Dims()}
	}

	lists := make([]*CandidateList, queryTree.NumPoints())
	for i := range lists {
		lists[i] = NewCandidateList(s.pol, k)
	}

	s.descendDual(queryTree, queryTree.Root(), s.tree.Root(), lists, opts)

	results := make([]Result, len(lists))
	for i, list := range lists {
		results[i] = list.Result()
	}
	return results, nil
}

// Brute finds the k best neighbors by scanning every point. It exists as the
// reference answer for the tree descent and for tiny datasets where a tree
// buys nothing.
func (s *Search) Brute(ctx context.Context, query []float64, k int, optFns ...func(o *QueryOptions)) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var opts QueryOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := s.validate(query, k); err != nil {
		return Result{}, err
	}

	list := NewCandidateList(s.pol, k)
	for i := 0; i < s.tree.NumPoints(); i++ {
		if opts.Filter != nil && !opts.Filter(i) {
			continue
		}
		list.Insert(s.m.Distance(query, s.tree.Point(i)), i)
	}

	return list.Result(), nil
}

func (s *Search) validate(query []float64, k int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	if len(query) != s.tree.Dims() {
		return &tree.ErrDimensionMismatch{Expected: s.tree.Dims(), Actual: len(query)}
	}
	return nil
}

// descend is the single-tree traversal. A subtree is skipped when the worst
// kept candidate already beats the node's optimistic bound; ties descend, so
// pruning never depends on the strictness of the bound.
func (s *Search) descend(query []float64, n tree.Node, list *CandidateList, f Filter) {
	if n.IsLeaf() {
		for _, i := range n.PointIndices() {
			if f != nil && !f(i) {
				continue
			}
			list.Insert(s.m.Distance(query, s.tree.Point(i)), i)
		}
		return
	}

	left, right := n.Children()
	first, second := left, right
	firstBound := s.pol.BestPointToNodeDistance(s.m, query, left.Bound())
	secondBound := s.pol.BestPointToNodeDistance(s.m, query, right.Bound())
	if s.pol.IsBetter(secondBound, firstBound) {
		first, second = second, first
		firstBound, secondBound = secondBound, firstBound
	}

	if !s.pol.IsBetter(list.WorstDistance(), firstBound) {
		s.descend(query, first, list, f)
	}
	// the first descent may have tightened the list
	if !s.pol.IsBetter(list.WorstDistance(), secondBound) {
		s.descend(query, second, list, f)
	}
}

// descendDual is the dual-tree traversal. The pruning threshold for a query
// node is the most lenient worst distance among its queries: only when even
// that one beats the node-to-node bound can the reference subtree hold
// nothing for any query below.
func (s *Search) descendDual(qt *tree.KDTree, qn, rn tree.Node, lists []*CandidateList, opts QueryOptions) {
	nodeBound := s.pol.BestNodeToNodeDistance(s.m, qn.Bound(), rn.Bound())
	if s.pol.IsBetter(s.threshold(qn, lists), nodeBound) {
		return
	}

	switch {
	case qn.IsLeaf() && rn.IsLeaf():
		for _, qi := range qn.PointIndices() {
			query := qt.Point(qi)
			list := lists[qi]
			for _, ri := range rn.PointIndices() {
				if opts.ExcludeSelf && ri == qi {
					continue
				}
				if opts.Filter != nil && !opts.Filter(ri) {
					continue
				}
				list.Insert(s.m.Distance(query, s.tree.Point(ri)), ri)
			}
		}

	case qn.IsLeaf():
		rl, rr := rn.Children()
		first, second := rl, rr
		firstBound := s.pol.BestNodeToNodeDistance(s.m, qn.Bound(), rl.Bound())
		secondBound := s.pol.BestNodeToNodeDistance(s.m, qn.Bound(), rr.Bound())
		if s.pol.IsBetter(secondBound, firstBound) {
			first, second = second, first
		}
		s.descendDual(qt, qn, first, lists, opts)
		s.descendDual(qt, qn, second, lists, opts)

	default:
		// split the query side first; reference ordering is handled once
		// the query node is a leaf
		ql, qr := qn.Children()
		s.descendDual(qt, ql, rn, lists, opts)
		s.descendDual(qt, qr, rn, lists, opts)
	}
}

// threshold returns the policy-worst of the worst kept distances across the
// query node's points. While any of them still holds an unfilled sentinel the
// threshold stays at the sentinel and nothing below the node is pruned.
func (s *Search) threshold(qn tree.Node, lists []*CandidateList) float64 {
	worst := s.pol.BestDistance()
	for _, qi := range qn.PointIndices() {
		if w := lists[qi].WorstDistance(); s.pol.IsBetter(worst, w) {
			worst = w
		}
	}
	return worst
}
