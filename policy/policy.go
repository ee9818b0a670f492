// Package policy defines the ranking direction of a neighbor search.
//
// A Policy decides what "better" means for a candidate distance and supplies
// the matching optimistic and pessimistic bounds for tree nodes. Nearest ranks
// smaller distances better, Furthest larger ones; everything else in the
// search is written against the Policy interface and never branches on the
// direction itself.
package policy

import (
	"math"

	"github.com/hupe1980/knngo/bound"
	"github.com/hupe1980/knngo/metric"
)

// NotInserted is returned by SortDistance when the candidate beats no entry
// of the list and should be discarded.
const NotInserted = -1

// Policy ranks candidate distances and bounds tree nodes for one search
// direction. Implementations are stateless and safe for concurrent use.
type Policy interface {
	// BestDistance is the unbeatable sentinel: no real distance is better.
	BestDistance() float64

	// WorstDistance is the always-beaten sentinel used to fill empty
	// candidate slots.
	WorstDistance() float64

	// IsBetter reports whether value ranks strictly better than ref.
	// Equal distances are never better; among equals the incumbent wins.
	IsBetter(value, ref float64) bool

	// SortDistance returns the position at which dist belongs in a
	// best-to-worst sorted list, or NotInserted when it beats no entry.
	SortDistance(sorted []float64, dist float64) int

	// BestPointToNodeDistance is the optimistic bound: no point inside the
	// node can rank better than this against p.
	BestPointToNodeDistance(m metric.Metric, p []float64, r *bound.Rect) float64

	// WorstPointToNodeDistance is the pessimistic bound: every point inside
	// the node ranks at least this well against p.
	WorstPointToNodeDistance(m metric.Metric, p []float64, r *bound.Rect) float64

	// BestNodeToNodeDistance is the optimistic bound between two nodes.
	BestNodeToNodeDistance(m metric.Metric, a, b *bound.Rect) float64

	// WorstNodeToNodeDistance is the pessimistic bound between two nodes.
	WorstNodeToNodeDistance(m metric.Metric, a, b *bound.Rect) float64
}

// Nearest ranks smaller distances better.
type Nearest struct{}

// BestDistance returns 0.
func (Nearest) BestDistance() float64 { return 0 }

// WorstDistance returns +Inf.
func (Nearest) WorstDistance() float64 { return math.Inf(1) }

// IsBetter reports whether value < ref.
func (Nearest) IsBetter(value, ref float64) bool { return value < ref }

// SortDistance returns the insertion position of dist, or NotInserted.
func (p Nearest) SortDistance(sorted []float64, dist float64) int {
	return sortDistance(p, sorted, dist)
}

// BestPointToNodeDistance returns the minimum distance from p to the node.
func (Nearest) BestPointToNodeDistance(m metric.Metric, p []float64, r *bound.Rect) float64 {
	return r.MinDistancePoint(p, m.Power())
}

// WorstPointToNodeDistance returns the maximum distance from p to the node.
func (Nearest) WorstPointToNodeDistance(m metric.Metric, p []float64, r *bound.Rect) float64 {
	return r.MaxDistancePoint(p, m.Power())
}

// BestNodeToNodeDistance returns the minimum distance between the nodes.
func (Nearest) BestNodeToNodeDistance(m metric.Metric, a, b *bound.Rect) float64 {
	return a.MinDistance(b, m.Power())
}

// WorstNodeToNodeDistance returns the maximum distance between the nodes.
func (Nearest) WorstNodeToNodeDistance(m metric.Metric, a, b *bound.Rect) float64 {
	return a.MaxDistance(b, m.Power())
}

func (Nearest) String() string { return "Nearest" }

// Furthest ranks larger distances better.
type Furthest struct{}

// BestDistance returns +Inf.
func (Furthest) BestDistance() float64 { return math.Inf(1) }

// WorstDistance returns 0.
func (Furthest) WorstDistance() float64 { return 0 }

// IsBetter reports whether value > ref.
func (Furthest) IsBetter(value, ref float64) bool { return value > ref }

// SortDistance returns the insertion position of dist, or NotInserted.
func (p Furthest) SortDistance(sorted []float64, dist float64) int {
	return sortDistance(p, sorted, dist)
}

// BestPointToNodeDistance returns the maximum distance from p to the node.
func (Furthest) BestPointToNodeDistance(m metric.Metric, p []float64, r *bound.Rect) float64 {
	return r.MaxDistancePoint(p, m.Power())
}

// WorstPointToNodeDistance returns the minimum distance from p to the node.
func (Furthest) WorstPointToNodeDistance(m metric.Metric, p []float64, r *bound.Rect) float64 {
	return r.MinDistancePoint(p, m.Power())
}

// BestNodeToNodeDistance returns the maximum distance between the nodes.
func (Furthest) BestNodeToNodeDistance(m metric.Metric, a, b *bound.Rect) float64 {
	return a.MaxDistance(b, m.Power())
}

// WorstNodeToNodeDistance returns the minimum distance between the nodes.
func (Furthest) WorstNodeToNodeDistance(m metric.Metric, a, b *bound.Rect) float64 {
	return a.MinDistance(b, m.Power())
}

func (Furthest) String() string { return "Furthest" }

// sortDistance scans the best-to-worst sorted list for the first entry dist
// ranks strictly better than. A linear scan beats binary search at the small
// k values neighbor lists use.
func sortDistance(p Policy, sorted []float64, dist float64) int {
	for i, v := range sorted {
		if p.IsBetter(dist, v) {
			return i
		}
	}
	return NotInserted
}
