// Package bound implements axis-aligned bounding rectangles and the distance
// algebra branch-and-bound search relies on.
//
// Distances are parameterized by a Minkowski exponent (see metric.Metric.Power):
// per-dimension contributions combine as (sum c^p)^(1/p), with +Inf meaning the
// maximum over dimensions. Min distances are admissible lower bounds and max
// distances admissible upper bounds on the true point distances, which is the
// property pruning depends on.
package bound

import "math"

// Rect is an axis-aligned rectangle given by per-dimension [Lo, Hi] intervals.
//
// A freshly created Rect is empty (Lo = +Inf, Hi = -Inf per dimension) and must
// be grown over at least one point before distance queries; querying an empty
// Rect is a precondition violation and is not checked at runtime.
type Rect struct {
	Lo []float64
	Hi []float64
}

// NewRect creates an empty rectangle with the given dimensionality.
func NewRect(dims int) *Rect {
	lo := make([]float64, dims)
	hi := make([]float64, dims)
	for d := range lo {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	return &Rect{Lo: lo, Hi: hi}
}

// FromPoint creates a degenerate rectangle containing only p.
func FromPoint(p []float64) *Rect {
	r := NewRect(len(p))
	r.GrowPoint(p)
	return r
}

// Dims returns the dimensionality of the rectangle.
func (r *Rect) Dims() int { return len(r.Lo) }

// Clone returns a deep copy of the rectangle.
func (r *Rect) Clone() *Rect {
	lo := make([]float64, len(r.Lo))
	hi := make([]float64, len(r.Hi))
	copy(lo, r.Lo)
	copy(hi, r.Hi)
	return &Rect{Lo: lo, Hi: hi}
}

// GrowPoint expands the rectangle to contain p.
func (r *Rect) GrowPoint(p []float64) {
	for d, v := range p {
		if v < r.Lo[d] {
			r.Lo[d] = v
		}
		if v > r.Hi[d] {
			r.Hi[d] = v
		}
	}
}

// GrowRect expands the rectangle to contain o.
func (r *Rect) GrowRect(o *Rect) {
	for d := range r.Lo {
		if o.Lo[d] < r.Lo[d] {
			r.Lo[d] = o.Lo[d]
		}
		if o.Hi[d] > r.Hi[d] {
			r.Hi[d] = o.Hi[d]
		}
	}
}

// Contains reports whether p lies inside the rectangle (borders included).
func (r *Rect) Contains(p []float64) bool {
	for d, v := range p {
		if v < r.Lo[d] || v > r.Hi[d] {
			return false
		}
	}
	return true
}

// MinDistancePoint returns a lower bound on the distance from p to any point
// inside the rectangle, under the given Minkowski exponent. Zero when p is
// inside.
func (r *Rect) MinDistancePoint(p []float64, power float64) float64 {
	if math.IsInf(power, 1) {
		var best float64
		for d, v := range p {
			if c := minGap(v, v, r.Lo[d], r.Hi[d]); c > best {
				best = c
			}
		}
		return best
	}

	var sum float64
	for d, v := range p {
		if c := minGap(v, v, r.Lo[d], r.Hi[d]); c > 0 {
			sum += powContrib(c, power)
		}
	}
	return powRoot(sum, power)
}

// MaxDistancePoint returns an upper bound on the distance from p to any point
// inside the rectangle, under the given Minkowski exponent.
func (r *Rect) MaxDistancePoint(p []float64, power float64) float64 {
	if math.IsInf(power, 1) {
		var best float64
		for d, v := range p {
			if c := maxGap(v, v, r.Lo[d], r.Hi[d]); c > best {
				best = c
			}
		}
		return best
	}

	var sum float64
	for d, v := range p {
		sum += powContrib(maxGap(v, v, r.Lo[d], r.Hi[d]), power)
	}
	return powRoot(sum, power)
}

// MinDistance returns a lower bound on the distance between any point in r and
// any point in o, under the given Minkowski exponent. Zero when the rectangles
// overlap.
func (r *Rect) MinDistance(o *Rect, power float64) float64 {
	if math.IsInf(power, 1) {
		var best float64
		for d := range r.Lo {
			if c := minGap(o.Lo[d], o.Hi[d], r.Lo[d], r.Hi[d]); c > best {
				best = c
			}
		}
		return best
	}

	var sum float64
	for d := range r.Lo {
		if c := minGap(o.Lo[d], o.Hi[d], r.Lo[d], r.Hi[d]); c > 0 {
			sum += powContrib(c, power)
		}
	}
	return powRoot(sum, power)
}

// MaxDistance returns an upper bound on the distance between any point in r
// and any point in o, under the given Minkowski exponent.
func (r *Rect) MaxDistance(o *Rect, power float64) float64 {
	if math.IsInf(power, 1) {
		var best float64
		for d := range r.Lo {
			if c := maxGap(o.Lo[d], o.Hi[d], r.Lo[d], r.Hi[d]); c > best {
				best = c
			}
		}
		return best
	}

	var sum float64
	for d := range r.Lo {
		sum += powContrib(maxGap(o.Lo[d], o.Hi[d], r.Lo[d], r.Hi[d]), power)
	}
	return powRoot(sum, power)
}

// minGap is the smallest per-dimension separation between the intervals
// [aLo, aHi] and [bLo, bHi]; zero when they overlap. A point is passed as a
// degenerate interval.
func minGap(aLo, aHi, bLo, bHi float64) float64 {
	c := bLo - aHi
	if d := aLo - bHi; d > c {
		c = d
	}
	if c < 0 {
		return 0
	}
	return c
}

// maxGap is the largest per-dimension separation between the intervals
// [aLo, aHi] and [bLo, bHi].
func maxGap(aLo, aHi, bLo, bHi float64) float64 {
	c := bHi - aLo
	if d := aHi - bLo; d > c {
		c = d
	}
	return c
}

func powContrib(c, p float64) float64 {
	switch p {
	case 1:
		return c
	case 2:
		return c * c
	default:
		return math.Pow(c, p)
	}
}

func powRoot(sum, p float64) float64 {
	switch p {
	case 1:
		return sum
	case 2:
		return math.Sqrt(sum)
	default:
		return math.Pow(sum, 1/p)
	}
}
