// Package metric provides the distance metrics used for neighbor search.
//
// Every metric here is separable: its distance decomposes into per-dimension
// contributions combined under a Minkowski exponent. That exponent, reported
// by Power, is what lets the bound package compute admissible node distances
// without evaluating the metric against every point.
package metric

import (
	"fmt"
	"math"
)

// Metric computes distances between two vectors of equal length.
// Callers are responsible for passing equal-length vectors.
//
// Power reports the Minkowski exponent the metric decomposes under:
// per-dimension contributions c_i combine as (sum c_i^p)^(1/p).
// math.Inf(1) means the maximum over dimensions (Chebyshev).
type Metric interface {
	Distance(a, b []float64) float64
	Power() float64
}

// Euclidean is the L2 metric.
type Euclidean struct{}

// Distance returns the Euclidean distance between a and b.
func (Euclidean) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Power returns 2.
func (Euclidean) Power() float64 { return 2 }

func (Euclidean) String() string { return "Euclidean" }

// Manhattan is the L1 metric.
type Manhattan struct{}

// Distance returns the Manhattan distance between a and b.
func (Manhattan) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Power returns 1.
func (Manhattan) Power() float64 { return 1 }

func (Manhattan) String() string { return "Manhattan" }

// Chebyshev is the L-infinity metric.
type Chebyshev struct{}

// Distance returns the Chebyshev distance between a and b.
func (Chebyshev) Distance(a, b []float64) float64 {
	var best float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > best {
			best = d
		}
	}
	return best
}

// Power returns +Inf.
func (Chebyshev) Power() float64 { return math.Inf(1) }

func (Chebyshev) String() string { return "Chebyshev" }

// Minkowski is the Lp metric for an arbitrary exponent P >= 1.
type Minkowski struct {
	P float64
}

// NewMinkowski creates a Minkowski metric with the given exponent.
// The exponent must be >= 1 for the triangle inequality to hold.
func NewMinkowski(p float64) (Minkowski, error) {
	if p < 1 {
		return Minkowski{}, fmt.Errorf("metric: minkowski exponent must be >= 1, got %v", p)
	}
	return Minkowski{P: p}, nil
}

// Distance returns the Lp distance between a and b.
func (m Minkowski) Distance(a, b []float64) float64 {
	if math.IsInf(m.P, 1) {
		return Chebyshev{}.Distance(a, b)
	}
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return math.Pow(sum, 1/m.P)
}

// Power returns the exponent P.
func (m Minkowski) Power() float64 { return m.P }

func (m Minkowski) String() string { return fmt.Sprintf("Minkowski(%g)", m.P) }

// Kind identifies a metric for configuration and persistence.
type Kind int

const (
	KindEuclidean Kind = iota
	KindManhattan
	KindChebyshev
	KindMinkowski
)

func (k Kind) String() string {
	switch k {
	case KindEuclidean:
		return "Euclidean"
	case KindManhattan:
		return "Manhattan"
	case KindChebyshev:
		return "Chebyshev"
	case KindMinkowski:
		return "Minkowski"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// KindOf reports the Kind of a Metric built by this package.
func KindOf(m Metric) Kind {
	switch m.(type) {
	case Euclidean:
		return KindEuclidean
	case Manhattan:
		return KindManhattan
	default:
		if math.IsInf(m.Power(), 1) {
			return KindChebyshev
		}
		return KindMinkowski
	}
}

// Provider returns the metric for the given kind.
// KindMinkowski requires an explicit exponent; construct it with NewMinkowski.
func Provider(k Kind) (Metric, error) {
	switch k {
	case KindEuclidean:
		return Euclidean{}, nil
	case KindManhattan:
		return Manhattan{}, nil
	case KindChebyshev:
		return Chebyshev{}, nil
	case KindMinkowski:
		return nil, fmt.Errorf("metric: %v needs an exponent, use NewMinkowski", k)
	default:
		return nil, fmt.Errorf("metric: unsupported kind: %v", k)
	}
}
