package neighbor

import (
	"github.com/hupe1980/knngo/policy"
)

// NoIndex marks an unfilled result slot, present when the dataset holds fewer
// eligible points than requested.
const NoIndex = -1

// CandidateList keeps the k best candidates seen so far, sorted best to worst
// under its policy. Unfilled slots hold the policy's worst-distance sentinel
// and NoIndex. The list is created per query and never shared.
type CandidateList struct {
	pol       policy.Policy
	distances []float64
	indices   []int
}

// NewCandidateList creates a list with capacity k. k must be positive.
func NewCandidateList(pol policy.Policy, k int) *CandidateList {
	distances := make([]float64, k)
	indices := make([]int, k)
	for i := range distances {
		distances[i] = pol.WorstDistance()
		indices[i] = NoIndex
	}
	return &CandidateList{pol: pol, distances: distances, indices: indices}
}

// Insert offers a candidate to the list. When the candidate beats at least
// one kept entry it is placed at its sorted position, entries behind it shift
// toward the tail, and the previous worst falls off. Returns the insertion
// position, or policy.NotInserted when the candidate was discarded.
func (c *CandidateList) Insert(distance float64, index int) int {
	pos := c.pol.SortDistance(c.distances, distance)
	if pos == policy.NotInserted {
		return policy.NotInserted
	}

	copy(c.distances[pos+1:], c.distances[pos:len(c.distances)-1])
	copy(c.indices[pos+1:], c.indices[pos:len(c.indices)-1])
	c.distances[pos] = distance
	c.indices[pos] = index

	return pos
}

// WorstDistance returns the distance of the last slot. It is the pruning
// threshold: a subtree whose optimistic bound cannot beat it holds nothing
// the list would accept.
func (c *CandidateList) WorstDistance() float64 {
	return c.distances[len(c.distances)-1]
}

// Len returns the capacity k of the list.
func (c *CandidateList) Len() int { return len(c.distances) }

// Result returns the list's content as an owned Result.
func (c *CandidateList) Result() Result {
	distances := make([]float64, len(c.distances))
	indices := make([]int, len(c.indices))
	copy(distances, c.distances)
	copy(indices, c.indices)
	return Result{Indices: indices, Distances: distances}
}

// Result holds the outcome of one query: indices and distances aligned by
// rank, best first. Slots the search could not fill hold NoIndex and the
// policy's worst-distance sentinel.
type Result struct {
	Indices   []int
	Distances []float64
}
