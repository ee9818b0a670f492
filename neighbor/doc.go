// Package neighbor implements exact k-nearest and k-furthest neighbor search
// over a KD-tree.
//
// The traversal is a recursive depth-first branch and bound: subtrees are
// skipped whenever the policy's optimistic bound for the node cannot beat the
// worst candidate currently kept. Both a single-tree form (one query point)
// and a dual-tree form (the query set organized in its own tree) are provided;
// they return identical results.
//
// All state lives in the per-query candidate lists, so a Search may be shared
// by any number of concurrent queries against its read-only tree.
package neighbor
