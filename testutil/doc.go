// Package testutil provides testing utilities for knngo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random datasets and computing exact
// neighbor results by brute force.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformVectors(1000, 16)   // uniform [0, 1)
//	points = rng.GaussianVectors(1000, 16)   // standard normal
//
// # Exact Search (Ground Truth)
//
//	indices, distances := testutil.BruteForceNeighbors(points, query, k, metric.Euclidean{}, policy.Nearest{}, nil)
package testutil
