// Package knngo provides exact k-nearest and k-furthest neighbor search for Go.
//
// knngo builds a KD-tree over a fixed point set and answers neighbor queries
// with a branch-and-bound descent, for any separable metric (Euclidean,
// Manhattan, Chebyshev, arbitrary Minkowski). Results are exact: the tree
// only skips work it can prove irrelevant.
//
// # Quick Start
//
//	ctx := context.Background()
//	kg, _ := knngo.New(points)                   // Euclidean by default
//	res, _ := kg.KNN(ctx, query, 10)             // 10 nearest neighbors
//	res, _ = kg.KFN(ctx, query, 10)              // 10 furthest neighbors
//	for i, idx := range res.Indices {
//	    fmt.Println(idx, res.Distances[i])
//	}
//
// # Batch and All-Neighbors Queries
//
// Many queries run concurrently against the shared read-only tree:
//
//	results, _ := kg.BatchKNN(ctx, queries, 10)
//
// AllKNN answers "k nearest neighbors of every indexed point" with a single
// dual-tree traversal, excluding each point from its own neighborhood:
//
//	results, _ := kg.AllKNN(ctx, 10)
//
// # Persistence
//
// A built index can be saved as a compressed snapshot and reloaded without
// rebuilding, locally or through a blob store (local FS, in-memory, S3,
// MinIO):
//
//	_ = kg.SaveToFile("index.snap")
//	kg, _ = knngo.LoadFromFile("index.snap")
//
//	store, _ := s3.New(ctx, "my-bucket")
//	_ = kg.SaveToStore(ctx, store, "index.snap")
//	kg, _ = knngo.LoadFromStore(ctx, store, "index.snap")
//
// # Key Features
//
//   - Exact kNN and kFN under one policy-driven traversal
//   - Single-tree and dual-tree branch-and-bound search
//   - Roaring-bitmap result filters
//   - Bounded-parallelism batch queries
//   - Snapshot persistence with LZ4/Zstd compression
//   - Structured logging and pluggable operational metrics
package knngo
