// Package blobstore provides the storage abstraction snapshots are placed in.
//
// Store is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with atomic writes via rename
//   - MemoryStore: In-memory store for tests
//   - CachingStore: Read-through cache around another store
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends. For cloud
// backends, Blob.ReadAt should translate to range requests so partial reads
// stay cheap.
package blobstore
