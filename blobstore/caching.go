package blobstore

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachingStore is a read-through cache around another Store. The first Open
// of a blob fetches it whole from the inner store; concurrent fetches of the
// same blob are deduplicated. Writes and deletes invalidate the cached copy.
//
// Snapshots are small relative to the datasets they index, so whole-blob
// caching keeps the bookkeeping trivial. Blobs larger than the configured
// limit bypass the cache entirely.
type CachingStore struct {
	inner    Store
	group    singleflight.Group
	mu       sync.RWMutex
	cached   map[string][]byte
	large    map[string]struct{}
	maxBytes int64
}

// CachingOptions hold the cache configuration.
type CachingOptions struct {
	// MaxBlobBytes is the largest blob the cache will hold. Larger blobs are
	// served directly from the inner store.
	MaxBlobBytes int64
}

// DefaultCachingOptions are the default cache parameters.
var DefaultCachingOptions = CachingOptions{
	MaxBlobBytes: 256 << 20,
}

// NewCachingStore wraps inner with a read-through blob cache.
func NewCachingStore(inner Store, optFns ...func(o *CachingOptions)) *CachingStore {
	opts := DefaultCachingOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CachingStore{
		inner:    inner,
		cached:   make(map[string][]byte),
		large:    make(map[string]struct{}),
		maxBytes: opts.MaxBlobBytes,
	}
}

// Open opens a blob, serving it from cache when possible. Blobs above the
// size limit are never shared between callers: the flight would hand every
// collapsed caller the same handle, and the first Close would tear it out
// from under the rest.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	s.mu.RLock()
	data, ok := s.cached[name]
	_, isLarge := s.large[name]
	s.mu.RUnlock()
	if ok {
		return &memoryBlob{data: data}, nil
	}
	if isLarge {
		return s.inner.Open(ctx, name)
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		b, err := s.inner.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer b.Close()

		if b.Size() > s.maxBytes {
			s.mu.Lock()
			s.large[name] = struct{}{}
			s.mu.Unlock()
			return nil, nil
		}

		data, err := readBlob(ctx, b)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cached[name] = data
		s.mu.Unlock()

		return &memoryBlob{data: data}, nil
	})
	if err != nil {
		return nil, err
	}
	if b, ok := v.(Blob); ok {
		return b, nil
	}
	// too large to cache; every caller reads through its own handle
	return s.inner.Open(ctx, name)
}

// Create passes through to the inner store and invalidates the cache entry.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.invalidate(name)
	return s.inner.Create(ctx, name)
}

// Put passes through to the inner store and invalidates the cache entry.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete passes through to the inner store and invalidates the cache entry.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	delete(s.cached, name)
	delete(s.large, name)
	s.mu.Unlock()
}

func readBlob(ctx context.Context, b Blob) ([]byte, error) {
	data := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, data, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return data[:n], nil
}
