package blobstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts Open calls on the way to the inner store.
type countingStore struct {
	Store
	opens atomic.Int64
}

func (c *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	c.opens.Add(1)
	return c.Store.Open(ctx, name)
}

func TestCachingStoreServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	s := NewCachingStore(inner)

	require.NoError(t, s.Put(ctx, "a", []byte("payload")))

	for i := 0; i < 5; i++ {
		data, err := ReadAll(ctx, s, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	}

	assert.Equal(t, int64(1), inner.opens.Load())
}

func TestCachingStoreInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	s := NewCachingStore(inner)

	require.NoError(t, s.Put(ctx, "a", []byte("v1")))

	data, err := ReadAll(ctx, s, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)

	require.NoError(t, s.Put(ctx, "a", []byte("v2")))

	data, err = ReadAll(ctx, s, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
	assert.Equal(t, int64(2), inner.opens.Load())
}

func TestCachingStoreDeduplicatesConcurrentFetches(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a", []byte("shared")))

	s := NewCachingStore(inner)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			data, err := ReadAll(ctx, s, "a")
			assert.NoError(t, err)
			assert.Equal(t, []byte("shared"), data)
		}()
	}
	close(start)
	wg.Wait()

	// singleflight collapses the concurrent misses; a few distinct flights
	// may still happen when goroutines race past the cache check
	assert.LessOrEqual(t, inner.opens.Load(), int64(16))
	assert.GreaterOrEqual(t, inner.opens.Load(), int64(1))
}

func TestCachingStoreBypassesLargeBlobs(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	s := NewCachingStore(inner, func(o *CachingOptions) {
		o.MaxBlobBytes = 4
	})

	require.NoError(t, s.Put(ctx, "big", []byte("way too large")))

	for i := 0; i < 3; i++ {
		data, err := ReadAll(ctx, s, "big")
		require.NoError(t, err)
		assert.Equal(t, []byte("way too large"), data)
	}

	// the first read checks the size and reopens; later reads go straight through
	assert.Equal(t, int64(4), inner.opens.Load())
}

// stallingStore blocks Open until the test releases it, forcing concurrent
// callers into one singleflight flight.
type stallingStore struct {
	Store
	proceed chan struct{}
}

func (s *stallingStore) Open(ctx context.Context, name string) (Blob, error) {
	<-s.proceed
	return s.Store.Open(ctx, name)
}

func TestCachingStoreLargeBlobHandlesAreIndependent(t *testing.T) {
	ctx := context.Background()
	inner := &stallingStore{Store: NewMemoryStore(), proceed: make(chan struct{})}
	require.NoError(t, inner.Store.Put(ctx, "big", []byte("0123456789")))

	s := NewCachingStore(inner, func(o *CachingOptions) {
		o.MaxBlobBytes = 4
	})

	var (
		wg    sync.WaitGroup
		blobs [2]Blob
	)
	for i := range blobs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := s.Open(ctx, "big")
			assert.NoError(t, err)
			blobs[i] = b
		}()
	}

	// let both callers reach the flight before the inner store answers
	time.Sleep(50 * time.Millisecond)
	close(inner.proceed)
	wg.Wait()

	require.NotNil(t, blobs[0])
	require.NotNil(t, blobs[1])
	assert.NotSame(t, blobs[0], blobs[1])

	// closing one caller's handle must not invalidate the other's
	require.NoError(t, blobs[0].Close())

	buf := make([]byte, 10)
	n, err := blobs[1].ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), buf[:n])
	require.NoError(t, blobs[1].Close())
}
