package snapshot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knngo/blobstore"
	"github.com/hupe1980/knngo/testutil"
	"github.com/hupe1980/knngo/tree"
)

func buildTree(t *testing.T) *tree.KDTree {
	t.Helper()

	rng := testutil.NewRNG(99)
	tr, err := tree.New(rng.UniformVectors(300, 4), func(o *tree.Options) {
		o.LeafSize = 10
	})
	require.NoError(t, err)
	return tr
}

func TestRoundTrip(t *testing.T) {
	original := buildTree(t)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Save(&buf, original, func(o *Options) {
				o.Compression = c
			}))

			var restored tree.KDTree
			require.NoError(t, Load(bytes.NewReader(buf.Bytes()), &restored))

			assert.Equal(t, original.Stats(), restored.Stats())
			for i := 0; i < original.NumPoints(); i++ {
				assert.Equal(t, original.Point(i), restored.Point(i))
			}
		})
	}
}

func TestCompressionActuallyShrinks(t *testing.T) {
	original := buildTree(t)

	var plain, compressed bytes.Buffer
	require.NoError(t, Save(&plain, original, func(o *Options) {
		o.Compression = CompressionNone
	}))
	require.NoError(t, Save(&compressed, original, func(o *Options) {
		o.Compression = CompressionZstd
	}))

	assert.Less(t, compressed.Len(), plain.Len())
}

func TestLoadRejectsGarbage(t *testing.T) {
	var v tree.KDTree

	t.Run("short input", func(t *testing.T) {
		err := Load(bytes.NewReader([]byte{1, 2}), &v)
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("wrong magic", func(t *testing.T) {
		err := Load(bytes.NewReader([]byte("nonsense payload")), &v)
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("future version", func(t *testing.T) {
		err := Load(bytes.NewReader([]byte{'k', 'n', 'g', 's', 99, 0}), &v)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("unknown compression", func(t *testing.T) {
		err := Load(bytes.NewReader([]byte{'k', 'n', 'g', 's', 1, 7}), &v)
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	original := buildTree(t)

	require.NoError(t, SaveToStore(ctx, store, "index.snap", original))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.snap"}, names)

	var restored tree.KDTree
	require.NoError(t, LoadFromStore(ctx, store, "index.snap", &restored))
	assert.Equal(t, original.Stats(), restored.Stats())
}

func TestLoadFromStoreMissing(t *testing.T) {
	var v tree.KDTree
	err := LoadFromStore(context.Background(), blobstore.NewMemoryStore(), "nope", &v)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
