// Package snapshot persists built indexes as self-describing blobs.
//
// A snapshot is a small fixed header (magic, format version, compression)
// followed by a gob-encoded payload, optionally compressed with LZ4 or Zstd.
// Load detects the compression from the header, so readers need no out-of-band
// configuration.
package snapshot

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/knngo/blobstore"
)

// Compression selects the codec applied to the encoded payload.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 favors speed.
	CompressionLZ4 Compression = 1
	// CompressionZstd favors ratio.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "Zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

var (
	// ErrInvalidHeader is returned when the data does not start with a
	// snapshot header.
	ErrInvalidHeader = errors.New("invalid snapshot header")

	// ErrUnsupportedVersion is returned for snapshots written by a newer
	// format revision.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

var magic = [4]byte{'k', 'n', 'g', 's'}

const (
	version    = 1
	headerSize = 6 // magic + version + compression
)

// Options hold the snapshot encoding parameters.
type Options struct {
	Compression Compression
}

// DefaultOptions are the default snapshot encoding parameters.
var DefaultOptions = Options{
	Compression: CompressionZstd,
}

// Save writes v as a snapshot to w.
func Save(w io.Writer, v any, optFns ...func(o *Options)) error {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	header := [headerSize]byte{magic[0], magic[1], magic[2], magic[3], version, byte(opts.Compression)}
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	switch opts.Compression {
	case CompressionNone:
		return gob.NewEncoder(w).Encode(v)

	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if err := gob.NewEncoder(zw).Encode(v); err != nil {
			return err
		}
		return zw.Close()

	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := gob.NewEncoder(zw).Encode(v); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()

	default:
		return fmt.Errorf("unsupported compression: %v", opts.Compression)
	}
}

// Load reads a snapshot from r into v.
func Load(r io.Reader, v any) error {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return ErrInvalidHeader
	}
	if header[4] != version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, header[4])
	}

	switch Compression(header[5]) {
	case CompressionNone:
		return gob.NewDecoder(r).Decode(v)

	case CompressionLZ4:
		return gob.NewDecoder(lz4.NewReader(r)).Decode(v)

	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return err
		}
		defer zr.Close()
		return gob.NewDecoder(zr).Decode(v)

	default:
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidHeader, header[5])
	}
}

// SaveToStore writes v as a snapshot blob. The snapshot is buffered and
// written with Put so a failed encode never publishes a partial blob.
func SaveToStore(ctx context.Context, store blobstore.Store, name string, v any, optFns ...func(o *Options)) error {
	var buf bytes.Buffer
	if err := Save(&buf, v, optFns...); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}

// LoadFromStore reads the named snapshot blob into v.
func LoadFromStore(ctx context.Context, store blobstore.Store, name string, v any) error {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return err
	}
	return Load(bytes.NewReader(data), v)
}
