package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction over immutable brick payload blobs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes at off. It follows the io.ReaderAt
	// contract: n < len(p) comes with a non-nil error.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs backed by memory.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// ErrShortRead is returned by ReadRange when the blob ends before the
// requested range.
var ErrShortRead = errors.New("blobstore: short read")

// ReadRange reads exactly n bytes at off into a freshly allocated
// buffer owned by the caller. n < 0 reads to the end of the blob.
func ReadRange(ctx context.Context, b Blob, off, n int64) ([]byte, error) {
	size := b.Size()
	if off < 0 || off > size {
		return nil, fmt.Errorf("blobstore: offset %d outside blob of %d bytes", off, size)
	}
	if n < 0 {
		n = size - off
	}
	if off+n > size {
		return nil, fmt.Errorf("%w: want %d bytes at %d, blob has %d", ErrShortRead, n, off, size)
	}

	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err == nil && int64(len(data)) >= off+n {
			copy(buf, data[off:off+n])
			return buf, nil
		}
	}

	read, err := b.ReadAt(ctx, buf, off)
	if int64(read) == n {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = ErrShortRead
	}
	return nil, fmt.Errorf("blobstore: read %d of %d bytes: %w", read, n, err)
}
