package payload

import (
	"context"
	"fmt"

	"github.com/hupe1980/brickstream"
	"github.com/hupe1980/brickstream/blobstore"
	"github.com/hupe1980/brickstream/brick"
	"github.com/hupe1980/brickstream/internal/hash"
	"github.com/hupe1980/brickstream/internal/resource"
)

// Reader decodes brick payloads stored in a BlobStore.
// It is safe for concurrent use.
type Reader struct {
	store blobstore.BlobStore
	rc    *resource.Controller
}

var _ brickstream.Source = (*Reader)(nil)

// Option configures a Reader.
type Option func(*Reader)

// WithResourceController charges every read against the IO limit of rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(r *Reader) {
		r.rc = rc
	}
}

// NewReader creates a Reader over store.
func NewReader(store blobstore.BlobStore, optFns ...Option) *Reader {
	r := &Reader{store: store}
	for _, fn := range optFns {
		fn(r)
	}
	return r
}

// ReadBrick implements brickstream.Source.
func (r *Reader) ReadBrick(ctx context.Context, fi brick.FileInfo) ([]byte, error) {
	switch fi.Format {
	case brick.FormatRaw, brick.FormatZstd, brick.FormatLZ4:
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, fi.Format, fi.Name)
	}

	data, err := r.fetch(ctx, fi)
	if err != nil {
		return nil, err
	}

	if fi.Checksum != 0 {
		if sum := hash.CRC32C(data); sum != fi.Checksum {
			return nil, &ChecksumError{Name: fi.Name, Expected: fi.Checksum, Actual: sum}
		}
	}

	raw, err := Decode(fi.Format, data)
	if err != nil {
		return nil, fmt.Errorf("payload: %s: %w", fi.Name, err)
	}
	if fi.RawSize > 0 && int64(len(raw)) != fi.RawSize {
		return nil, &SizeMismatchError{Name: fi.Name, Expected: fi.RawSize, Actual: int64(len(raw))}
	}
	return raw, nil
}

// fetch reads the encoded payload bytes.
func (r *Reader) fetch(ctx context.Context, fi brick.FileInfo) ([]byte, error) {
	blob, err := r.store.Open(ctx, fi.Name)
	if err != nil {
		return nil, fmt.Errorf("payload: open %s: %w", fi.Name, err)
	}
	defer func() { _ = blob.Close() }()

	n := fi.Length
	if n == 0 {
		n = blob.Size() - fi.Offset
	}
	if n > 0 {
		if err := r.rc.AcquireIO(ctx, int(n)); err != nil {
			return nil, err
		}
	}

	data, err := blobstore.ReadRange(ctx, blob, fi.Offset, n)
	if err != nil {
		return nil, fmt.Errorf("payload: read %s: %w", fi, err)
	}
	return data, nil
}
