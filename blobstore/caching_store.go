package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/brickstream/internal/cache"
	"github.com/hupe1980/brickstream/internal/resource"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the CachingStore block size when none is given.
const DefaultBlockSize = 64 * 1024

// maxParallelFills bounds concurrent backend reads of one ReadAt call.
const maxParallelFills = 16

// CachingStore wraps a BlobStore and caches fixed-size blocks of the
// blobs read through it.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
	rc        *resource.Controller
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultBlockSize if <= 0. rc may be nil; when
// set, each backend fetch holds one of its fetch slots.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64, rc *resource.Controller) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
		rc:        rc,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
		rc:        s.rc,
	}, nil
}

// Put invalidates cached blocks of name and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates cached blocks of name and deletes through.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.BlockKey) bool {
		return key.Path == name
	})
}

// CachingBlob wraps a Blob and serves reads from the block cache.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
	rc        *resource.Controller
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) key(blk int64) cache.BlockKey {
	return cache.BlockKey{Path: b.name, Block: uint64(blk)}
}

// ReadAt implements Blob.
func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off >= b.Size() {
		return 0, io.EOF
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize
	if last := (b.Size() - 1) / b.blockSize; endBlock > last {
		endBlock = last
	}

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		// Intersection of [blkStart, blkStart+blockSize) and [off, off+len(p)).
		from := max(blkStart, off)
		to := min(blkStart+b.blockSize, off+int64(len(p)))
		if to <= from {
			continue
		}

		data, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return total, err
		}

		src := from - blkStart
		if src >= int64(len(data)) {
			break
		}
		total += copy(p[from-off:to-off], data[src:])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

type blockRun struct {
	start, count int64
}

// fillCache loads missing blocks of [startBlock, endBlock], fetching
// each contiguous run of misses with a single backend read.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	var runs []blockRun
	cur := blockRun{start: -1}

	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); !ok {
			if cur.start == -1 {
				cur = blockRun{start: blk, count: 1}
			} else {
				cur.count++
			}
			continue
		}
		if cur.start != -1 {
			runs = append(runs, cur)
			cur = blockRun{start: -1}
		}
	}
	if cur.start != -1 {
		runs = append(runs, cur)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFills)

	for _, run := range runs {
		g.Go(func() error {
			if err := b.rc.AcquireFetch(gctx); err != nil {
				return err
			}
			defer b.rc.ReleaseFetch()
			return b.fillRun(gctx, run)
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fillRun(ctx context.Context, run blockRun) error {
	byteStart := run.start * b.blockSize
	byteSize := run.count * b.blockSize
	if size := b.Size(); byteStart+byteSize > size {
		byteSize = size - byteStart
	}
	if byteSize <= 0 {
		return nil
	}

	buf := make([]byte, byteSize)
	n, err := b.inner.ReadAt(ctx, buf, byteStart)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	valid := buf[:n]

	for i := int64(0); i < run.count; i++ {
		lo := i * b.blockSize
		if lo >= int64(len(valid)) {
			break
		}
		hi := min(lo+b.blockSize, int64(len(valid)))

		// Copy so one cached block does not pin the whole run buffer.
		block := make([]byte, hi-lo)
		copy(block, valid[lo:hi])
		b.cache.Set(ctx, b.key(run.start+i), block)
	}
	return nil
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
		return data, nil
	}

	// Not admitted by the cache (too large or over the memory limit):
	// read straight from the backend.
	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}
