package cache

import "context"

// BlockKey identifies one fixed-size block of a blob.
type BlockKey struct {
	// Path is the blob name.
	Path string
	// Block is the block index within the blob.
	Block uint64
}

// BlockCache is a byte-oriented cache for immutable blob blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key BlockKey) (b []byte, ok bool)
	// Set caches a block. The cache retains b; callers must not mutate it.
	Set(ctx context.Context, key BlockKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key BlockKey) bool)
	// Close releases any resources.
	Close() error
	// Stats returns hit and miss counters.
	Stats() (hits, misses int64)
}
