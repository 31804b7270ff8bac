// Package blobstore provides the storage abstraction brick payloads are
// read from.
//
// BlobStore is the interface for reading and writing immutable blobs
// (brick files or pack files holding many bricks). Implementations must
// be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap reads
//   - MemoryStore: in-memory, for tests and simulations
//   - CachingStore: block cache in front of any other store
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Reading a brick
//
// ReadRange returns a caller-owned buffer, which is what the streaming
// cache attaches to a brick:
//
//	blob, err := store.Open(ctx, fi.Name)
//	if err != nil { ... }
//	defer blob.Close()
//	buf, err := blobstore.ReadRange(ctx, blob, fi.Offset, fi.Length)
package blobstore
