// Package cache provides a byte-bounded LRU block cache.
//
// CachingStore places it in front of remote blob stores (S3, MinIO) so
// that a brick evicted from the CPU budget and requested again a few
// frames later is served from RAM instead of a second range GET. Block
// memory is optionally charged to a resource.Controller, which keeps
// the cache inside a process-wide limit.
package cache
