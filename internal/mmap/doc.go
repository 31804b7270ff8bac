// Package mmap provides read-only memory-mapped file access.
//
// LocalStore maps brick pack files so that a brick payload read is a
// single copy out of the page cache:
//
//	m, err := mmap.Open("level0.pack")
//	if err != nil { ... }
//	defer m.Close()
//
//	payload, _ := m.Slice(off, n) // zero-copy view
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent; slices
// returned by Slice must not be used after Close.
package mmap
