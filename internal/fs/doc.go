// Package fs abstracts the file system operations of the local blob
// store so tests can inject I/O failures.
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: wrapper that fails writes, syncs, closes or renames
//
// Tests inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".put-", fs.Fault{FailAfterBytes: 1024})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Reads are served by memory mappings and do not go through this package.
package fs
