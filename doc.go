// Package brickstream streams the bricks of large volumetric datasets
// into a bounded CPU memory budget.
//
// A renderer queues LoadRequests in depth order, calls Run once per
// frame and then polls each brick's loaded flag. Run reads every brick
// that is not resident through a Source and, when the budget is full,
// evicts resident bricks tier by tier:
//
//  1. bricks of hidden datasets
//  2. hidden bricks of displayed datasets
//  3. bricks already drawn in their render mode
//  4. bricks consumed by this Run whose every request has been drawn
//
// # Quick Start
//
//	store := blobstore.NewLocalStore("./pyramid")
//	loader, _ := brickstream.New(payload.NewReader(store),
//	    brickstream.WithMemoryLimit(2<<30),
//	)
//
//	reqs := buildRequests(visibleBricks)
//	brickstream.SortNearFirst(reqs)
//	loader.SetQueue(reqs)
//	if err := loader.Run(ctx); errors.Is(err, brickstream.ErrBudgetExceeded) {
//	    // the frame needs more memory than the budget allows
//	}
//
// # Accounting
//
// Used always equals the sum of the sizes of the resident entries. A
// freshly read brick is accounted with the length of its buffer; a
// brick re-queued while resident is re-accounted with its canonical
// size nx*ny*nz*BytesPerVoxel(ComponentData).
//
// # Concurrency
//
// A Loader is driven from one goroutine: it has no
// internal locking and reads bricks synchronously inside Run. Blob
// stores and caches in the sibling packages are safe for concurrent use.
package brickstream
