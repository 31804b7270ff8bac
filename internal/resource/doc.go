// Package resource implements a process-wide Controller for the
// resources shared by brick readers and block caches.
//
//	┌──────────────────────────────────────────────────────┐
//	│                      Controller                      │
//	├─────────────────┬─────────────────┬──────────────────┤
//	│  Memory         │  Fetch slots    │  IO rate limit   │
//	│  (semaphore)    │  (semaphore)    │  (token bucket)  │
//	├─────────────────┼─────────────────┼──────────────────┤
//	│  TryAcquire...  │  AcquireFetch   │  AcquireIO       │
//	│  ReleaseMemory  │  ReleaseFetch   │  IOBytes         │
//	└─────────────────┴─────────────────┴──────────────────┘
//
// The brick cache's own CPU budget is NOT kept here: the Loader owns
// it exclusively. The controller caps the auxiliary memory of block
// caches, bounds concurrent backend fetches and throttles payload reads
// so that streaming does not starve other IO:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec:   256 << 20,
//	    MaxConcurrentFetches: 8,
//	})
//
// # Nil Safety
//
// All methods accept a nil *Controller and become no-ops, so limits are
// optional everywhere.
package resource
