// Package testutil provides deterministic synthetic volume data for
// tests, benchmarks and examples.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	noise := rng.NoiseVolume(32)          // 32^3 incompressible voxels
//	smooth := rng.SmoothVolume(32, 0x40)  // 32^3 compressible voxels
package testutil
