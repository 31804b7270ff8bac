// Package brick defines the brick and dataset contracts used by the
// streaming cache, plus in-memory implementations of both.
//
// # Identity Types
//
//   - ID: stable handle of one brick (uint64)
//   - DatasetID: stable handle of one volume dataset (uint64)
//   - RenderMode: rendering pass a brick's drawn flag refers to
//
// # Storage Types
//
//   - FileInfo: location of a brick payload inside a blob store
//   - Format: payload encoding tag (raw, zstd, lz4, ...)
//
// # Implementations
//
// Tile and Volume are ready-made Brick and Dataset implementations for
// hosts that do not maintain their own scene model:
//
//	vol := brick.NewVolume(1, "stack-0")
//	t := brick.NewTile(brick.TileConfig{ID: 7, Dims: [3]int{64, 64, 64}, BytesPerVoxel: 1})
//	vol.Add(t)
package brick
