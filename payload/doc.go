// Package payload reads and writes encoded brick payloads.
//
// A Reader resolves a brick.FileInfo against a blobstore.BlobStore and
// returns the decoded voxel buffer, making it a brickstream.Source.
//
// # Formats
//
//   - brick.FormatRaw: the stored bytes are the voxel data
//   - brick.FormatZstd, brick.FormatLZ4: one framed block
//   - brick.FormatJPEG, brick.FormatZlib: recognized but not decoded;
//     ReadBrick returns ErrUnsupportedFormat
//
// Framed payloads start with an 8-byte little-endian header
//
//	[raw size uint32][compressed size uint32][data...]
//
// where a compressed size of 0 marks data stored uncompressed because
// compression did not pay off.
package payload
