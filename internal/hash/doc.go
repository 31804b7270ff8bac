// Package hash provides the checksum used to verify brick payloads.
//
// Payload checksums use CRC32-Castagnoli, which Go computes with
// hardware instructions on x86 (SSE4.2) and ARM (CRC extension). The
// checksum covers the bytes as stored, before decompression:
//
//	fi.Checksum = hash.CRC32C(encoded)
//
// A zero checksum means "not recorded" and is not verified.
package hash
