package hash

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the checksum stored in brick.FileInfo.Checksum for a
// stored (possibly compressed) brick payload.
func CRC32C(payload []byte) uint32 {
	return crc32.Checksum(payload, castagnoli)
}
