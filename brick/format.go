package brick

import "fmt"

// Format tags the encoding of a brick payload in its backing store.
type Format uint8

const (
	// FormatNone marks a brick with no backing payload.
	FormatNone Format = iota
	// FormatRaw is uncompressed voxel data whose buffer can be handed
	// to the brick as is.
	FormatRaw
	// FormatJPEG is a lossy JPEG-compressed slice stack.
	FormatJPEG
	// FormatZlib is a zlib-compressed payload.
	FormatZlib
	// FormatZstd is a framed zstd payload.
	FormatZstd
	// FormatLZ4 is a framed LZ4 block payload.
	FormatLZ4
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatRaw:
		return "raw"
	case FormatJPEG:
		return "jpeg"
	case FormatZlib:
		return "zlib"
	case FormatZstd:
		return "zstd"
	case FormatLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat returns the Format with the given name.
func ParseFormat(name string) (Format, error) {
	for f := FormatNone; f <= FormatLZ4; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("brick: unknown format %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// FileInfo locates a brick payload inside a blob store.
type FileInfo struct {
	// Name is the blob name.
	Name string `json:"name"`
	// Offset is the byte offset of the payload within the blob.
	Offset int64 `json:"offset,omitempty"`
	// Length is the encoded payload length. Zero means "to end of blob".
	Length int64 `json:"length,omitempty"`
	// Format is the payload encoding.
	Format Format `json:"format"`
	// RawSize is the expected decoded size; zero skips the check.
	RawSize int64 `json:"raw_size,omitempty"`
	// Checksum is the CRC32C of the encoded payload; zero skips the check.
	Checksum uint32 `json:"checksum,omitempty"`
}

func (fi FileInfo) String() string {
	return fmt.Sprintf("%s@%d+%d(%s)", fi.Name, fi.Offset, fi.Length, fi.Format)
}
