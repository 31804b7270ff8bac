package payload

import (
	"errors"
	"fmt"

	"github.com/hupe1980/brickstream/brick"
)

// ErrUnsupportedFormat is returned for payload formats the reader
// recognizes but cannot decode.
var ErrUnsupportedFormat = errors.New("payload: unsupported format")

// CorruptError reports a payload that does not decode.
type CorruptError struct {
	Format brick.Format
	Reason string
	cause  error
}

func (e *CorruptError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("payload: corrupt %s payload: %s: %v", e.Format, e.Reason, e.cause)
	}
	return fmt.Sprintf("payload: corrupt %s payload: %s", e.Format, e.Reason)
}

func (e *CorruptError) Unwrap() error { return e.cause }

// SizeMismatchError reports a decoded payload whose length differs from
// the size recorded in its FileInfo.
type SizeMismatchError struct {
	Name     string
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("payload: %s decoded to %d bytes, want %d", e.Name, e.Actual, e.Expected)
}

// ChecksumError reports an encoded payload whose CRC32C differs from
// the checksum recorded in its FileInfo.
type ChecksumError struct {
	Name     string
	Expected uint32
	Actual   uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("payload: %s checksum mismatch: got %08x, want %08x", e.Name, e.Actual, e.Expected)
}
