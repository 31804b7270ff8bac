package payload

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/hupe1980/brickstream/brick"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

const headerSize = 8

// storeRatio is the compressed/raw ratio above which data is stored
// uncompressed.
const storeRatio = 0.9

// Encode encodes raw voxel data in the given format.
func Encode(format brick.Format, raw []byte) ([]byte, error) {
	switch format {
	case brick.FormatRaw:
		return append([]byte(nil), raw...), nil
	case brick.FormatZstd, brick.FormatLZ4:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if len(raw) > math.MaxUint32 {
		return nil, fmt.Errorf("payload: %d bytes exceed the frame limit", len(raw))
	}

	var compressed []byte
	if len(raw) > 0 {
		var err error
		if format == brick.FormatLZ4 {
			compressed, err = compressLZ4(raw)
		} else {
			compressed = compressZstd(raw)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(raw))*storeRatio {
		return frame(raw, 0), nil
	}
	return frame(compressed, len(raw)), nil
}

func frame(data []byte, rawSize int) []byte {
	out := make([]byte, headerSize+len(data))
	if rawSize == 0 {
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:], 0) // 0 = stored
	} else {
		binary.LittleEndian.PutUint32(out[0:], uint32(rawSize))
		binary.LittleEndian.PutUint32(out[4:], uint32(len(data)))
	}
	copy(out[headerSize:], data)
	return out
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func compressZstd(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// Decode decodes a stored payload into a freshly allocated buffer.
func Decode(format brick.Format, data []byte) ([]byte, error) {
	switch format {
	case brick.FormatRaw:
		return data, nil
	case brick.FormatZstd, brick.FormatLZ4:
		return decodeFrame(format, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeFrame(format brick.Format, data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, &CorruptError{Format: format, Reason: "frame too small for header"}
	}

	rawSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	body := data[headerSize:]

	if compressedSize == 0 {
		if uint64(len(body)) < uint64(rawSize) {
			return nil, &CorruptError{Format: format, Reason: "stored frame truncated"}
		}
		return append([]byte(nil), body[:rawSize]...), nil
	}

	if uint64(len(body)) < uint64(compressedSize) {
		return nil, &CorruptError{Format: format, Reason: "compressed frame truncated"}
	}
	body = body[:compressedSize]
	out := make([]byte, rawSize)

	switch format {
	case brick.FormatLZ4:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, &CorruptError{Format: format, Reason: "lz4", cause: err}
		}
		if uint32(n) != rawSize {
			return nil, &CorruptError{Format: format, Reason: "decompressed size mismatch"}
		}
		return out, nil

	default:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(body, out[:0])
		if err != nil {
			return nil, &CorruptError{Format: format, Reason: "zstd", cause: err}
		}
		if uint32(len(decoded)) != rawSize {
			return nil, &CorruptError{Format: format, Reason: "decompressed size mismatch"}
		}
		return decoded, nil
	}
}
