package persistence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm used for the payload.
type CompressionType uint8

const (
	// CompressionNone stores the block as is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD compression (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// lz4MaxRatio bounds how far an LZ4 block can expand: each extra
// match-length byte adds at most 255 output bytes.
const lz4MaxRatio = 255

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

// compress returns the payload to store and the compression actually
// applied. If compression doesn't help (ratio > 0.9), data is stored raw.
func compress(data []byte, c CompressionType) ([]byte, CompressionType, error) {
	var (
		out []byte
		err error
	)

	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		out, err = compressLZ4(data)
	case CompressionZSTD:
		out = compressZSTD(data)
	default:
		return nil, 0, ErrInvalidCompression
	}
	if err != nil {
		return nil, 0, err
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return data, CompressionNone, nil
	}
	return out, c, nil
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

func compressZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// decompress expands stored into a buffer of exactly rawLen bytes. The
// output buffer never exceeds what the payload can actually produce.
func decompress(stored []byte, c CompressionType, rawLen int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(stored) != rawLen {
			return nil, errors.New("stored size mismatch")
		}
		return stored, nil

	case CompressionLZ4:
		if rawLen/lz4MaxRatio > len(stored) {
			return nil, fmt.Errorf("%d lz4 bytes cannot expand to %d", len(stored), rawLen)
		}
		result := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(stored, result)
		if err != nil {
			return nil, err
		}
		if n != rawLen {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		if err := dec.Reset(bytes.NewReader(stored)); err != nil {
			return nil, err
		}

		var out bytes.Buffer
		if _, err := io.CopyN(&out, dec, int64(rawLen)); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("decompressed size mismatch")
			}
			return nil, err
		}
		if n, _ := io.CopyN(io.Discard, dec, 1); n != 0 {
			return nil, errors.New("decompressed size mismatch")
		}
		return out.Bytes(), nil

	default:
		return nil, ErrInvalidCompression
	}
}
