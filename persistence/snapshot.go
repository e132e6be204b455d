package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/mdarena"
	"github.com/hupe1980/mdarena/internal/conv"
	"github.com/hupe1980/mdarena/internal/layout"
)

// SaveOption configures Save.
type SaveOption func(*saveOptions)

type saveOptions struct {
	compression CompressionType
}

// WithCompression selects the payload compression. Payloads that do not
// shrink by at least 10% are stored uncompressed.
func WithCompression(c CompressionType) SaveOption {
	return func(o *saveOptions) {
		o.compression = c
	}
}

// Save writes a snapshot of b to w.
func Save(w io.Writer, b *mdarena.Block, optFns ...SaveOption) error {
	o := saveOptions{compression: CompressionNone}
	for _, fn := range optFns {
		fn(&o)
	}

	raw := b.Bytes()
	if raw == nil {
		return mdarena.ErrFreed
	}

	rank, err := conv.IntToUint32(b.Rank())
	if err != nil {
		return err
	}

	stored, c, err := compress(raw, o.compression)
	if err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}

	hdr := Header{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: c,
		Rank:        rank,
		ElemSize:    uint64(b.ElemSize()),
		ElemAlign:   uint64(b.ElemAlign()),
	}

	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	dims := b.Dims()
	words := make([]uint64, 0, len(dims)+2)
	for _, d := range dims {
		words = append(words, uint64(d))
	}
	words = append(words, uint64(len(raw)), uint64(len(stored)))
	if err := binary.Write(bw, binary.LittleEndian, words); err != nil {
		return fmt.Errorf("write dims: %w", err)
	}

	if _, err := bw.Write(stored); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, CalculateChecksum(raw)); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}

	return bw.Flush()
}

// Load reads a snapshot from r and restores it into a new block allocated
// with the given options.
//
// Memory for the payload grows only as bytes arrive from r or come out of
// the decompressor, so a header claiming a huge block fails on the short
// stream instead of reserving what it claims. The block itself is then
// allocated through the options, where a Budget can still reject it.
func Load(r io.Reader, optFns ...mdarena.Option) (*mdarena.Block, error) {
	var hdr Header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", unexpectedEOF(err))
	}

	if hdr.Magic != MagicNumber {
		return nil, ErrInvalidMagic
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, hdr.Version)
	}
	if hdr.Compression > CompressionZSTD {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, hdr.Compression)
	}
	if hdr.Rank == 0 || hdr.Rank > MaxRank {
		return nil, fmt.Errorf("%w: rank %d", ErrInvalidHeader, hdr.Rank)
	}

	elemSize, err := conv.Uint64ToInt(hdr.ElemSize)
	if err != nil {
		return nil, fmt.Errorf("%w: element size: %w", ErrInvalidHeader, err)
	}
	elemAlign, err := conv.Uint64ToInt(hdr.ElemAlign)
	if err != nil {
		return nil, fmt.Errorf("%w: element alignment: %w", ErrInvalidHeader, err)
	}

	words := make([]uint64, hdr.Rank+2)
	if err := binary.Read(r, binary.LittleEndian, words); err != nil {
		return nil, fmt.Errorf("read dims: %w", unexpectedEOF(err))
	}

	dims := make([]int, hdr.Rank)
	for i := range dims {
		if dims[i], err = conv.Uint64ToInt(words[i]); err != nil {
			return nil, fmt.Errorf("%w: dimension %d: %w", ErrInvalidHeader, i, err)
		}
	}

	counts := make([]uint64, layout.ScratchCells(len(dims)))
	l, err := layout.Plan(dims, elemSize, elemAlign, counts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	rawLen, storedLen := words[hdr.Rank], words[hdr.Rank+1]
	if rawLen != uint64(l.TotalBytes) {
		return nil, fmt.Errorf("%w: block is %d bytes, layout needs %d", ErrInvalidHeader, rawLen, l.TotalBytes)
	}
	if storedLen > rawLen || (hdr.Compression == CompressionNone && storedLen != rawLen) {
		return nil, fmt.Errorf("%w: stored length %d", ErrInvalidHeader, storedLen)
	}
	if hdr.Compression == CompressionLZ4 && rawLen/lz4MaxRatio > storedLen {
		return nil, fmt.Errorf("%w: %d lz4 bytes cannot expand to %d", ErrInvalidHeader, storedLen, rawLen)
	}

	var payload bytes.Buffer
	if _, err := io.CopyN(&payload, r, int64(storedLen)); err != nil {
		return nil, fmt.Errorf("read payload: %w", unexpectedEOF(err))
	}
	stored := payload.Bytes()

	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return nil, fmt.Errorf("read checksum: %w", unexpectedEOF(err))
	}

	raw, err := decompress(stored, hdr.Compression, l.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	if actual := CalculateChecksum(raw); actual != sum {
		return nil, &ChecksumMismatchError{Expected: sum, Actual: actual}
	}

	return mdarena.Restore(dims, elemSize, elemAlign, raw, optFns...)
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
