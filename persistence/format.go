package persistence

import "errors"

const (
	// MagicNumber identifies mdarena snapshots (ASCII: "MDAR").
	MagicNumber = 0x5241444D
	// Version is the current snapshot format version.
	Version = 1

	// MaxRank bounds the rank accepted from a snapshot header.
	MaxRank = 64

	headerSize = 32
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrInvalidCompression = errors.New("unsupported compression")
	ErrInvalidHeader      = errors.New("invalid header")
)

// Header is the fixed 32-byte prefix of a snapshot.
type Header struct {
	Magic       uint32
	Version     uint16
	Compression CompressionType
	_           uint8
	Rank        uint32
	_           uint32
	ElemSize    uint64
	ElemAlign   uint64
}
