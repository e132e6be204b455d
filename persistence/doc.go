// Package persistence saves array blocks to a stream and restores them.
//
// Pointer cells inside a block are offsets from the block start, so the
// byte image is position independent and is written as is. Restoring
// allocates a fresh block through the usual mdarena options and verifies
// every pointer cell against the layout recomputed from the header.
//
// # Format
//
// All integers are little endian.
//
//	magic      u32  "MDAR"
//	version    u16
//	compression u8  0=none 1=lz4 2=zstd
//	reserved   u8
//	rank       u32
//	reserved   u32
//	elemSize   u64
//	elemAlign  u64
//	dims       rank × u64
//	rawLen     u64  block size in bytes
//	storedLen  u64  payload size in bytes (≤ rawLen)
//	payload    storedLen bytes
//	checksum   u32  CRC32 (IEEE) of the raw block
//
// # Usage
//
//	err := persistence.Save(w, b, persistence.WithCompression(persistence.CompressionZSTD))
//	...
//	b, err := persistence.Load(r, mdarena.WithAllocator(mdarena.NewMmapAllocator()))
package persistence
