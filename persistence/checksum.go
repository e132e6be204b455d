package persistence

import (
	"fmt"
	"hash/crc32"
)

// CalculateChecksum calculates CRC32 checksum of data.
//
// CRC32 detects accidental corruption only; it is not tamper proof.
func CalculateChecksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %08x, got %08x", e.Expected, e.Actual)
}
