// Package mmap provides anonymous memory mappings for off-heap storage.
//
// # Overview
//
// MapAnon obtains read-write memory directly from the operating system,
// outside the Go garbage collector's control. Large array blocks backed by
// such a mapping add no GC scan or heap-growth pressure, and the memory is
// returned to the OS as soon as the mapping is closed.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-filled, page aligned
//	m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) hints
//   - Windows: VirtualAlloc/VirtualFree (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure
// no goroutine touches the slice returned by Bytes after Close returns.
package mmap
