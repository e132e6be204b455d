package mdarena

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/hupe1980/mdarena/internal/mem"
	"github.com/hupe1980/mdarena/internal/mmap"
)

// Allocator supplies the memory behind blocks.
//
// Allocate must return a slice of exactly size bytes whose first byte is a
// multiple of align. Free receives a slice previously returned by Allocate
// and is called exactly once per successful Allocate.
//
// Implementations must be safe for concurrent use if blocks are allocated
// from several goroutines.
type Allocator interface {
	Allocate(size, align int) ([]byte, error)
	Free(b []byte) error
}

// HeapAllocator allocates from the Go heap. Free is a no-op: the memory is
// reclaimed by the garbage collector once the block drops its reference.
type HeapAllocator struct{}

// Allocate implements Allocator.
func (HeapAllocator) Allocate(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 {
		return nil, fmt.Errorf("%w: size %d, align %d", ErrInvalidArgument, size, align)
	}
	return mem.AllocAligned(size, align), nil
}

// Free implements Allocator.
func (HeapAllocator) Free([]byte) error { return nil }

// MmapAllocator backs every allocation with its own anonymous mapping,
// keeping block memory outside the Go heap. Free unmaps it immediately.
//
// Mappings are page aligned; alignments that do not divide the page size
// are satisfied by over-mapping and shifting.
type MmapAllocator struct {
	mu     sync.Mutex
	live   map[uintptr]*mmap.Mapping
	advice mmap.AccessPattern
}

// MmapOption configures an MmapAllocator.
type MmapOption func(*MmapAllocator)

// WithRandomAccess advises the kernel that blocks are read in random order.
func WithRandomAccess() MmapOption {
	return func(a *MmapAllocator) {
		a.advice = mmap.AccessRandom
	}
}

// WithSequentialAccess advises the kernel that blocks are scanned in order.
func WithSequentialAccess() MmapOption {
	return func(a *MmapAllocator) {
		a.advice = mmap.AccessSequential
	}
}

// NewMmapAllocator creates an allocator backed by anonymous mappings.
func NewMmapAllocator(opts ...MmapOption) *MmapAllocator {
	a := &MmapAllocator{
		live: make(map[uintptr]*mmap.Mapping),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate implements Allocator.
func (a *MmapAllocator) Allocate(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 {
		return nil, fmt.Errorf("%w: size %d, align %d", ErrInvalidArgument, size, align)
	}

	n := size
	if os.Getpagesize()%align != 0 {
		n += align - 1
	}

	m, err := mmap.MapAnon(n)
	if err != nil {
		return nil, err
	}
	if a.advice != mmap.AccessDefault {
		_ = m.Advise(a.advice) // advisory only
	}

	data := m.Bytes()
	addr := uintptr(unsafe.Pointer(&data[0])) //nolint:gosec // unsafe is required for alignment
	al := uintptr(align)
	off := int((al - addr%al) % al)
	b := data[off : off+size : off+size]

	a.mu.Lock()
	a.live[bufferKey(b)] = m
	a.mu.Unlock()

	return b, nil
}

// Free implements Allocator.
func (a *MmapAllocator) Free(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty buffer", ErrUnknownBuffer)
	}

	key := bufferKey(b)
	a.mu.Lock()
	m, ok := a.live[key]
	delete(a.live, key)
	a.mu.Unlock()

	if !ok {
		return ErrUnknownBuffer
	}
	return m.Close()
}

// Live returns the number of mappings not yet freed.
func (a *MmapAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

func bufferKey(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0])) //nolint:gosec // address used as map key only
}
