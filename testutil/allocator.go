package testutil

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/hupe1980/mdarena/internal/mem"
)

var (
	// ErrInjected is returned by Allocate when a fault is triggered.
	ErrInjected = errors.New("injected allocation failure")
	// ErrDoubleFree is returned when a buffer is freed twice.
	ErrDoubleFree = errors.New("double free")
	// ErrForeignFree is returned when a buffer that was never allocated is freed.
	ErrForeignFree = errors.New("free of unknown buffer")
)

// Backend is the allocator an Allocator delegates to. It has the same
// method set as mdarena.Allocator.
type Backend interface {
	Allocate(size, align int) ([]byte, error)
	Free(b []byte) error
}

type heapBackend struct{}

func (heapBackend) Allocate(size, align int) ([]byte, error) {
	return mem.AllocAligned(size, align), nil
}

func (heapBackend) Free([]byte) error { return nil }

// Allocator wraps a Backend and records every allocation and free.
// It detects leaks, double frees and frees of foreign buffers, and can
// fail selected Allocate calls.
type Allocator struct {
	backend Backend

	mu        sync.Mutex
	live      map[uintptr]int // address -> size
	released  map[uintptr]bool
	allocs    int
	frees     int
	liveBytes int
	peakBytes int
	failOn    map[int]bool
	errs      []error
}

// NewAllocator wraps backend, or an aligned heap allocator if backend is nil.
func NewAllocator(backend Backend) *Allocator {
	if backend == nil {
		backend = heapBackend{}
	}
	return &Allocator{
		backend:  backend,
		live:     make(map[uintptr]int),
		released: make(map[uintptr]bool),
		failOn:   make(map[int]bool),
	}
}

// FailOn makes the n-th Allocate call (1-based, counted from creation)
// fail with ErrInjected.
func (a *Allocator) FailOn(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failOn[n] = true
}

// Allocate records the allocation and delegates to the backend.
func (a *Allocator) Allocate(size, align int) ([]byte, error) {
	a.mu.Lock()
	a.allocs++
	fail := a.failOn[a.allocs]
	a.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("%w: call %d", ErrInjected, a.Allocs())
	}

	b, err := a.backend.Allocate(size, align)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	key := addr(b)
	a.live[key] = len(b)
	delete(a.released, key)
	a.liveBytes += len(b)
	if a.liveBytes > a.peakBytes {
		a.peakBytes = a.liveBytes
	}
	a.mu.Unlock()

	return b, nil
}

// Free records the release and delegates to the backend.
func (a *Allocator) Free(b []byte) error {
	if len(b) == 0 {
		return a.record(fmt.Errorf("%w: empty buffer", ErrForeignFree))
	}

	key := addr(b)
	a.mu.Lock()
	size, ok := a.live[key]
	switch {
	case ok:
		delete(a.live, key)
		a.released[key] = true
		a.liveBytes -= size
		a.frees++
	case a.released[key]:
		a.mu.Unlock()
		return a.record(fmt.Errorf("%w: %#x", ErrDoubleFree, key))
	default:
		a.mu.Unlock()
		return a.record(fmt.Errorf("%w: %#x", ErrForeignFree, key))
	}
	a.mu.Unlock()

	return a.backend.Free(b)
}

func (a *Allocator) record(err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
	return err
}

// Allocs returns the number of Allocate calls, failed ones included.
func (a *Allocator) Allocs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs
}

// Frees returns the number of successful Free calls.
func (a *Allocator) Frees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frees
}

// Live returns the number of buffers not yet freed.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// LiveBytes returns the bytes held by buffers not yet freed.
func (a *Allocator) LiveBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.liveBytes
}

// PeakBytes returns the highest LiveBytes observed.
func (a *Allocator) PeakBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peakBytes
}

// CheckLeaks returns an error if any buffer is still live or if any
// invalid free was observed.
func (a *Allocator) CheckLeaks() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	errs := append([]error(nil), a.errs...)
	if len(a.live) > 0 {
		errs = append(errs, fmt.Errorf("%d buffers (%d bytes) leaked", len(a.live), a.liveBytes))
	}
	return errors.Join(errs...)
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0])) //nolint:gosec // address used as map key only
}
