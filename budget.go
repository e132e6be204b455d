package mdarena

import (
	"github.com/hupe1980/mdarena/internal/resource"
)

// Budget is a hard limit on the bytes held by live blocks. One Budget may
// be shared by any number of blocks and goroutines.
//
// Charging is fail-fast: an Alloc that would exceed the limit returns
// ErrAllocationFailed immediately.
type Budget struct {
	rc *resource.Controller
}

// NewBudget creates a budget of limitBytes. A limit <= 0 only tracks usage.
func NewBudget(limitBytes int64) *Budget {
	return &Budget{
		rc: resource.NewController(resource.Config{MemoryLimitBytes: limitBytes}),
	}
}

// Used returns the bytes currently charged.
func (b *Budget) Used() int64 { return b.rc.MemoryUsage() }

// Peak returns the highest charge observed.
func (b *Budget) Peak() int64 { return b.rc.PeakMemoryUsage() }

// Limit returns the configured limit (0 if unlimited).
func (b *Budget) Limit() int64 { return b.rc.MemoryLimit() }

// budgetedAllocator charges every allocation against a Budget.
type budgetedAllocator struct {
	Allocator
	budget *Budget
}

func (a *budgetedAllocator) Allocate(size, align int) ([]byte, error) {
	if err := a.budget.rc.AcquireMemory(int64(size)); err != nil {
		return nil, err
	}
	b, err := a.Allocator.Allocate(size, align)
	if err != nil {
		a.budget.rc.ReleaseMemory(int64(size))
		return nil, err
	}
	return b, nil
}

func (a *budgetedAllocator) Free(b []byte) error {
	size := len(b)
	err := a.Allocator.Free(b)
	a.budget.rc.ReleaseMemory(int64(size))
	return err
}
