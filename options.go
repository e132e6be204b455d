package mdarena

type options struct {
	allocator        Allocator
	logger           *Logger
	metricsCollector MetricsCollector
	budget           *Budget
}

// Option configures Alloc, NewArray and Restore.
type Option func(*options)

// WithAllocator sets the allocator that backs the block and its scratch
// cells. If nil is passed, the heap allocator is used.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = c
	}
}

// WithBudget charges the block and its scratch cells against b.
// Allocations that would exceed the budget fail with ErrAllocationFailed.
func WithBudget(b *Budget) Option {
	return func(o *options) {
		o.budget = b
	}
}

func applyOptions(optFns []Option) options {
	o := options{}
	for _, fn := range optFns {
		fn(&o)
	}

	if o.allocator == nil {
		o.allocator = HeapAllocator{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.budget != nil {
		o.allocator = &budgetedAllocator{Allocator: o.allocator, budget: o.budget}
	}

	return o
}
