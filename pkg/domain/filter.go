package domain

import (
	"context"
	"sort"
)

// Filter is a pipeline hook. What it does is decided by the capability
// interfaces it implements (ExceptionFilter, AsyncExceptionFilter).
type Filter any

// ExceptionFilter observes an unhandled error synchronously while it unwinds.
type ExceptionFilter interface {
	OnException(exc *ExceptionContext)
}

// AsyncExceptionFilter observes an unhandled error and may block (I/O, network).
// A returned error fails the filter the same way a panic does: the next outer
// filter observes it, or it propagates when there is none.
type AsyncExceptionFilter interface {
	OnExceptionAsync(ctx context.Context, exc *ExceptionContext) error
}

// FilterScope is the level a filter was registered at.
// Lower scopes wrap higher ones when orders tie.
type FilterScope int

const (
	ScopeGlobal FilterScope = 10
	ScopePage   FilterScope = 30
)

// FilterDescriptor places a filter in the pipeline.
type FilterDescriptor struct {
	Filter Filter
	Order  int
	Scope  FilterScope
}

// IsSupportedFilter reports whether f implements a capability the pipeline runs.
func IsSupportedFilter(f Filter) bool {
	switch f.(type) {
	case AsyncExceptionFilter, ExceptionFilter:
		return true
	}
	return false
}

// SortFilters returns the filters ordered by (Order, Scope), keeping registration
// order among equals. The first filter is the outermost.
func SortFilters(descriptors []FilterDescriptor) []Filter {
	sorted := make([]FilterDescriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].Scope < sorted[j].Scope
	})

	filters := make([]Filter, 0, len(sorted))
	for _, d := range sorted {
		if d.Filter != nil {
			filters = append(filters, d.Filter)
		}
	}
	return filters
}
