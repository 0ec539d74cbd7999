package invoker

import "github.com/aretw0/pageflow/pkg/domain"

// cursor walks the filter list once per pipeline entry.
type cursor struct {
	filters []domain.Filter
	index   int
}

func (c *cursor) Reset() {
	c.index = 0
}

// NextExceptionFilter returns the next filter with an exception capability.
// Async is preferred when a filter implements both. Both results are nil once
// the list is exhausted.
func (c *cursor) NextExceptionFilter() (domain.AsyncExceptionFilter, domain.ExceptionFilter) {
	for c.index < len(c.filters) {
		f := c.filters[c.index]
		c.index++
		if async, ok := f.(domain.AsyncExceptionFilter); ok {
			return async, nil
		}
		if sync, ok := f.(domain.ExceptionFilter); ok {
			return nil, sync
		}
	}
	return nil, nil
}
