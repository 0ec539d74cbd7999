package filters

import (
	"context"

	"github.com/aretw0/pageflow/pkg/domain"
)

type funcFilter struct {
	name string
	fn   func(exc *domain.ExceptionContext)
}

// Func adapts fn to a synchronous exception filter.
func Func(name string, fn func(exc *domain.ExceptionContext)) domain.ExceptionFilter {
	return &funcFilter{name: name, fn: fn}
}

func (f *funcFilter) Name() string { return f.name }

func (f *funcFilter) OnException(exc *domain.ExceptionContext) {
	f.fn(exc)
}

type asyncFuncFilter struct {
	name string
	fn   func(ctx context.Context, exc *domain.ExceptionContext) error
}

// AsyncFunc adapts fn to an asynchronous exception filter.
func AsyncFunc(name string, fn func(ctx context.Context, exc *domain.ExceptionContext) error) domain.AsyncExceptionFilter {
	return &asyncFuncFilter{name: name, fn: fn}
}

func (f *asyncFuncFilter) Name() string { return f.name }

func (f *asyncFuncFilter) OnExceptionAsync(ctx context.Context, exc *domain.ExceptionContext) error {
	return f.fn(ctx, exc)
}

// Handle returns a filter that marks every exception matched by match as handled.
func Handle(name string, match func(err error) bool) domain.ExceptionFilter {
	return Func(name, func(exc *domain.ExceptionContext) {
		if match(exc.Exception()) {
			exc.Handled = true
		}
	})
}
