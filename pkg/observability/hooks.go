package observability

import (
	"context"

	"github.com/aretw0/pageflow/pkg/domain"
)

// Combine merges hook sets. Callbacks run in argument order.
func Combine(hooks ...domain.DiagnosticHooks) domain.DiagnosticHooks {
	var out domain.DiagnosticHooks
	for _, h := range hooks {
		out.OnBeforeAction = chain(out.OnBeforeAction, h.OnBeforeAction)
		out.OnAfterAction = chain(out.OnAfterAction, h.OnAfterAction)
		out.OnBeforeException = chain(out.OnBeforeException, h.OnBeforeException)
		out.OnAfterException = chain(out.OnAfterException, h.OnAfterException)
		out.OnBeforeExceptionAsync = chain(out.OnBeforeExceptionAsync, h.OnBeforeExceptionAsync)
		out.OnAfterExceptionAsync = chain(out.OnAfterExceptionAsync, h.OnAfterExceptionAsync)
	}
	return out
}

func chain[E any](first, second func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		second(ctx, e)
	}
}
