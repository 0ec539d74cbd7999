package domain

import (
	"context"
	"io"
)

// Result is the output of an invocation.
// The pipeline executes at most one Result per invocation.
type Result interface {
	ExecuteResult(ctx context.Context, pc *PageContext) error
}

// ResultFunc adapts a function to the Result interface.
type ResultFunc func(ctx context.Context, pc *PageContext) error

// ExecuteResult calls f.
func (f ResultFunc) ExecuteResult(ctx context.Context, pc *PageContext) error {
	return f(ctx, pc)
}

// View is implemented by pages that can render their own markup.
type View interface {
	RenderView(ctx context.Context, w io.Writer, data *ViewData) error
}
