package domain

import (
	"fmt"
)

// ExceptionContext is the record exception filters observe while an error unwinds.
//
// A filter may leave it untouched, set Handled, clear or replace the error with
// SetException, or supply a substitute Result.
type ExceptionContext struct {
	*PageContext

	// Handled stops further filters from observing the error and suppresses the rethrow.
	Handled bool

	// Result, when set and the error is not Handled, is executed instead of rethrowing.
	Result Result

	err      error
	captured error
	filters  []Filter
}

// NewExceptionContext captures err for the filters of pc.
func NewExceptionContext(pc *PageContext, err error) *ExceptionContext {
	exc := &ExceptionContext{
		PageContext: pc,
		err:         err,
		captured:    err,
	}
	if pc != nil {
		exc.filters = pc.Filters()
	}
	return exc
}

// Exception returns the error being unwound, or nil once a filter cleared it.
func (c *ExceptionContext) Exception() error {
	if c == nil {
		return nil
	}
	return c.err
}

// SetException replaces the error being unwound. The original capture is dropped.
func (c *ExceptionContext) SetException(err error) {
	c.err = err
	c.captured = nil
}

// Filters returns the filter list of the invocation.
func (c *ExceptionContext) Filters() []Filter {
	out := make([]Filter, len(c.filters))
	copy(out, c.filters)
	return out
}

// Unhandled reports whether an error is present and no filter has handled it yet.
func (c *ExceptionContext) Unhandled() bool {
	return c != nil && c.err != nil && !c.Handled
}

// Rethrow surfaces the captured error unless it was handled.
// The original error value is returned as-is. A captured panic is re-raised with
// its original *PanicError, keeping the stack recorded at the panic site.
func (c *ExceptionContext) Rethrow() error {
	if c == nil || c.Handled {
		return nil
	}
	if c.captured != nil {
		if pe, ok := c.captured.(*PanicError); ok {
			panic(pe)
		}
		return c.captured
	}
	return c.err
}

// PanicError is a panic recovered inside the filter pipeline.
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError wraps a recovered value. Values that already are a *PanicError
// are returned unchanged so the first capture wins.
func NewPanicError(value any, stack []byte) *PanicError {
	if pe, ok := value.(*PanicError); ok {
		return pe
	}
	return &PanicError{Value: value, Stack: stack}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
