package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidPipelineState is returned when the invoker reaches an unknown state.
// It signals a programming defect in the driver.
var ErrInvalidPipelineState = errors.New("invalid pipeline state")

// ErrContextMismatch is returned when a Result runs against a context other than
// the one its page was created for.
var ErrContextMismatch = errors.New("result executed against a foreign page context")

// ErrStageNotImplemented is returned when the pipeline is asked to run a filter
// stage it does not provide.
var ErrStageNotImplemented = errors.New("filter stage not implemented")

// ErrViewNotImplemented is returned when a page view is rendered for a page that
// has no view.
var ErrViewNotImplemented = errors.New("page has no view")

// ErrNilPage is returned when a page factory produces no page.
var ErrNilPage = errors.New("page factory returned nil")

// ErrNilModel is returned when the model factory of a page with a distinct model produces no model.
var ErrNilModel = errors.New("model factory returned nil")

// ErrPageNotFound is returned when a page ID or route is not registered.
var ErrPageNotFound = errors.New("page not found")

// ErrUnsupportedHandler is returned when a handler method has a signature the
// executor cannot call.
var ErrUnsupportedHandler = errors.New("unsupported handler signature")

// UnsupportedFilterError reports a filter whose stage the pipeline does not run.
type UnsupportedFilterError struct {
	Filter Filter
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("filter %T: %v", e.Filter, ErrStageNotImplemented)
}

func (e *UnsupportedFilterError) Unwrap() error {
	return ErrStageNotImplemented
}
