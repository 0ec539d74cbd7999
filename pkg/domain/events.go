package domain

import (
	"context"
	"net/http"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBeforeAction           EventType = "before_action"
	EventAfterAction            EventType = "after_action"
	EventBeforeOnException      EventType = "before_on_exception"
	EventAfterOnException       EventType = "after_on_exception"
	EventBeforeOnExceptionAsync EventType = "before_on_exception_async"
	EventAfterOnExceptionAsync  EventType = "after_on_exception_async"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	InvocationID string    `json:"invocation_id"`
}

// ActionEvent marks the start or the end of an invocation.
type ActionEvent struct {
	EventBase
	Descriptor *ActionDescriptor `json:"-"`
	Request    *http.Request     `json:"-"`
	RouteData  RouteData         `json:"route_data,omitempty"`

	// Elapsed is set on after-action events only.
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// FilterEvent surrounds a call to an exception filter.
type FilterEvent struct {
	EventBase
	Exception *ExceptionContext `json:"-"`
	Filter    Filter            `json:"-"`
}

// DiagnosticHooks defines callbacks for invocation observability.
// Nil callbacks are skipped.
type DiagnosticHooks struct {
	OnBeforeAction         func(context.Context, *ActionEvent)
	OnAfterAction          func(context.Context, *ActionEvent)
	OnBeforeException      func(context.Context, *FilterEvent)
	OnAfterException       func(context.Context, *FilterEvent)
	OnBeforeExceptionAsync func(context.Context, *FilterEvent)
	OnAfterExceptionAsync  func(context.Context, *FilterEvent)
}
