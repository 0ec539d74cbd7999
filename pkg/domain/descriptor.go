package domain

import (
	"context"
	"reflect"
)

// ActionDescriptor describes a compiled, routable page.
// It is built once at registration and never mutated afterwards.
type ActionDescriptor struct {
	// ID uniquely identifies the page within a registry.
	ID string

	// DisplayName is the human readable name used in logs and diagnostics.
	DisplayName string

	// RouteTemplate is the route the page answers to (e.g. "/orders/{id}").
	RouteTemplate string

	// PageType is the concrete type produced by the page factory.
	PageType reflect.Type

	// ModelType is the distinct model type, or nil when the page is its own model.
	ModelType reflect.Type

	// HandlerMethods lists the discovered handler methods, sorted by method name.
	HandlerMethods []*HandlerMethod

	// Filters are the page-level filter descriptors.
	Filters []FilterDescriptor
}

// HandlerMethod is a handler discovered on the page or model type.
// Handlers follow the On<Verb><Name> naming convention (OnGet, OnPostSave).
type HandlerMethod struct {
	// Name is the handler name ("" for the default verb handler).
	Name string

	// HTTPMethod is the upper-cased verb the handler answers to.
	HTTPMethod string

	// Method is the reflected method on the handler's declaring type.
	Method reflect.Method
}

// HandlerExecutor invokes a handler method on behalf of the pipeline.
// A nil Result means the handler produced no output and the page view is rendered.
type HandlerExecutor func(ctx context.Context, page Page, model any) (Result, error)
