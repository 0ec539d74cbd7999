package domain

import (
	"net/http"
)

// RouteData holds the values extracted from the matched route.
type RouteData map[string]string

// Get returns the route value for key, or "".
func (r RouteData) Get(key string) string {
	if r == nil {
		return ""
	}
	return r[key]
}

// ActionContext is the immutable request bundle supplied by the host.
type ActionContext struct {
	ActionDescriptor *ActionDescriptor
	Request          *http.Request
	Response         http.ResponseWriter
	RouteData        RouteData

	// InvocationID correlates logs and diagnostics of a single invocation.
	InvocationID string
}

// ViewData is the data-binding view shared between the handler and the rendered output.
type ViewData struct {
	Model  any
	Values map[string]any
}

// PageContext is the per-invocation context of a page.
// The filter list is fixed when the context is created.
type PageContext struct {
	ActionContext

	// Page is the page instance, set by the pipeline once it has been constructed.
	Page Page

	ViewData *ViewData

	filters []Filter
}

// NewPageContext creates the context for one invocation.
// The provider, if any, is called exactly once to compute the ordered filter list.
func NewPageContext(action ActionContext, provider func(*PageContext) []Filter) *PageContext {
	pc := &PageContext{
		ActionContext: action,
		ViewData:      &ViewData{Values: make(map[string]any)},
	}
	if action.RouteData == nil {
		pc.RouteData = RouteData{}
	}
	if provider != nil {
		filters := provider(pc)
		pc.filters = make([]Filter, len(filters))
		copy(pc.filters, filters)
	}
	return pc
}

// Filters returns a copy of the ordered filter list.
func (pc *PageContext) Filters() []Filter {
	out := make([]Filter, len(pc.filters))
	copy(out, pc.filters)
	return out
}

// Page is implemented by every page type.
// The page factory binds the page to the context it was created for.
type Page interface {
	PageContext() *PageContext
	SetPageContext(pc *PageContext)
}

// PageBase implements Page and is meant to be embedded in page structs.
type PageBase struct {
	pageContext *PageContext
}

// PageContext returns the context the page was created for.
func (p *PageBase) PageContext() *PageContext {
	return p.pageContext
}

// SetPageContext binds the page to pc.
func (p *PageBase) SetPageContext(pc *PageContext) {
	p.pageContext = pc
}
