package ports

import "github.com/aretw0/pageflow/pkg/domain"

// HandlerSelector chooses the handler method to invoke for a page context.
// It is called after the page and model are constructed and before dispatch.
// Returning nil means no handler runs and the page view is rendered.
type HandlerSelector interface {
	Select(pc *domain.PageContext) *domain.HandlerMethod
}

// SelectorFunc adapts a function to HandlerSelector.
type SelectorFunc func(pc *domain.PageContext) *domain.HandlerMethod

// Select calls f.
func (f SelectorFunc) Select(pc *domain.PageContext) *domain.HandlerMethod {
	return f(pc)
}
