// Package cache holds the per-descriptor invoker metadata.
//
// An Entry is built once for a descriptor and shared, read-only, by every
// invocation of that page.
package cache

import (
	"github.com/aretw0/pageflow/pkg/domain"
)

// Entry bundles the factories and the filter provider of one descriptor.
type Entry struct {
	ActionDescriptor *domain.ActionDescriptor

	PageFactory func(pc *domain.PageContext) (domain.Page, error)

	// PageDisposer is nil when the page needs no cleanup.
	PageDisposer func(pc *domain.PageContext, page domain.Page)

	// ModelFactory is nil when the page is its own model.
	ModelFactory func(pc *domain.PageContext) (any, error)

	// ModelDisposer is nil when the model needs no cleanup.
	ModelDisposer func(pc *domain.PageContext, model any)

	FilterProvider func(pc *domain.PageContext) []domain.Filter
}

// Builder creates the entry of a descriptor.
type Builder func(desc *domain.ActionDescriptor) (*Entry, error)
