// Package selector provides the default handler selection policy.
package selector

import (
	"net/http"
	"strings"

	"github.com/aretw0/pageflow/pkg/domain"
)

// HandlerKey is the route value and query parameter naming the handler to run.
const HandlerKey = "handler"

// Default selects handlers by HTTP verb and handler name.
//
// The name comes from the "handler" route value, falling back to the "handler"
// query parameter. HEAD requests use GET handlers when no HEAD handler exists.
type Default struct{}

// New returns the default selector.
func New() Default {
	return Default{}
}

// Select implements ports.HandlerSelector.
func (Default) Select(pc *domain.PageContext) *domain.HandlerMethod {
	desc := pc.ActionDescriptor
	if desc == nil || len(desc.HandlerMethods) == 0 {
		return nil
	}

	verb := http.MethodGet
	name := pc.RouteData.Get(HandlerKey)
	if pc.Request != nil {
		if pc.Request.Method != "" {
			verb = strings.ToUpper(pc.Request.Method)
		}
		if name == "" && pc.Request.URL != nil {
			name = pc.Request.URL.Query().Get(HandlerKey)
		}
	}

	if h := match(desc.HandlerMethods, verb, name); h != nil {
		return h
	}
	if verb == http.MethodHead {
		return match(desc.HandlerMethods, http.MethodGet, name)
	}
	return nil
}

func match(handlers []*domain.HandlerMethod, verb, name string) *domain.HandlerMethod {
	for _, h := range handlers {
		if h.HTTPMethod == verb && strings.EqualFold(h.Name, name) {
			return h
		}
	}
	return nil
}
