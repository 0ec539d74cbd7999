package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/executor"
)

// ErrDuplicate is returned when a page name or route is registered twice.
var ErrDuplicate = errors.New("page already registered")

// Definition declares a page kind: how to build it and where it is routed.
type Definition struct {
	Name  string
	Route string

	PageType reflect.Type
	NewPage  func() domain.Page

	// ModelType and NewModel are set when the page has a distinct model.
	ModelType reflect.Type
	NewModel  func() any

	// BindModel binds route, query and form values into the model after construction.
	BindModel bool

	Filters []domain.FilterDescriptor
}

// Option configures a Definition.
type Option func(*Definition)

// Page declares a page of type P answering to route.
func Page[P domain.Page](name, route string, newPage func() P, opts ...Option) Definition {
	def := Definition{
		Name:     name,
		Route:    route,
		PageType: reflect.TypeFor[P](),
		NewPage: func() domain.Page {
			page := newPage()
			if isNil(page) {
				return nil
			}
			return page
		},
	}
	for _, opt := range opts {
		opt(&def)
	}
	return def
}

// WithModel declares a distinct model of type M.
func WithModel[M any](newModel func() M) Option {
	return func(d *Definition) {
		d.ModelType = reflect.TypeFor[M]()
		d.NewModel = func() any {
			model := newModel()
			if isNil(model) {
				return nil
			}
			return model
		}
	}
}

// isNil reports whether v is nil or a typed nil (pointer, map, slice, func, chan, interface).
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// WithBinding enables request value binding into the handler target.
func WithBinding() Option {
	return func(d *Definition) {
		d.BindModel = true
	}
}

// WithFilter adds a page-level filter.
func WithFilter(filter domain.Filter, order int) Option {
	return func(d *Definition) {
		d.Filters = append(d.Filters, domain.FilterDescriptor{
			Filter: filter,
			Order:  order,
			Scope:  domain.ScopePage,
		})
	}
}

type registration struct {
	def  Definition
	desc *domain.ActionDescriptor
}

// Registry manages the registered pages.
type Registry struct {
	mu     sync.RWMutex
	pages  map[string]*registration
	routes map[string]string
	order  []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pages:  make(map[string]*registration),
		routes: make(map[string]string),
	}
}

// Register compiles def into a descriptor and adds it to the registry.
// Handler methods are discovered on the model type, or on the page type when
// the page is its own model.
func (r *Registry) Register(def Definition) (*domain.ActionDescriptor, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("page name is required")
	}
	if def.Route == "" || !strings.HasPrefix(def.Route, "/") {
		return nil, fmt.Errorf("page %s: route must start with '/': %q", def.Name, def.Route)
	}
	if def.NewPage == nil || def.PageType == nil {
		return nil, fmt.Errorf("page %s: page factory is required", def.Name)
	}
	if def.ModelType != nil && def.NewModel == nil {
		return nil, fmt.Errorf("page %s: model type declared without a model factory", def.Name)
	}

	target := def.PageType
	if def.ModelType != nil {
		target = def.ModelType
	}
	handlers, err := DiscoverHandlers(target)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", def.Name, err)
	}

	desc := &domain.ActionDescriptor{
		ID:             def.Name,
		DisplayName:    displayName(def),
		RouteTemplate:  def.Route,
		PageType:       def.PageType,
		ModelType:      def.ModelType,
		HandlerMethods: handlers,
		Filters:        append([]domain.FilterDescriptor(nil), def.Filters...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[def.Name]; exists {
		return nil, fmt.Errorf("%w: name %s", ErrDuplicate, def.Name)
	}
	if owner, exists := r.routes[def.Route]; exists {
		return nil, fmt.Errorf("%w: route %s (owned by %s)", ErrDuplicate, def.Route, owner)
	}

	r.pages[def.Name] = &registration{def: def, desc: desc}
	r.routes[def.Route] = def.Name
	r.order = append(r.order, def.Name)
	return desc, nil
}

// Lookup returns the definition and descriptor registered under id.
func (r *Registry) Lookup(id string) (Definition, *domain.ActionDescriptor, error) {
	r.mu.RLock()
	reg, ok := r.pages[id]
	r.mu.RUnlock()

	if !ok {
		return Definition{}, nil, fmt.Errorf("%w: %s", domain.ErrPageNotFound, id)
	}
	return reg.def, reg.desc, nil
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []*domain.ActionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ActionDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.pages[id].desc)
	}
	return out
}

var verbs = []string{"Get", "Post", "Put", "Delete", "Patch", "Head", "Options"}

// DiscoverHandlers finds the On<Verb><Name> methods of t and checks each one has
// a signature the executor can call.
func DiscoverHandlers(t reflect.Type) ([]*domain.HandlerMethod, error) {
	var handlers []*domain.HandlerMethod
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		verb, name, ok := parseHandlerName(m.Name)
		if !ok {
			continue
		}
		if err := executor.Validate(m); err != nil {
			return nil, err
		}
		handlers = append(handlers, &domain.HandlerMethod{
			Name:       name,
			HTTPMethod: strings.ToUpper(verb),
			Method:     m,
		})
	}
	return handlers, nil
}

func parseHandlerName(method string) (verb, name string, ok bool) {
	rest, found := strings.CutPrefix(method, "On")
	if !found {
		return "", "", false
	}
	for _, v := range verbs {
		name, found := strings.CutPrefix(rest, v)
		if !found {
			continue
		}
		if name != "" {
			first, _ := utf8.DecodeRuneInString(name)
			if !unicode.IsUpper(first) {
				continue
			}
		}
		return v, name, true
	}
	return "", "", false
}

func displayName(def Definition) string {
	return fmt.Sprintf("%s (%s)", def.Name, def.Route)
}
