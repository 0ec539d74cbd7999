package pageflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/pageflow/internal/invoker"
	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/cache"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/executor"
	"github.com/aretw0/pageflow/pkg/ports"
	"github.com/aretw0/pageflow/pkg/registry"
	"github.com/aretw0/pageflow/pkg/selector"
)

// Engine is the high-level entry point for the pageflow library.
// It owns the page registry and the invoker metadata cache and runs
// invocations through the filter pipeline.
type Engine struct {
	registry  *registry.Registry
	cache     *cache.Cache
	selector  ports.HandlerSelector
	executors ports.ExecutorFactory
	hooks     domain.DiagnosticHooks
	logger    *slog.Logger
	globals   []domain.FilterDescriptor
	cacheSize int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers diagnostics hooks.
func WithHooks(hooks domain.DiagnosticHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSelector replaces the default handler selector.
func WithSelector(s ports.HandlerSelector) Option {
	return func(e *Engine) {
		e.selector = s
	}
}

// WithExecutorFactory replaces the reflection based executor factory.
func WithExecutorFactory(f ports.ExecutorFactory) Option {
	return func(e *Engine) {
		e.executors = f
	}
}

// WithRegistry uses an existing page registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithGlobalFilter adds a filter to every page.
// Filters are ordered by order; at equal order global filters wrap page filters.
func WithGlobalFilter(filter domain.Filter, order int) Option {
	return func(e *Engine) {
		e.globals = append(e.globals, domain.FilterDescriptor{
			Filter: filter,
			Order:  order,
			Scope:  domain.ScopeGlobal,
		})
	}
}

// WithCacheSize bounds the number of cached invoker entries.
func WithCacheSize(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}
	if eng.selector == nil {
		eng.selector = selector.New()
	}
	if eng.executors == nil {
		eng.executors = executor.NewFactory()
	}

	builder := cache.NewBuilder(eng.registry, eng.globals, cache.WithLogger(eng.logger))
	c, err := cache.New(eng.cacheSize, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoker cache: %w", err)
	}
	eng.cache = c
	return eng, nil
}

// Register adds a page definition.
func (e *Engine) Register(def registry.Definition) (*domain.ActionDescriptor, error) {
	return e.registry.Register(def)
}

// Routes returns the registered descriptors in registration order.
func (e *Engine) Routes() []*domain.ActionDescriptor {
	return e.registry.Descriptors()
}

// Lookup returns the descriptor registered under id.
func (e *Engine) Lookup(id string) (*domain.ActionDescriptor, error) {
	_, desc, err := e.registry.Lookup(id)
	return desc, err
}

// GlobalFilters returns the global filter descriptors.
func (e *Engine) GlobalFilters() []domain.FilterDescriptor {
	return append([]domain.FilterDescriptor(nil), e.globals...)
}

// Registry returns the underlying page registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Invoke runs one invocation of the page described by action.
//
// An unhandled error is returned unchanged. An unhandled panic keeps
// panicking; see the invoker package for the capture rules.
func (e *Engine) Invoke(ctx context.Context, action domain.ActionContext) error {
	if action.ActionDescriptor == nil {
		return fmt.Errorf("%w: no action descriptor", domain.ErrPageNotFound)
	}
	if action.InvocationID == "" {
		action.InvocationID = uuid.NewString()
	}

	entry, err := e.cache.Get(action.ActionDescriptor)
	if err != nil {
		return err
	}

	pc := domain.NewPageContext(action, entry.FilterProvider)
	inv := invoker.New(entry, e.selector, e.executors, pc,
		invoker.WithHooks(e.hooks),
		invoker.WithLogger(e.logger),
	)
	return inv.Invoke(ctx)
}
