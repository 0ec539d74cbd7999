package cache

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/binding"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/registry"
)

var closerType = reflect.TypeFor[io.Closer]()

// BuilderOption configures NewBuilder.
type BuilderOption func(*builderConfig)

type builderConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report disposer failures.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(c *builderConfig) {
		c.logger = logger
	}
}

// NewBuilder derives entries from the definitions held by reg.
// Global filters wrap page filters of the same order.
func NewBuilder(reg *registry.Registry, global []domain.FilterDescriptor, opts ...BuilderOption) Builder {
	cfg := builderConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	globals := make([]domain.FilterDescriptor, len(global))
	for i, d := range global {
		if d.Scope == 0 {
			d.Scope = domain.ScopeGlobal
		}
		globals[i] = d
	}

	return func(desc *domain.ActionDescriptor) (*Entry, error) {
		def, registered, err := reg.Lookup(desc.ID)
		if err != nil {
			return nil, err
		}
		if registered != desc {
			return nil, fmt.Errorf("%w: descriptor %s is not the registered one", domain.ErrPageNotFound, desc.ID)
		}
		return buildEntry(def, desc, globals, cfg.logger), nil
	}
}

func buildEntry(def registry.Definition, desc *domain.ActionDescriptor, globals []domain.FilterDescriptor, logger *slog.Logger) *Entry {
	bindPage := def.BindModel && def.ModelType == nil
	entry := &Entry{
		ActionDescriptor: desc,
		PageFactory: func(pc *domain.PageContext) (domain.Page, error) {
			page := def.NewPage()
			if page == nil {
				return nil, nil
			}
			page.SetPageContext(pc)
			if bindPage {
				if err := binding.Bind(pc, page); err != nil {
					return page, err
				}
			}
			return page, nil
		},
	}

	if def.PageType.Implements(closerType) {
		entry.PageDisposer = func(pc *domain.PageContext, page domain.Page) {
			closeValue(logger, desc, "page", page)
		}
	}

	if def.ModelType != nil {
		bindModel := def.BindModel
		entry.ModelFactory = func(pc *domain.PageContext) (any, error) {
			model := def.NewModel()
			if bindModel && model != nil {
				if err := binding.Bind(pc, model); err != nil {
					return model, err
				}
			}
			return model, nil
		}
		if def.ModelType.Implements(closerType) {
			entry.ModelDisposer = func(pc *domain.PageContext, model any) {
				closeValue(logger, desc, "model", model)
			}
		}
	}

	all := make([]domain.FilterDescriptor, 0, len(globals)+len(desc.Filters))
	all = append(all, globals...)
	all = append(all, desc.Filters...)
	filters := domain.SortFilters(all)
	entry.FilterProvider = func(*domain.PageContext) []domain.Filter {
		return filters
	}

	return entry
}

func closeValue(logger *slog.Logger, desc *domain.ActionDescriptor, kind string, v any) {
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("Failed to dispose "+kind, "page", desc.DisplayName, "err", err)
	}
}
