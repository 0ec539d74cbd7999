// Package manifest binds named page kinds and named filters to routes from a
// YAML or JSON file.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/registry"
)

var (
	// ErrInvalid is returned when a manifest fails validation.
	ErrInvalid = errors.New("invalid manifest")

	// ErrUnknownPage is returned when a route names a page kind missing from the catalog.
	ErrUnknownPage = errors.New("unknown page kind")

	// ErrUnknownFilter is returned when a route names a filter missing from the catalog.
	ErrUnknownFilter = errors.New("unknown filter")
)

// FilterRef names a catalog filter and its order.
type FilterRef struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Order int    `yaml:"order" json:"order"`
}

// Route binds a page kind to a route.
type Route struct {
	Name    string      `yaml:"name" json:"name" validate:"required"`
	Page    string      `yaml:"page" json:"page" validate:"required"`
	Route   string      `yaml:"route" json:"route" validate:"required,startswith=/"`
	Bind    bool        `yaml:"bind" json:"bind"`
	Filters []FilterRef `yaml:"filters" json:"filters" validate:"dive"`
}

// Manifest represents the structure of a pages.yaml file.
type Manifest struct {
	Site          string      `yaml:"site" json:"site"`
	GlobalFilters []FilterRef `yaml:"global_filters" json:"global_filters" validate:"dive"`
	Routes        []Route     `yaml:"routes" json:"routes" validate:"required,min=1,dive"`
}

// PageKind builds a definition for a named route.
type PageKind func(name, route string, opts ...registry.Option) registry.Definition

// Kind returns the PageKind of pages built by newPage.
func Kind[P domain.Page](newPage func() P, opts ...registry.Option) PageKind {
	return func(name, route string, more ...registry.Option) registry.Definition {
		all := append(append([]registry.Option(nil), opts...), more...)
		return registry.Page(name, route, newPage, all...)
	}
}

// Catalog holds the page kinds and filters a manifest may refer to.
type Catalog struct {
	Pages   map[string]PageKind
	Filters map[string]domain.Filter
}

// Registrar accepts page definitions. Both the engine and the registry implement it.
type Registrar interface {
	Register(def registry.Definition) (*domain.ActionDescriptor, error)
}

var validate = validator.New()

// Load reads a manifest file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return check(&m)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return check(&m)
}

func check(m *Manifest) (*Manifest, error) {
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	seen := make(map[string]bool, len(m.Routes))
	for _, r := range m.Routes {
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: duplicate route name %q", ErrInvalid, r.Name)
		}
		seen[r.Name] = true
	}
	return m, nil
}

// Globals resolves the manifest's global filters.
func (m *Manifest) Globals(cat Catalog) ([]domain.FilterDescriptor, error) {
	out := make([]domain.FilterDescriptor, 0, len(m.GlobalFilters))
	for _, ref := range m.GlobalFilters {
		f, ok := cat.Filters[ref.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, ref.Name)
		}
		out = append(out, domain.FilterDescriptor{Filter: f, Order: ref.Order, Scope: domain.ScopeGlobal})
	}
	return out, nil
}

// Apply registers every route of the manifest. It stops at the first failure;
// routes registered before it stay registered.
func (m *Manifest) Apply(reg Registrar, cat Catalog) ([]*domain.ActionDescriptor, error) {
	descs := make([]*domain.ActionDescriptor, 0, len(m.Routes))
	for _, r := range m.Routes {
		kind, ok := cat.Pages[r.Page]
		if !ok {
			return descs, fmt.Errorf("route %s: %w: %s", r.Name, ErrUnknownPage, r.Page)
		}

		var opts []registry.Option
		if r.Bind {
			opts = append(opts, registry.WithBinding())
		}
		for _, ref := range r.Filters {
			f, ok := cat.Filters[ref.Name]
			if !ok {
				return descs, fmt.Errorf("route %s: %w: %s", r.Name, ErrUnknownFilter, ref.Name)
			}
			opts = append(opts, registry.WithFilter(f, ref.Order))
		}

		desc, err := reg.Register(kind(r.Name, r.Route, opts...))
		if err != nil {
			return descs, fmt.Errorf("route %s: %w", r.Name, err)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}
