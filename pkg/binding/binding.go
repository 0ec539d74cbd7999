// Package binding copies request values into page models.
//
// Values are collected from route data, the query string and, for form posts,
// the request body. Route values win over the form, which wins over the
// query string, so request values never retarget a route parameter. Fields are
// matched by their `bind` tag, or case-insensitively by field name.
package binding

import (
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/pageflow/pkg/domain"
)

// TagName is the struct tag consulted for field names.
const TagName = "bind"

// Values gathers the bindable values of pc. Multi-valued keys keep all values,
// single values are unwrapped so they decode into scalar fields.
func Values(pc *domain.PageContext) (map[string]any, error) {
	values := make(map[string]any)

	if r := pc.Request; r != nil {
		if r.URL != nil {
			merge(values, r.URL.Query())
		}
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if err := r.ParseForm(); err != nil {
				return nil, fmt.Errorf("failed to parse form: %w", err)
			}
			merge(values, r.PostForm)
		}
	}

	for k, v := range pc.RouteData {
		values[k] = v
	}
	return values, nil
}

func merge(dst map[string]any, src map[string][]string) {
	for k, v := range src {
		switch len(v) {
		case 0:
		case 1:
			dst[k] = v[0]
		default:
			dst[k] = append([]string(nil), v...)
		}
	}
}

// Bind decodes the request values of pc into target, which must be a pointer.
func Bind(pc *domain.PageContext, target any) error {
	values, err := Values(pc)
	if err != nil {
		return err
	}
	return Decode(values, target)
}

// Decode decodes values into target with weak typing, so "42" binds to an int field.
func Decode(values map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("failed to bind request values: %w", err)
	}
	return nil
}
