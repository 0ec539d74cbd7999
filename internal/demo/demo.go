// Package demo is the built-in sample site served when no manifest is configured.
package demo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/filters"
	"github.com/aretw0/pageflow/pkg/manifest"
	"github.com/aretw0/pageflow/pkg/ports"
	"github.com/aretw0/pageflow/pkg/registry"
	"github.com/aretw0/pageflow/pkg/results"
)

//go:embed site.yaml
var siteManifest []byte

// ErrOrderNotFound is returned for unknown order IDs.
var ErrOrderNotFound = errors.New("order not found")

// Manifest returns the demo route manifest.
func Manifest() (*manifest.Manifest, error) {
	return manifest.Parse(siteManifest)
}

// Catalog returns the demo page kinds and filters.
// A nil journal leaves the "journal" filter out of the catalog.
func Catalog(journal ports.ErrorJournal, logger *slog.Logger) manifest.Catalog {
	cat := manifest.Catalog{
		Pages: map[string]manifest.PageKind{
			"home":  manifest.Kind(func() *HomePage { return &HomePage{} }),
			"order": manifest.Kind(func() *OrderPage { return &OrderPage{} }, registry.WithModel(func() *Order { return &Order{} })),
			"docs":  manifest.Kind(func() *DocsPage { return &DocsPage{} }),
		},
		Filters: map[string]domain.Filter{
			"logging": filters.NewLogging(logger),
			"status":  filters.NewStatusCode(filters.Mapping{Err: ErrOrderNotFound, Status: http.StatusNotFound}),
		},
	}
	if journal != nil {
		cat.Filters["journal"] = filters.NewJournal(journal, logger)
	}
	return cat
}

var homeTemplate = template.Must(template.New("home").Parse(`<!doctype html>
<html><head><title>pageflow</title></head>
<body>
<h1>pageflow demo</h1>
<ul>
{{range .}}<li><a href="{{.}}">{{.}}</a></li>
{{end}}</ul>
</body></html>
`))

// HomePage renders its own view.
type HomePage struct {
	domain.PageBase
}

func (p *HomePage) OnGet() {}

func (p *HomePage) RenderView(ctx context.Context, w io.Writer, data *domain.ViewData) error {
	return homeTemplate.Execute(w, []string{"/orders/1", "/orders/404", "/orders/1?handler=panic", "/docs"})
}

// OrderPage shows an order. Its handlers live on the Order model.
type OrderPage struct {
	domain.PageBase
}

// Order is the bound model of OrderPage.
type Order struct {
	ID    int    `bind:"id" json:"id"`
	Item  string `json:"item"`
	Total int    `json:"total_cents"`
}

var orders = map[int]Order{
	1: {ID: 1, Item: "Espresso machine", Total: 34900},
	2: {ID: 2, Item: "Grinder", Total: 12900},
}

func (o *Order) OnGet() (domain.Result, error) {
	found, ok := orders[o.ID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", o.ID, ErrOrderNotFound)
	}
	*o = found
	return results.JSON(o), nil
}

func (o *Order) OnGetPanic() {
	panic(fmt.Sprintf("order %d exploded", o.ID))
}

// DocsPage serves a markdown document.
type DocsPage struct {
	domain.PageBase
}

const docs = `# pageflow

Every page request runs through an **exception-filter pipeline**:

1. The outermost filter sees errors last.
2. A filter may set a substitute result.
3. An unhandled error reaches the host.
`

func (p *DocsPage) OnGet() *results.ContentResult {
	return &results.ContentResult{Content: docs, ContentType: "text/markdown; charset=utf-8"}
}
