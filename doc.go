/*
Package pageflow runs page handlers inside an exception-filter pipeline.

A page is a Go type registered with a route. Its handler methods follow the
On<Verb><Name> convention (OnGet, OnPostSave) and may return a Result, an error
or both. Each request becomes one invocation: the page (and its model, when it
has a distinct one) is built, the selected handler runs, and exactly one Result
is executed. Errors and panics raised on the way unwind through the registered
exception filters, innermost first, which may log them, replace them, mark them
handled or substitute a Result.

# Usage

	package main

	import (
		"context"
		"io"
		"net/http"

		"github.com/aretw0/pageflow"
		"github.com/aretw0/pageflow/pkg/domain"
		"github.com/aretw0/pageflow/pkg/filters"
		httpAdapter "github.com/aretw0/pageflow/pkg/adapters/http"
		"github.com/aretw0/pageflow/pkg/registry"
	)

	type HelloPage struct {
		domain.PageBase
	}

	func (p *HelloPage) RenderView(ctx context.Context, w io.Writer, data *domain.ViewData) error {
		_, err := io.WriteString(w, "<h1>hello</h1>")
		return err
	}

	func main() {
		eng, _ := pageflow.New(pageflow.WithGlobalFilter(filters.NewStatusCode(), 0))
		_, _ = eng.Register(registry.Page("hello", "/hello", func() *HelloPage { return &HelloPage{} }))

		_ = http.ListenAndServe(":8080", httpAdapter.NewServer(eng).Handler())
	}

# Packages

  - pkg/domain: Contexts, filters, results and errors.
  - pkg/registry: Page definitions and handler discovery.
  - pkg/cache: Per-page invoker metadata.
  - pkg/filters: Logging, status code and journaling filters.
  - pkg/results: Page views, content, JSON, problems and redirects.
  - pkg/manifest: YAML route manifests binding page kinds and filters to routes.
  - pkg/adapters: HTTP and MCP hosts, memory and Redis error journals.
*/
package pageflow
