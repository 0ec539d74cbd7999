package results

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aretw0/pageflow/pkg/domain"
)

// DefaultPageContentType is used when a page view sets no content type.
const DefaultPageContentType = "text/html; charset=utf-8"

// PageViewResult renders a page through its View.
type PageViewResult struct {
	Page domain.Page

	// Model, when set, replaces ViewData.Model for this rendering.
	Model any

	ContentType string
	StatusCode  int
}

// NewPageViewResult creates the view result for page.
func NewPageViewResult(page domain.Page) *PageViewResult {
	return &PageViewResult{Page: page}
}

// NewPageViewResultWithModel creates the view result for page rendering model.
func NewPageViewResultWithModel(page domain.Page, model any) *PageViewResult {
	return &PageViewResult{Page: page, Model: model}
}

// ExecuteResult renders the page. It fails with domain.ErrContextMismatch when pc
// is not the context the page was created for.
func (r *PageViewResult) ExecuteResult(ctx context.Context, pc *domain.PageContext) error {
	if r.Page == nil || pc != r.Page.PageContext() {
		return domain.ErrContextMismatch
	}

	view, ok := r.Page.(domain.View)
	if !ok {
		return fmt.Errorf("%w: %T", domain.ErrViewNotImplemented, r.Page)
	}

	data := pc.ViewData
	if r.Model != nil {
		data = &domain.ViewData{Model: r.Model, Values: pc.ViewData.Values}
	}

	// Render fully before touching the response so a failing view writes nothing.
	var buf bytes.Buffer
	if err := view.RenderView(ctx, &buf, data); err != nil {
		return err
	}

	contentType := r.ContentType
	if contentType == "" {
		contentType = DefaultPageContentType
	}
	return writeBody(pc, contentType, r.StatusCode, buf.Bytes())
}
