package results

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/pageflow/pkg/domain"
)

var errNoResponse = errors.New("page context has no response writer")

func writeBody(pc *domain.PageContext, contentType string, status int, body []byte) error {
	w := pc.Response
	if w == nil {
		return errNoResponse
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if status != 0 {
		w.WriteHeader(status)
	}
	_, err := w.Write(body)
	return err
}

// ContentResult writes a string body.
type ContentResult struct {
	Content     string
	ContentType string
	StatusCode  int
}

// Content creates a text/plain content result.
func Content(content string) *ContentResult {
	return &ContentResult{Content: content, ContentType: "text/plain; charset=utf-8"}
}

// ExecuteResult implements domain.Result.
func (r *ContentResult) ExecuteResult(ctx context.Context, pc *domain.PageContext) error {
	return writeBody(pc, r.ContentType, r.StatusCode, []byte(r.Content))
}

// StatusCodeResult writes a status code with no body.
type StatusCodeResult struct {
	StatusCode int
}

// Status creates a status code result.
func Status(code int) *StatusCodeResult {
	return &StatusCodeResult{StatusCode: code}
}

// ExecuteResult implements domain.Result.
func (r *StatusCodeResult) ExecuteResult(ctx context.Context, pc *domain.PageContext) error {
	if pc.Response == nil {
		return errNoResponse
	}
	pc.Response.WriteHeader(r.StatusCode)
	return nil
}

// RedirectResult redirects the client.
type RedirectResult struct {
	URL       string
	Permanent bool
}

// Redirect creates a temporary redirect result.
func Redirect(url string) *RedirectResult {
	return &RedirectResult{URL: url}
}

// ExecuteResult implements domain.Result.
func (r *RedirectResult) ExecuteResult(ctx context.Context, pc *domain.PageContext) error {
	if pc.Response == nil {
		return errNoResponse
	}
	code := http.StatusFound
	if r.Permanent {
		code = http.StatusMovedPermanently
	}
	if pc.Request != nil {
		http.Redirect(pc.Response, pc.Request, r.URL, code)
		return nil
	}
	pc.Response.Header().Set("Location", r.URL)
	pc.Response.WriteHeader(code)
	return nil
}
