package invoker_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"

	"github.com/aretw0/pageflow/internal/invoker"
	"github.com/aretw0/pageflow/pkg/cache"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/ports"
)

// recorder collects an ordered trace of what an invocation did.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.all() {
		if e == event {
			n++
		}
	}
	return n
}

type testPage struct {
	domain.PageBase
}

func (p *testPage) RenderView(ctx context.Context, w io.Writer, data *domain.ViewData) error {
	_, err := fmt.Fprintf(w, "<p>%T</p>", data.Model)
	return err
}

type testModel struct {
	Name string
}

type recordedResult struct {
	name string
	rec  *recorder
	err  error
}

func (r *recordedResult) ExecuteResult(ctx context.Context, pc *domain.PageContext) error {
	r.rec.add("result:%s", r.name)
	return r.err
}

type syncFilter struct {
	name string
	rec  *recorder
	fn   func(exc *domain.ExceptionContext)
}

func (f *syncFilter) Name() string { return f.name }

func (f *syncFilter) OnException(exc *domain.ExceptionContext) {
	f.rec.add("sync:%s", f.name)
	if f.fn != nil {
		f.fn(exc)
	}
}

type asyncFilter struct {
	name string
	rec  *recorder
	fn   func(ctx context.Context, exc *domain.ExceptionContext) error
}

func (f *asyncFilter) Name() string { return f.name }

func (f *asyncFilter) OnExceptionAsync(ctx context.Context, exc *domain.ExceptionContext) error {
	f.rec.add("async:%s", f.name)
	if f.fn != nil {
		return f.fn(ctx, exc)
	}
	return nil
}

type executors struct {
	exec domain.HandlerExecutor
}

func (e executors) Create(*domain.HandlerMethod) (domain.HandlerExecutor, error) {
	return e.exec, nil
}

var getHandler = &domain.HandlerMethod{HTTPMethod: http.MethodGet}

// harness wires a page, a handler and filters into a ready-to-run invocation.
type harness struct {
	rec      *recorder
	desc     *domain.ActionDescriptor
	entry    *cache.Entry
	handler  domain.HandlerExecutor
	filters  []domain.Filter
	response *httptest.ResponseRecorder
	opts     []invoker.Option

	mu    sync.Mutex
	pages []*testPage

	pageErr error
	nilPage bool
}

func newHarness(handler domain.HandlerExecutor, filters ...domain.Filter) *harness {
	h := &harness{
		rec:     &recorder{},
		handler: handler,
		filters: filters,
		desc: &domain.ActionDescriptor{
			ID:            "test",
			DisplayName:   "test (/test)",
			RouteTemplate: "/test",
			PageType:      reflect.TypeFor[*testPage](),
		},
	}
	h.entry = &cache.Entry{
		ActionDescriptor: h.desc,
		PageFactory: func(pc *domain.PageContext) (domain.Page, error) {
			h.rec.add("page:new")
			if h.nilPage {
				return nil, nil
			}
			if h.pageErr != nil {
				return nil, h.pageErr
			}
			p := &testPage{}
			p.SetPageContext(pc)
			h.mu.Lock()
			h.pages = append(h.pages, p)
			h.mu.Unlock()
			return p, nil
		},
		PageDisposer: func(pc *domain.PageContext, page domain.Page) {
			h.rec.add("page:dispose")
		},
		FilterProvider: func(*domain.PageContext) []domain.Filter {
			return h.filters
		},
	}
	return h
}

func (h *harness) withModel() *harness {
	h.desc.ModelType = reflect.TypeFor[*testModel]()
	h.entry.ModelFactory = func(pc *domain.PageContext) (any, error) {
		h.rec.add("model:new")
		return &testModel{Name: "m"}, nil
	}
	h.entry.ModelDisposer = func(pc *domain.PageContext, model any) {
		h.rec.add("model:dispose")
	}
	return h
}

func (h *harness) newInvoker() (*invoker.Invoker, *domain.PageContext) {
	h.response = httptest.NewRecorder()
	return h.build(domain.ActionContext{
		ActionDescriptor: h.desc,
		Request:          httptest.NewRequest(http.MethodGet, "/test", nil),
		Response:         h.response,
		InvocationID:     "inv-1",
	})
}

// newInvokerFor builds an invocation with its own response, safe to run concurrently.
func (h *harness) newInvokerFor(invocationID string, fail bool) (*invoker.Invoker, *domain.PageContext) {
	route := domain.RouteData{}
	if fail {
		route["fail"] = "yes"
	}
	return h.build(domain.ActionContext{
		ActionDescriptor: h.desc,
		Request:          httptest.NewRequest(http.MethodGet, "/test", nil),
		Response:         httptest.NewRecorder(),
		RouteData:        route,
		InvocationID:     invocationID,
	})
}

func (h *harness) build(action domain.ActionContext) (*invoker.Invoker, *domain.PageContext) {
	pc := domain.NewPageContext(action, h.entry.FilterProvider)

	selector := ports.SelectorFunc(func(*domain.PageContext) *domain.HandlerMethod {
		if h.handler == nil {
			return nil
		}
		return getHandler
	})
	return invoker.New(h.entry, selector, executors{exec: h.handler}, pc, h.opts...), pc
}

func (h *harness) invoke() (*invoker.Invoker, error) {
	inv, _ := h.newInvoker()
	return inv, inv.Invoke(context.Background())
}

func returning(result domain.Result) domain.HandlerExecutor {
	return func(ctx context.Context, page domain.Page, model any) (domain.Result, error) {
		return result, nil
	}
}

func failing(err error) domain.HandlerExecutor {
	return func(ctx context.Context, page domain.Page, model any) (domain.Result, error) {
		return nil, err
	}
}

//go:noinline
func explode() {
	panic("boom")
}

func panicking() domain.HandlerExecutor {
	return func(ctx context.Context, page domain.Page, model any) (domain.Result, error) {
		explode()
		return nil, nil
	}
}
