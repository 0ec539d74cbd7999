package invoker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/results"
)

func TestInvoke_ZeroFilters_HandlerResult(t *testing.T) {
	h := newHarness(nil)
	r := &recordedResult{name: "R", rec: h.rec}
	h.handler = returning(r)

	inv, err := h.invoke()
	require.NoError(t, err)

	assert.Equal(t, []string{"page:new", "result:R", "page:dispose"}, h.rec.all())
	assert.Same(t, r, inv.Result())
	assert.Nil(t, inv.Exception(), "no exception context is created")
}

func TestInvoke_NoException_FiltersNotCalled(t *testing.T) {
	h := newHarness(nil)
	h.filters = []domain.Filter{
		&asyncFilter{name: "outer", rec: h.rec},
		&syncFilter{name: "middle", rec: h.rec},
		&syncFilter{name: "inner", rec: h.rec},
	}
	h.handler = returning(&recordedResult{name: "R", rec: h.rec})

	_, err := h.invoke()
	require.NoError(t, err)

	assert.Equal(t, []string{"page:new", "result:R", "page:dispose"}, h.rec.all())
}

func TestInvoke_SyncFilterHandles(t *testing.T) {
	errE := errors.New("E")
	h := newHarness(failing(errE))

	var observed error
	h.filters = []domain.Filter{&syncFilter{name: "handler", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
		observed = exc.Exception()
		exc.Handled = true
	}}}

	inv, err := h.invoke()
	require.NoError(t, err)

	assert.Same(t, errE, observed)
	assert.Nil(t, inv.Result(), "no result is executed")
	assert.Equal(t, []string{"page:new", "sync:handler", "page:dispose"}, h.rec.all())
}

func TestInvoke_OuterAsyncSubstitutesResult(t *testing.T) {
	errE := errors.New("E")
	h := newHarness(failing(errE))
	s := &recordedResult{name: "S", rec: h.rec}

	h.filters = []domain.Filter{
		&asyncFilter{name: "outer", rec: h.rec, fn: func(ctx context.Context, exc *domain.ExceptionContext) error {
			exc.Result = s
			return nil
		}},
		&syncFilter{name: "inner", rec: h.rec},
	}

	inv, err := h.invoke()
	require.NoError(t, err, "E is not rethrown")

	assert.Equal(t, []string{"page:new", "sync:inner", "async:outer", "result:S", "page:dispose"}, h.rec.all())
	assert.Equal(t, 1, h.rec.count("result:S"))
	assert.Same(t, s, inv.Result())
}

func TestInvoke_NoHandler_RendersPageView(t *testing.T) {
	h := newHarness(nil)

	inv, err := h.invoke()
	require.NoError(t, err)

	view, ok := inv.Result().(*results.PageViewResult)
	require.True(t, ok, "default result is a page view")
	require.Len(t, h.pages, 1)
	assert.Same(t, h.pages[0], view.Page)
	assert.Equal(t, "<p>*invoker_test.testPage</p>", h.response.Body.String())
	assert.Equal(t, results.DefaultPageContentType, h.response.Header().Get("Content-Type"))
}

func TestInvoke_HandlerReturnsNil_RendersPageView(t *testing.T) {
	h := newHarness(returning(nil))

	inv, err := h.invoke()
	require.NoError(t, err)
	assert.IsType(t, &results.PageViewResult{}, inv.Result())
}

func TestInvoke_UnhandledErrorKeepsIdentity(t *testing.T) {
	errE := errors.New("E")
	h := newHarness(failing(errE))
	h.filters = []domain.Filter{
		&syncFilter{name: "outer", rec: h.rec},
		&asyncFilter{name: "inner", rec: h.rec},
	}

	_, err := h.invoke()
	assert.Same(t, errE, err, "the original error value is rethrown")
	assert.Equal(t, []string{"page:new", "async:inner", "sync:outer", "page:dispose"}, h.rec.all())
}

func TestInvoke_UnhandledError_NoFilters(t *testing.T) {
	errE := errors.New("E")
	h := newHarness(failing(errE))

	_, err := h.invoke()
	assert.Same(t, errE, err)
	assert.Equal(t, 1, h.rec.count("page:dispose"))
}

func TestInvoke_PanicRethrownWithOriginalStack(t *testing.T) {
	h := newHarness(panicking())

	var observed error
	h.filters = []domain.Filter{&syncFilter{name: "observer", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
		observed = exc.Exception()
	}}}

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_, _ = h.invoke()
	}()

	pe, ok := recovered.(*domain.PanicError)
	require.True(t, ok, "captured panics are re-raised as *PanicError, got %T", recovered)
	assert.Equal(t, "boom", pe.Value)
	assert.Contains(t, string(pe.Stack), "invoker_test.explode", "stack points at the panic site")
	assert.Same(t, pe, observed, "filters observe the same capture that is re-raised")
	assert.Equal(t, 1, h.rec.count("page:dispose"))
}

func TestInvoke_PanicWithoutFiltersPropagatesUntouched(t *testing.T) {
	h := newHarness(panicking())

	var after int
	h.opts = append(h.opts, withAfterAction(func() { after++ }))

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = h.invoke()
	})
	assert.Equal(t, 1, h.rec.count("page:dispose"))
	assert.Equal(t, 1, after)
}

func TestInvoke_InnermostFirst_HandledStopsUnwinding(t *testing.T) {
	errE := errors.New("E")
	h := newHarness(failing(errE))
	h.filters = []domain.Filter{
		&syncFilter{name: "outer", rec: h.rec},
		&asyncFilter{name: "middle", rec: h.rec},
		&syncFilter{name: "inner", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
			exc.Handled = true
		}},
	}

	_, err := h.invoke()
	require.NoError(t, err)
	assert.Equal(t, []string{"page:new", "sync:inner", "page:dispose"}, h.rec.all())
}

func TestInvoke_HandledWithResult_ExecutesNothing(t *testing.T) {
	h := newHarness(failing(errors.New("E")))
	h.filters = []domain.Filter{&syncFilter{name: "f", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
		exc.Result = &recordedResult{name: "S", rec: h.rec}
		exc.Handled = true
	}}}

	_, err := h.invoke()
	require.NoError(t, err)
	assert.Zero(t, h.rec.count("result:S"))
}

func TestInvoke_ClearedException_CompletesWithoutRethrow(t *testing.T) {
	h := newHarness(failing(errors.New("E")))
	h.filters = []domain.Filter{
		&syncFilter{name: "outer", rec: h.rec},
		&syncFilter{name: "inner", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
			exc.SetException(nil)
		}},
	}

	_, err := h.invoke()
	require.NoError(t, err)
	assert.Zero(t, h.rec.count("sync:outer"), "a cleared exception is not observed further out")
}

func TestInvoke_ReplacedException_IsRethrown(t *testing.T) {
	errOther := errors.New("other")
	h := newHarness(failing(errors.New("E")))
	h.filters = []domain.Filter{&syncFilter{name: "f", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
		exc.SetException(errOther)
	}}}

	_, err := h.invoke()
	assert.Same(t, errOther, err)
}

func TestInvoke_InnerFilterFailure_CapturedByOuter(t *testing.T) {
	errE := errors.New("E")
	h := newHarness(failing(errE))

	var observed error
	h.filters = []domain.Filter{
		&syncFilter{name: "outer", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
			observed = exc.Exception()
			exc.Handled = true
		}},
		&syncFilter{name: "inner", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
			panic("inner failed")
		}},
	}

	_, err := h.invoke()
	require.NoError(t, err)

	var pe *domain.PanicError
	require.ErrorAs(t, observed, &pe)
	assert.Equal(t, "inner failed", pe.Value)
}

func TestInvoke_OutermostFilterFailurePropagates(t *testing.T) {
	errFilter := errors.New("journal down")
	h := newHarness(failing(errors.New("E")))
	h.filters = []domain.Filter{&asyncFilter{name: "outer", rec: h.rec, fn: func(ctx context.Context, exc *domain.ExceptionContext) error {
		return errFilter
	}}}

	_, err := h.invoke()
	assert.Same(t, errFilter, err)
	assert.Equal(t, 1, h.rec.count("page:dispose"))
}

func TestInvoke_ResultFailureIsCaptured(t *testing.T) {
	errResult := errors.New("render failed")
	h := newHarness(nil)
	h.handler = returning(&recordedResult{name: "R", rec: h.rec, err: errResult})

	var observed error
	h.filters = []domain.Filter{&syncFilter{name: "f", rec: h.rec, fn: func(exc *domain.ExceptionContext) {
		observed = exc.Exception()
		exc.Handled = true
	}}}

	_, err := h.invoke()
	require.NoError(t, err)
	assert.Same(t, errResult, observed)
	assert.Equal(t, 1, h.rec.count("result:R"))
}

func TestInvoke_PageFactoryFailure_NoDispose(t *testing.T) {
	errFactory := errors.New("no page")
	h := newHarness(nil)
	h.pageErr = errFactory

	_, err := h.invoke()
	assert.Same(t, errFactory, err)
	assert.Zero(t, h.rec.count("page:dispose"))
}

func TestInvoke_NilPage(t *testing.T) {
	h := newHarness(nil)
	h.nilPage = true

	_, err := h.invoke()
	assert.ErrorIs(t, err, domain.ErrNilPage)
	assert.Zero(t, h.rec.count("page:dispose"))
}

func TestInvoke_NilModel(t *testing.T) {
	h := newHarness(nil).withModel()
	h.entry.ModelFactory = func(pc *domain.PageContext) (any, error) {
		h.rec.add("model:new")
		return nil, nil
	}

	_, err := h.invoke()
	assert.ErrorIs(t, err, domain.ErrNilModel)
	assert.Zero(t, h.rec.count("model:dispose"))
	assert.Equal(t, 1, h.rec.count("page:dispose"))
}

func TestInvoke_DistinctModel(t *testing.T) {
	var seen any
	h := newHarness(func(ctx context.Context, page domain.Page, model any) (domain.Result, error) {
		seen = model
		return nil, nil
	}).withModel()

	inv, pc := h.newInvoker()
	require.NoError(t, inv.Invoke(context.Background()))

	require.IsType(t, &testModel{}, seen)
	assert.Same(t, seen, pc.ViewData.Model)
	assert.Same(t, h.pages[0], pc.Page)
	assert.Equal(t, []string{"page:new", "model:new", "model:dispose", "page:dispose"}, h.rec.all())
	assert.Equal(t, "<p>*invoker_test.testModel</p>", h.response.Body.String())
}

func TestInvoke_PageIsItsOwnModel(t *testing.T) {
	var seen any
	h := newHarness(func(ctx context.Context, page domain.Page, model any) (domain.Result, error) {
		seen = model
		return nil, nil
	})

	inv, pc := h.newInvoker()
	require.NoError(t, inv.Invoke(context.Background()))
	assert.Same(t, h.pages[0], seen)
	assert.Same(t, h.pages[0], pc.ViewData.Model)
}

type stageFilter struct{}

func TestInvoke_UnsupportedFilterFailsFast(t *testing.T) {
	h := newHarness(nil)
	h.filters = []domain.Filter{stageFilter{}}

	_, err := h.invoke()

	var unsupported *domain.UnsupportedFilterError
	require.ErrorAs(t, err, &unsupported)
	assert.ErrorIs(t, err, domain.ErrStageNotImplemented)
	assert.Empty(t, h.rec.all(), "the page is never built")
}

type dualFilter struct {
	rec *recorder
}

func (f *dualFilter) OnException(exc *domain.ExceptionContext) {
	f.rec.add("dual:sync")
}

func (f *dualFilter) OnExceptionAsync(ctx context.Context, exc *domain.ExceptionContext) error {
	f.rec.add("dual:async")
	exc.Handled = true
	return nil
}

func TestInvoke_DualCapabilityDispatchedAsync(t *testing.T) {
	h := newHarness(failing(errors.New("E")))
	h.filters = []domain.Filter{&dualFilter{rec: h.rec}}

	_, err := h.invoke()
	require.NoError(t, err)
	assert.Equal(t, 1, h.rec.count("dual:async"))
	assert.Zero(t, h.rec.count("dual:sync"))
}

type ctxKey struct{}

func TestInvoke_AsyncFilterReceivesContext(t *testing.T) {
	h := newHarness(failing(errors.New("E")))

	var got any
	h.filters = []domain.Filter{&asyncFilter{name: "f", rec: h.rec, fn: func(ctx context.Context, exc *domain.ExceptionContext) error {
		got = ctx.Value(ctxKey{})
		exc.Handled = true
		return nil
	}}}

	inv, _ := h.newInvoker()
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-scoped")
	require.NoError(t, inv.Invoke(ctx))
	assert.Equal(t, "request-scoped", got)
}
