package pageflow_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pageflow"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/filters"
	"github.com/aretw0/pageflow/pkg/registry"
	"github.com/aretw0/pageflow/pkg/results"
)

type idPage struct {
	domain.PageBase
}

func (p *idPage) OnGet() *results.ContentResult {
	return results.Content(p.PageContext().InvocationID)
}

func invokeGet(t *testing.T, eng *pageflow.Engine, desc *domain.ActionDescriptor, id string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	err := eng.Invoke(context.Background(), domain.ActionContext{
		ActionDescriptor: desc,
		Request:          req,
		Response:         rec,
		InvocationID:     id,
	})
	return rec, err
}

func TestEngine_InvokeAssignsInvocationID(t *testing.T) {
	eng, err := pageflow.New()
	require.NoError(t, err)
	desc, err := eng.Register(registry.Page("id", "/id", func() *idPage { return &idPage{} }))
	require.NoError(t, err)

	rec, err := invokeGet(t, eng, desc, "")
	require.NoError(t, err)
	_, err = uuid.Parse(rec.Body.String())
	assert.NoError(t, err)

	rec, err = invokeGet(t, eng, desc, "given")
	require.NoError(t, err)
	assert.Equal(t, "given", rec.Body.String())
}

func TestEngine_InvokeWithoutDescriptor(t *testing.T) {
	eng, err := pageflow.New()
	require.NoError(t, err)

	err = eng.Invoke(context.Background(), domain.ActionContext{})
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}

func TestEngine_UnregisteredDescriptor(t *testing.T) {
	eng, err := pageflow.New()
	require.NoError(t, err)

	_, err = invokeGet(t, eng, &domain.ActionDescriptor{ID: "ghost"}, "")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}

func TestEngine_LookupAndRoutes(t *testing.T) {
	reg := registry.NewRegistry()
	eng, err := pageflow.New(pageflow.WithRegistry(reg), pageflow.WithCacheSize(4))
	require.NoError(t, err)
	assert.Same(t, reg, eng.Registry())

	desc, err := eng.Register(registry.Page("id", "/id", func() *idPage { return &idPage{} }))
	require.NoError(t, err)

	got, err := eng.Lookup("id")
	require.NoError(t, err)
	assert.Same(t, desc, got)
	assert.Equal(t, []*domain.ActionDescriptor{desc}, eng.Routes())

	_, err = eng.Lookup("missing")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}

type failingPage struct {
	domain.PageBase
}

var errFailing = errors.New("failing page")

func (p *failingPage) OnGet() error { return errFailing }

func TestEngine_GlobalFiltersWrapPageFilters(t *testing.T) {
	var order []string
	record := func(name string) domain.Filter {
		return filters.Func(name, func(*domain.ExceptionContext) { order = append(order, name) })
	}

	eng, err := pageflow.New(pageflow.WithGlobalFilter(record("global"), 0))
	require.NoError(t, err)
	assert.Len(t, eng.GlobalFilters(), 1)

	desc, err := eng.Register(registry.Page("failing", "/failing", func() *failingPage { return &failingPage{} },
		registry.WithFilter(record("page"), 0),
	))
	require.NoError(t, err)

	_, err = invokeGet(t, eng, desc, "")
	assert.ErrorIs(t, err, errFailing)
	assert.Equal(t, []string{"page", "global"}, order)
}

type nilPage struct {
	domain.PageBase
}

func (p *nilPage) OnGet() {}

type closingModel struct {
	closed *int
}

func (m *closingModel) OnGet() {}

func (m *closingModel) Close() error {
	*m.closed++
	return nil
}

func TestEngine_TypedNilPage(t *testing.T) {
	eng, err := pageflow.New()
	require.NoError(t, err)
	desc, err := eng.Register(registry.Page("nil", "/nil", func() *nilPage { return nil }))
	require.NoError(t, err)

	var invokeErr error
	require.NotPanics(t, func() {
		_, invokeErr = invokeGet(t, eng, desc, "")
	})
	assert.ErrorIs(t, invokeErr, domain.ErrNilPage)
}

func TestEngine_TypedNilModel(t *testing.T) {
	eng, err := pageflow.New()
	require.NoError(t, err)
	desc, err := eng.Register(registry.Page("nil-model", "/nil-model",
		func() *nilPage { return &nilPage{} },
		registry.WithModel(func() *closingModel { return nil }),
		registry.WithBinding(),
	))
	require.NoError(t, err)

	var invokeErr error
	require.NotPanics(t, func() {
		_, invokeErr = invokeGet(t, eng, desc, "")
	})
	assert.ErrorIs(t, invokeErr, domain.ErrNilModel)
}

func TestEngine_ModelIsDisposed(t *testing.T) {
	closed := 0
	eng, err := pageflow.New()
	require.NoError(t, err)
	desc, err := eng.Register(registry.Page("model", "/model",
		func() *nilPage { return &nilPage{} },
		registry.WithModel(func() *closingModel { return &closingModel{closed: &closed} }),
	))
	require.NoError(t, err)

	_, err = invokeGet(t, eng, desc, "")
	require.ErrorIs(t, err, domain.ErrViewNotImplemented)
	assert.Equal(t, 1, closed)
}
