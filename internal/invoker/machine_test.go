package invoker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pageflow/pkg/cache"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/ports"
)

type plainSync struct{}

func (plainSync) OnException(*domain.ExceptionContext) {}

type plainAsync struct{}

func (plainAsync) OnExceptionAsync(context.Context, *domain.ExceptionContext) error { return nil }

func TestCursor_WalksExceptionFilters(t *testing.T) {
	c := cursor{filters: []domain.Filter{plainSync{}, struct{}{}, plainAsync{}}}

	async, sync := c.NextExceptionFilter()
	assert.Nil(t, async)
	assert.NotNil(t, sync)

	async, sync = c.NextExceptionFilter()
	assert.NotNil(t, async, "filters without an exception capability are skipped")
	assert.Nil(t, sync)

	async, sync = c.NextExceptionFilter()
	assert.Nil(t, async)
	assert.Nil(t, sync)

	c.Reset()
	_, sync = c.NextExceptionFilter()
	assert.NotNil(t, sync)
}

func TestMachine_EnterLeave(t *testing.T) {
	m := machine{next: StateExceptionNext, scope: ScopeInvoker}

	m.current = "outer"
	m.enter(StateExceptionSyncEnd)
	m.current = "inner"
	m.enter(StateExceptionAsyncResume)
	assert.Equal(t, ScopeException, m.scope)
	assert.Equal(t, StateExceptionNext, m.next)
	require.Len(t, m.frames, 2)

	m.leave()
	assert.Equal(t, "inner", m.current)
	assert.Equal(t, StateExceptionAsyncResume, m.next)
	assert.Equal(t, ScopeException, m.scope)

	m.leave()
	assert.Equal(t, "outer", m.current)
	assert.Equal(t, StateExceptionSyncEnd, m.next)
	assert.Equal(t, ScopeInvoker, m.scope)
	assert.Empty(t, m.frames)
}

func TestInvoker_InvalidState(t *testing.T) {
	desc := &domain.ActionDescriptor{ID: "p", DisplayName: "p (/p)", RouteTemplate: "/p"}
	pc := domain.NewPageContext(domain.ActionContext{ActionDescriptor: desc}, nil)
	selector := ports.SelectorFunc(func(*domain.PageContext) *domain.HandlerMethod { return nil })

	inv := New(&cache.Entry{ActionDescriptor: desc}, selector, nil, pc)
	inv.m.next = State(99)

	err := inv.Invoke(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidPipelineState)
	assert.Contains(t, err.Error(), "Unknown")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "InvokeBegin", StateInvokeBegin.String())
	assert.Equal(t, "ExceptionShortCircuit", StateExceptionShortCircuit.String())
	assert.Equal(t, "InvokeEnd", StateInvokeEnd.String())
	assert.Equal(t, "Exception", ScopeException.String())
	assert.Equal(t, "Invoker", ScopeInvoker.String())
}
