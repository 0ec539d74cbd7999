package invoker_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pageflow/pkg/domain"
)

func stackDepth() int {
	pcs := make([]uintptr, 4096)
	return runtime.Callers(0, pcs)
}

func TestInvoke_DeepFilterChainStaysFlat(t *testing.T) {
	const depth = 2000
	errE := errors.New("E")
	h := newHarness(failing(errE))

	var depths []int
	for i := 0; i < depth; i++ {
		h.filters = append(h.filters, &syncFilter{name: fmt.Sprintf("f%d", i), rec: h.rec, fn: func(*domain.ExceptionContext) {
			depths = append(depths, stackDepth())
		}})
	}

	_, err := h.invoke()
	assert.Same(t, errE, err)
	require.Len(t, depths, depth, "every filter observes the error exactly once")

	lo, hi := depths[0], depths[0]
	for _, d := range depths {
		lo, hi = min(lo, d), max(hi, d)
	}
	assert.LessOrEqual(t, hi-lo, 2, "the call stack does not grow with the filter chain")
}

func TestInvoke_ConcurrentInvocationsAreIsolated(t *testing.T) {
	defer leaktest.CheckTimeout(t, 5*time.Second)()

	errE := errors.New("E")
	h := newHarness(nil)
	h.handler = func(ctx context.Context, page domain.Page, model any) (domain.Result, error) {
		if page.PageContext().RouteData.Get("fail") == "yes" {
			return nil, errE
		}
		return nil, nil
	}

	var handled sync.Map
	h.filters = []domain.Filter{&asyncFilter{name: "f", rec: h.rec, fn: func(ctx context.Context, exc *domain.ExceptionContext) error {
		handled.Store(exc.InvocationID, exc.Exception())
		exc.Handled = true
		return nil
	}}}

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inv, pc := h.newInvokerFor(fmt.Sprintf("inv-%d", i), i%2 == 0)
			if err := inv.Invoke(context.Background()); err != nil {
				errs <- err
				return
			}
			if pc.Page == nil {
				errs <- fmt.Errorf("invocation %d built no page", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, n, h.rec.count("page:dispose"))

	count := 0
	handled.Range(func(key, value any) bool {
		count++
		assert.Same(t, errE, value)
		return true
	})
	assert.Equal(t, n/2, count)
}
