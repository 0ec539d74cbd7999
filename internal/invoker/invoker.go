package invoker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/cache"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/ports"
)

// Option configures an Invoker.
type Option func(*Invoker)

// WithHooks sets the diagnostics sink.
func WithHooks(hooks domain.DiagnosticHooks) Option {
	return func(inv *Invoker) {
		inv.hooks = hooks
	}
}

// WithLogger sets the logger. It is scoped to the page on Invoke.
func WithLogger(logger *slog.Logger) Option {
	return func(inv *Invoker) {
		if logger != nil {
			inv.logger = logger
		}
	}
}

// Invoker runs one invocation. It is not safe for concurrent use and must not
// be reused.
type Invoker struct {
	entry     *cache.Entry
	selector  ports.HandlerSelector
	executors ports.ExecutorFactory
	pc        *domain.PageContext

	hooks  domain.DiagnosticHooks
	logger *slog.Logger

	filters []domain.Filter
	cursor  cursor
	m       machine
	exc     *domain.ExceptionContext

	page      domain.Page
	model     any
	ownsModel bool
	result    domain.Result
}

// New creates the invoker of pc. The filter list is the one fixed on pc.
func New(entry *cache.Entry, selector ports.HandlerSelector, executors ports.ExecutorFactory, pc *domain.PageContext, opts ...Option) *Invoker {
	filters := pc.Filters()
	inv := &Invoker{
		entry:     entry,
		selector:  selector,
		executors: executors,
		pc:        pc,
		logger:    logging.NewNop(),
		filters:   filters,
		cursor:    cursor{filters: filters},
		m:         machine{next: StateInvokeBegin, scope: ScopeInvoker},
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Result returns the Result executed by the invocation, if any.
func (inv *Invoker) Result() domain.Result {
	return inv.result
}

// Exception returns the last captured exception context, if any.
func (inv *Invoker) Exception() *domain.ExceptionContext {
	return inv.exc
}

// Invoke runs the pipeline to completion.
//
// An unhandled error is returned as the very value that was raised. An
// unhandled panic continues as a panic; when it was captured by a filter it is
// re-raised as the original *domain.PanicError.
func (inv *Invoker) Invoke(ctx context.Context) error {
	desc := inv.pc.ActionDescriptor
	begin := time.Now()

	defer func() {
		if inv.hooks.OnAfterAction != nil {
			inv.hooks.OnAfterAction(ctx, inv.actionEvent(domain.EventAfterAction, time.Since(begin)))
		}
	}()
	if inv.hooks.OnBeforeAction != nil {
		inv.hooks.OnBeforeAction(ctx, inv.actionEvent(domain.EventBeforeAction, 0))
	}

	inv.logger = logging.PageScope(inv.logger, desc, inv.pc.InvocationID)
	logging.ExecutingPage(ctx, inv.logger, desc)

	var start time.Time
	if inv.logger.Enabled(ctx, slog.LevelInfo) {
		start = begin
	}

	defer func() {
		inv.dispose()
		logging.ExecutedPage(ctx, inv.logger, desc, start)
	}()

	for !inv.m.completed {
		if err := inv.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (inv *Invoker) dispose() {
	if inv.ownsModel && inv.entry.ModelDisposer != nil {
		inv.entry.ModelDisposer(inv.pc, inv.model)
	}
	if inv.page != nil && inv.entry.PageDisposer != nil {
		inv.entry.PageDisposer(inv.pc, inv.page)
	}
}

// step runs exactly one state and stores the next one.
func (inv *Invoker) step(ctx context.Context) error {
	m := &inv.m

	switch m.next {
	case StateInvokeBegin:
		for _, f := range inv.filters {
			if !domain.IsSupportedFilter(f) {
				return &domain.UnsupportedFilterError{Filter: f}
			}
		}
		m.next = StateExceptionBegin

	case StateExceptionBegin:
		inv.cursor.Reset()
		m.next = StateExceptionNext

	case StateExceptionNext:
		async, sync := inv.cursor.NextExceptionFilter()
		switch {
		case async != nil:
			m.current = async
			m.next = StateExceptionAsyncBegin
		case sync != nil:
			m.current = sync
			m.next = StateExceptionSyncBegin
		case m.scope == ScopeException:
			// Every exception filter is entered, run the page inside them.
			m.next = StateExceptionInside
		default:
			// No exception filters at all.
			m.next = StatePageBegin
		}

	case StateExceptionAsyncBegin:
		m.enter(StateExceptionAsyncResume)

	case StateExceptionAsyncResume:
		filter := m.current.(domain.AsyncExceptionFilter)
		if !inv.exc.Unhandled() {
			m.next = StateExceptionEnd
			break
		}
		inv.fireFilter(ctx, inv.hooks.OnBeforeExceptionAsync, domain.EventBeforeOnExceptionAsync, filter)
		exc := inv.exc
		captured, err := inv.guard(func() error {
			return filter.OnExceptionAsync(ctx, exc)
		})
		if err != nil || captured {
			return err
		}
		m.next = StateExceptionAsyncEnd

	case StateExceptionAsyncEnd:
		filter := m.current
		inv.fireFilter(ctx, inv.hooks.OnAfterExceptionAsync, domain.EventAfterOnExceptionAsync, filter)
		if !inv.exc.Unhandled() {
			logging.ExceptionFilterShortCircuited(ctx, inv.logger, filter)
		}
		m.next = StateExceptionEnd

	case StateExceptionSyncBegin:
		m.enter(StateExceptionSyncEnd)

	case StateExceptionSyncEnd:
		filter := m.current.(domain.ExceptionFilter)
		m.next = StateExceptionEnd
		if !inv.exc.Unhandled() {
			break
		}
		inv.fireFilter(ctx, inv.hooks.OnBeforeException, domain.EventBeforeOnException, filter)
		exc := inv.exc
		captured, err := inv.guard(func() error {
			filter.OnException(exc)
			return nil
		})
		if err != nil || captured {
			return err
		}
		inv.fireFilter(ctx, inv.hooks.OnAfterException, domain.EventAfterOnException, filter)
		if !inv.exc.Unhandled() {
			logging.ExceptionFilterShortCircuited(ctx, inv.logger, filter)
		}

	case StateExceptionInside:
		m.next = StatePageBegin

	case StateExceptionShortCircuit:
		result := inv.exc.Result
		inv.result = result
		m.next = StateInvokeEnd
		if err := result.ExecuteResult(ctx, inv.pc); err != nil {
			return err
		}

	case StateExceptionEnd:
		if m.scope == ScopeException {
			m.leave()
			break
		}
		if exc := inv.exc; exc != nil {
			if exc.Result != nil && !exc.Handled {
				m.next = StateExceptionShortCircuit
				break
			}
			if err := exc.Rethrow(); err != nil {
				return err
			}
		}
		m.next = StateInvokeEnd

	case StatePageBegin:
		inv.cursor.Reset()
		captured, err := inv.guard(func() error {
			return inv.executePage(ctx)
		})
		if err != nil || captured {
			return err
		}
		m.next = StatePageEnd

	case StatePageEnd:
		if m.scope == ScopeException {
			// Let the entered filters unwind.
			m.leave()
			break
		}
		m.next = StateInvokeEnd

	case StateInvokeEnd:
		m.completed = true

	default:
		return fmt.Errorf("%w: %v", domain.ErrInvalidPipelineState, m.next)
	}
	return nil
}

// guard runs fn. Outside any entered filter the failure of fn is returned or
// keeps panicking. Inside one it is captured, the innermost filter is resumed
// and captured reports true.
func (inv *Invoker) guard(fn func() error) (captured bool, err error) {
	if len(inv.m.frames) == 0 {
		return false, fn()
	}
	if err := capture(fn); err != nil {
		inv.exc = domain.NewExceptionContext(inv.pc, err)
		inv.m.leave()
		return true, nil
	}
	return false, nil
}

func capture(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewPanicError(r, debug.Stack())
		}
	}()
	return fn()
}

func (inv *Invoker) actionEvent(typ domain.EventType, elapsed time.Duration) *domain.ActionEvent {
	return &domain.ActionEvent{
		EventBase: domain.EventBase{
			Timestamp:    time.Now(),
			Type:         typ,
			InvocationID: inv.pc.InvocationID,
		},
		Descriptor: inv.pc.ActionDescriptor,
		Request:    inv.pc.Request,
		RouteData:  inv.pc.RouteData,
		Elapsed:    elapsed,
	}
}

func (inv *Invoker) fireFilter(ctx context.Context, hook func(context.Context, *domain.FilterEvent), typ domain.EventType, filter domain.Filter) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.FilterEvent{
		EventBase: domain.EventBase{
			Timestamp:    time.Now(),
			Type:         typ,
			InvocationID: inv.pc.InvocationID,
		},
		Exception: inv.exc,
		Filter:    filter,
	})
}
