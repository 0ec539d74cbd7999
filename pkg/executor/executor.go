// Package executor builds handler executors from reflected handler methods.
//
// Supported handler signatures, on any receiver:
//
//	func()
//	func() error
//	func() R
//	func() (R, error)
//
// Each may also take a single context.Context parameter. R is any type
// implementing domain.Result.
package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/aretw0/pageflow/pkg/domain"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	resultType  = reflect.TypeFor[domain.Result]()
)

type shape struct {
	withContext   bool
	returnsResult bool
	returnsError  bool
}

// Validate reports whether m has a supported handler signature.
func Validate(m reflect.Method) error {
	_, err := analyze(m)
	return err
}

func analyze(m reflect.Method) (shape, error) {
	var s shape
	mt := m.Type

	// In(0) is the receiver.
	switch mt.NumIn() {
	case 1:
	case 2:
		if mt.In(1) != contextType {
			return s, fmt.Errorf("%w: %s: parameter must be context.Context, got %s", domain.ErrUnsupportedHandler, m.Name, mt.In(1))
		}
		s.withContext = true
	default:
		return s, fmt.Errorf("%w: %s: too many parameters", domain.ErrUnsupportedHandler, m.Name)
	}

	switch mt.NumOut() {
	case 0:
	case 1:
		switch out := mt.Out(0); {
		case out == errorType:
			s.returnsError = true
		case out.Implements(resultType):
			s.returnsResult = true
		default:
			return s, fmt.Errorf("%w: %s: return type %s is neither error nor a Result", domain.ErrUnsupportedHandler, m.Name, out)
		}
	case 2:
		if !mt.Out(0).Implements(resultType) || mt.Out(1) != errorType {
			return s, fmt.Errorf("%w: %s: expected (Result, error) returns", domain.ErrUnsupportedHandler, m.Name)
		}
		s.returnsResult, s.returnsError = true, true
	default:
		return s, fmt.Errorf("%w: %s: too many return values", domain.ErrUnsupportedHandler, m.Name)
	}
	return s, nil
}

// Build creates the executor for a handler method.
// The executor calls the handler on the model, or on the page when model is nil.
// Errors returned by the handler are passed through unchanged.
func Build(h *domain.HandlerMethod) (domain.HandlerExecutor, error) {
	s, err := analyze(h.Method)
	if err != nil {
		return nil, err
	}

	fn := h.Method.Func
	receiverType := h.Method.Type.In(0)

	return func(ctx context.Context, page domain.Page, model any) (domain.Result, error) {
		target := model
		if target == nil {
			target = page
		}
		recv := reflect.ValueOf(target)
		if !recv.IsValid() || !recv.Type().AssignableTo(receiverType) {
			return nil, fmt.Errorf("%w: %s expects receiver %s, got %T", domain.ErrUnsupportedHandler, h.Method.Name, receiverType, target)
		}

		args := []reflect.Value{recv}
		if s.withContext {
			args = append(args, reflect.ValueOf(&ctx).Elem())
		}
		out := fn.Call(args)

		var (
			result domain.Result
			outErr error
		)
		switch {
		case s.returnsResult && s.returnsError:
			result, outErr = toResult(out[0]), toError(out[1])
		case s.returnsResult:
			result = toResult(out[0])
		case s.returnsError:
			outErr = toError(out[0])
		}
		if outErr != nil {
			return nil, outErr
		}
		return result, nil
	}, nil
}

func toResult(v reflect.Value) domain.Result {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface().(domain.Result)
}

func toError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

// Factory creates executors and caches them per handler method.
// Safe for concurrent use.
type Factory struct {
	executors sync.Map
}

// NewFactory creates an empty executor factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the executor for h, building it on first use.
func (f *Factory) Create(h *domain.HandlerMethod) (domain.HandlerExecutor, error) {
	if cached, ok := f.executors.Load(h); ok {
		return cached.(domain.HandlerExecutor), nil
	}
	exec, err := Build(h)
	if err != nil {
		return nil, err
	}
	actual, _ := f.executors.LoadOrStore(h, exec)
	return actual.(domain.HandlerExecutor), nil
}
