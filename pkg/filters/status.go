package filters

import (
	"errors"
	"net/http"

	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/results"
)

// StatusCoder is implemented by errors that carry their own HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Mapping maps errors matching Err (errors.Is) to Status.
type Mapping struct {
	Err    error
	Status int
}

// StatusCode turns exceptions into problem responses.
// It supplies a substitute Result and leaves the exception unhandled, so
// filters further out still observe it.
type StatusCode struct {
	mappings []Mapping

	// ExposeInternal includes the error text in 5xx problem details.
	ExposeInternal bool
}

// NewStatusCode creates the filter. ErrPageNotFound maps to 404 unless overridden.
func NewStatusCode(mappings ...Mapping) *StatusCode {
	all := append([]Mapping(nil), mappings...)
	all = append(all, Mapping{Err: domain.ErrPageNotFound, Status: http.StatusNotFound})
	return &StatusCode{mappings: all}
}

func (f *StatusCode) Name() string { return "status_code" }

func (f *StatusCode) OnException(exc *domain.ExceptionContext) {
	err := exc.Exception()
	status := f.Status(err)

	detail := err.Error()
	if status >= http.StatusInternalServerError && !f.ExposeInternal {
		detail = ""
	}
	exc.Result = results.NewProblem(status, detail)
}

// Status returns the HTTP status for err.
func (f *StatusCode) Status(err error) int {
	var pe *domain.PanicError
	if errors.As(err, &pe) && pe.Unwrap() == nil {
		return http.StatusInternalServerError
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		if code := coder.StatusCode(); code > 0 {
			return code
		}
	}
	for _, m := range f.mappings {
		if errors.Is(err, m.Err) {
			return m.Status
		}
	}
	return http.StatusInternalServerError
}
