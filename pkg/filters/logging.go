package filters

import (
	"errors"
	"log/slog"

	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/domain"
)

// Logging reports every exception it observes and leaves it untouched.
type Logging struct {
	logger *slog.Logger
}

// NewLogging creates a logging filter writing to logger. A nil logger discards.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Logging{logger: logger}
}

func (f *Logging) Name() string { return "logging" }

func (f *Logging) OnException(exc *domain.ExceptionContext) {
	attrs := []any{"err", exc.Exception(), "invocation_id", exc.InvocationID}
	if desc := exc.ActionDescriptor; desc != nil {
		attrs = append(attrs, "page", desc.DisplayName)
	}

	var pe *domain.PanicError
	if errors.As(exc.Exception(), &pe) {
		attrs = append(attrs, "stack", string(pe.Stack))
		f.logger.Error("Page panicked", attrs...)
		return
	}
	f.logger.Error("Page failed", attrs...)
}
