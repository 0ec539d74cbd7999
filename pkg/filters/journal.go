package filters

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/aretw0/pageflow/pkg/ports"
)

// Journal records exceptions to an error journal and leaves them untouched.
// A journal failure is logged; the original exception keeps unwinding.
type Journal struct {
	journal ports.ErrorJournal
	logger  *slog.Logger
}

// NewJournal creates a journaling filter. A nil logger discards journal failures.
func NewJournal(journal ports.ErrorJournal, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Journal{journal: journal, logger: logger}
}

func (f *Journal) Name() string { return "journal" }

func (f *Journal) OnExceptionAsync(ctx context.Context, exc *domain.ExceptionContext) error {
	rec := NewErrorRecord(exc)
	if err := f.journal.Record(ctx, rec); err != nil {
		f.logger.WarnContext(ctx, "Failed to journal page error", "err", err, "invocation_id", rec.InvocationID)
	}
	return nil
}

// NewErrorRecord describes the exception of exc.
func NewErrorRecord(exc *domain.ExceptionContext) domain.ErrorRecord {
	rec := domain.ErrorRecord{
		Timestamp:    time.Now().UTC(),
		InvocationID: exc.InvocationID,
	}
	if err := exc.Exception(); err != nil {
		rec.Error = err.Error()
		var pe *domain.PanicError
		if errors.As(err, &pe) {
			rec.Panic = true
			rec.Stack = string(pe.Stack)
		}
	}
	if desc := exc.ActionDescriptor; desc != nil {
		rec.Page = desc.ID
		rec.Route = desc.RouteTemplate
	}
	if r := exc.Request; r != nil {
		rec.Method = r.Method
		if r.URL != nil {
			rec.Path = r.URL.Path
		}
	}
	return rec
}
