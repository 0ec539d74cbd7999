package ports

import (
	"context"

	"github.com/aretw0/pageflow/pkg/domain"
)

// ErrorJournal persists reports of errors that reached the exception filters.
type ErrorJournal interface {
	// Record appends a report.
	Record(ctx context.Context, record domain.ErrorRecord) error

	// Recent returns up to limit reports, newest first.
	Recent(ctx context.Context, limit int) ([]domain.ErrorRecord, error)
}
