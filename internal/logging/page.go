package logging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/pageflow/pkg/domain"
)

// PageScope returns a logger carrying the page and invocation identity.
func PageScope(logger *slog.Logger, desc *domain.ActionDescriptor, invocationID string) *slog.Logger {
	return logger.With(
		slog.String("page", desc.DisplayName),
		slog.String("page_id", desc.ID),
		slog.String("invocation_id", invocationID),
	)
}

// ExecutingPage records the start of a page invocation.
func ExecutingPage(ctx context.Context, logger *slog.Logger, desc *domain.ActionDescriptor) {
	logger.DebugContext(ctx, "executing page", "route", desc.RouteTemplate)
}

// ExecutedPage records the completion of a page invocation.
// The elapsed time is only reported when start is set.
func ExecutedPage(ctx context.Context, logger *slog.Logger, desc *domain.ActionDescriptor, start time.Time) {
	if start.IsZero() {
		return
	}
	logger.InfoContext(ctx, "executed page",
		"route", desc.RouteTemplate,
		"elapsed_ms", float64(time.Since(start).Microseconds())/1000,
	)
}

// ExceptionFilterShortCircuited records a filter that cleared or handled the error.
func ExceptionFilterShortCircuited(ctx context.Context, logger *slog.Logger, filter domain.Filter) {
	logger.DebugContext(ctx, "exception filter short-circuited", "filter", FilterName(filter))
}

// FilterName returns a printable name for a filter.
func FilterName(filter domain.Filter) string {
	if named, ok := filter.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", filter)
}
