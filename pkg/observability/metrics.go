package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aretw0/pageflow/internal/logging"
	"github.com/aretw0/pageflow/pkg/domain"
)

// Metrics records invocation and filter activity.
type Metrics struct {
	Invocations      *prometheus.CounterVec
	Duration         *prometheus.HistogramVec
	FilterCalls      *prometheus.CounterVec
	ShortCircuits    *prometheus.CounterVec
	ActiveInvocation prometheus.Gauge
}

// NewMetrics registers the pageflow collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pageflow_invocations_total",
			Help: "Total number of page invocations",
		}, []string{"page"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pageflow_invocation_duration_seconds",
			Help:    "Duration of page invocations",
			Buckets: prometheus.DefBuckets,
		}, []string{"page"}),
		FilterCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pageflow_exception_filter_calls_total",
			Help: "Total number of exception filter callbacks",
		}, []string{"filter", "mode"}),
		ShortCircuits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pageflow_exception_filter_short_circuits_total",
			Help: "Exception filter callbacks that handled or cleared the exception",
		}, []string{"filter"}),
		ActiveInvocation: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pageflow_invocations_in_flight",
			Help: "Number of invocations currently running",
		}),
	}
}

// Hooks returns the diagnostics hooks feeding m.
func (m *Metrics) Hooks() domain.DiagnosticHooks {
	after := func(mode string) func(context.Context, *domain.FilterEvent) {
		return func(ctx context.Context, e *domain.FilterEvent) {
			name := logging.FilterName(e.Filter)
			m.FilterCalls.WithLabelValues(name, mode).Inc()
			if !e.Exception.Unhandled() {
				m.ShortCircuits.WithLabelValues(name).Inc()
			}
		}
	}
	return domain.DiagnosticHooks{
		OnBeforeAction: func(ctx context.Context, e *domain.ActionEvent) {
			m.ActiveInvocation.Inc()
		},
		OnAfterAction: func(ctx context.Context, e *domain.ActionEvent) {
			m.ActiveInvocation.Dec()
			page := pageLabel(e.Descriptor)
			m.Invocations.WithLabelValues(page).Inc()
			m.Duration.WithLabelValues(page).Observe(e.Elapsed.Seconds())
		},
		OnAfterException:      after("sync"),
		OnAfterExceptionAsync: after("async"),
	}
}

func pageLabel(desc *domain.ActionDescriptor) string {
	if desc == nil {
		return "unknown"
	}
	return desc.ID
}
