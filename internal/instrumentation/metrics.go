package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrOperation = "operation"
	attrStatus    = "status"
	attrFolder    = "folder"
)

// Status values recorded on metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusFromError maps an error to a metric status value.
func StatusFromError(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder, so callers never need nil checks.
type Metrics struct {
	gatewayOperationsTotal   metric.Int64Counter
	gatewayOperationDuration metric.Float64Histogram
	messagesFetchedTotal     metric.Int64Counter
	sessionRefreshesTotal    metric.Int64Counter
	assistRequestsTotal      metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.gatewayOperationsTotal, err = meter.Int64Counter(
		"gateway_operations_total",
		metric.WithDescription("Total number of mail gateway operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway_operations_total counter: %w", err)
	}

	m.gatewayOperationDuration, err = meter.Float64Histogram(
		"gateway_operation_duration_seconds",
		metric.WithDescription("Mail gateway operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway_operation_duration_seconds histogram: %w", err)
	}

	m.messagesFetchedTotal, err = meter.Int64Counter(
		"messages_fetched_total",
		metric.WithDescription("Total number of full messages fetched from the provider"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_fetched_total counter: %w", err)
	}

	m.sessionRefreshesTotal, err = meter.Int64Counter(
		"session_refreshes_total",
		metric.WithDescription("Total number of silent session refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session_refreshes_total counter: %w", err)
	}

	m.assistRequestsTotal, err = meter.Int64Counter(
		"assist_requests_total",
		metric.WithDescription("Total number of AI reply generation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assist_requests_total counter: %w", err)
	}

	return m, nil
}

// RecordGatewayOperation records one gateway operation with its outcome.
func (m *Metrics) RecordGatewayOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.gatewayOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.gatewayOperationsTotal.Add(ctx, 1, attrs)
	m.gatewayOperationDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String(attrOperation, operation)))
}

// RecordMessagesFetched records the number of full message fetches a
// list operation fanned out.
func (m *Metrics) RecordMessagesFetched(ctx context.Context, count int) {
	if m == nil || m.messagesFetchedTotal == nil {
		return
	}
	m.messagesFetchedTotal.Add(ctx, int64(count))
}

// RecordSessionRefresh records one silent session refresh.
func (m *Metrics) RecordSessionRefresh(ctx context.Context, status string) {
	if m == nil || m.sessionRefreshesTotal == nil {
		return
	}
	m.sessionRefreshesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordAssistRequest records one AI reply generation request.
func (m *Metrics) RecordAssistRequest(ctx context.Context, status string) {
	if m == nil || m.assistRequestsTotal == nil {
		return
	}
	m.assistRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrStatus, status)))
}
