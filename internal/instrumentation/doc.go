// Package instrumentation provides OpenTelemetry instrumentation for
// the mailpane mail gateway.
//
// The package enables observability through:
//   - OpenTelemetry metrics for gateway, session, and assist operations
//   - Distributed tracing for gateway operations and API calls
//   - Prometheus metrics export via a /metrics handler
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Gateway Metrics:
//   - gateway_operations_total: Counter of gateway operations by operation and status
//   - gateway_operation_duration_seconds: Histogram of gateway operation durations
//   - messages_fetched_total: Counter of mail messages fetched
//
// Session Metrics:
//   - session_refreshes_total: Counter of token refresh attempts by result
//
// Assist Metrics:
//   - assist_requests_total: Counter of reply generation requests by result
//
// Instrumentation is disabled by default and activated via the
// INSTRUMENTATION_ENABLED environment variable. When disabled, the
// provider returns no-op recorders so calling code needs no guards.
package instrumentation
