// Package metrics exposes Prometheus metrics for burn and mint submissions.
//
// Usage:
//
//	metrics.RegisterMetrics(logger)
//	srv := metrics.StartMetricsServer("9100", logger)
//	defer srv.Stop(context.Background())
package metrics
