package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	burnSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "b2m",
			Subsystem: "source",
			Name:      "burn_submissions_total",
			Help:      "Burn transactions submitted, by transaction type and engine result",
		},
		[]string{"tx_type", "result"},
	)

	mintSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "b2m",
			Subsystem: "hooks",
			Name:      "mint_submissions_total",
			Help:      "Import transactions submitted, by engine result",
		},
		[]string{"result"},
	)

	xpopWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "b2m",
			Subsystem: "xpop",
			Name:      "wait_duration_seconds",
			Help:      "Time spent waiting for proof blobs",
			Buckets:   []float64{0.1, 1, 5, 10, 15, 30, 60, 120},
		},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "b2m",
			Subsystem: "worker",
			Name:      "runs_total",
			Help:      "Completed worker runs",
		},
		[]string{"worker", "status"}, // success, error
	)

	lastRunTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "b2m",
			Subsystem: "worker",
			Name:      "last_run_timestamp",
			Help:      "Unix time of the last finished run",
		},
		[]string{"worker"},
	)
)

// B2MMetrics records burn-to-mint activity. The zero value is ready to use.
type B2MMetrics struct{}

func NewB2MMetrics() *B2MMetrics {
	return &B2MMetrics{}
}

func (m *B2MMetrics) RecordBurn(txType, result string) {
	burnSubmissionsTotal.WithLabelValues(txType, resultLabel(result)).Inc()
}

func (m *B2MMetrics) RecordMint(result string) {
	mintSubmissionsTotal.WithLabelValues(resultLabel(result)).Inc()
}

func (m *B2MMetrics) RecordXPOPWait(d time.Duration) {
	xpopWaitDuration.Observe(d.Seconds())
}

func (m *B2MMetrics) RecordRun(worker string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	runsTotal.WithLabelValues(worker, status).Inc()
	lastRunTimestamp.WithLabelValues(worker).Set(float64(time.Now().Unix()))
}

func resultLabel(result string) string {
	if result == "" {
		return "unknown"
	}
	return result
}
