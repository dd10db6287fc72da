package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// RegisterMetrics registers the process collectors and the burn-to-mint metrics.
func RegisterMetrics(logger *logrus.Logger) {
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	registerIfNotExists(burnSubmissionsTotal, "burn_submissions_total", logger)
	registerIfNotExists(mintSubmissionsTotal, "mint_submissions_total", logger)
	registerIfNotExists(xpopWaitDuration, "xpop_wait_duration", logger)
	registerIfNotExists(runsTotal, "runs_total", logger)
	registerIfNotExists(lastRunTimestamp, "last_run_timestamp", logger)
}

func registerIfNotExists(collector prometheus.Collector, name string, logger *logrus.Logger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			logger.Debugf("%s already registered", name)
		} else {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}
