package services

import (
	"time"

	"ct-host/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	metricsRegistry = prometheus.NewRegistry()

	invocationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ct_host_invocations_total",
			Help: "Total ct-host invocations by command and result",
		},
		[]string{"command", "result"},
	)

	invocationDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ct_host_invocation_duration_seconds",
			Help: "Duration of the last ct-host invocation",
		},
		[]string{"command"},
	)
)

func init() {
	metricsRegistry.MustRegister(invocationTotal)
	metricsRegistry.MustRegister(invocationDuration)
}

/**
 * Record an invocation outcome and push it to the pushgateway
 * @param {string} pushgateway - Pushgateway address; empty disables pushing
 * @param {string} command - Invoked subcommand (install/run)
 * @param {error} invokeErr - Outcome of the invocation
 * @param {duration} elapsed - Invocation wall time
 * @description
 * - One-shot CLI processes cannot be scraped, so outcomes are pushed
 * - A push failure is logged at WARN and never fails the invocation
 */
func PushOutcome(pushgateway, command string, invokeErr error, elapsed time.Duration) {
	if pushgateway == "" {
		return
	}
	result := "success"
	if invokeErr != nil {
		result = "failure"
	}
	invocationTotal.WithLabelValues(command, result).Inc()
	invocationDuration.WithLabelValues(command).Set(elapsed.Seconds())

	if err := push.New(pushgateway, "ct_host").Gatherer(metricsRegistry).Push(); err != nil {
		logger.Warnf("Push metrics to '%s' failed: %v", pushgateway, err)
	}
}
