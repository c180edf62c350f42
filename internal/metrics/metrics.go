package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CommandMetrics counts order commands and tracks their latency.
type CommandMetrics struct {
	Commands  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewCommandMetrics(service string) *CommandMetrics {
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ordering",
		Subsystem: service,
		Name:      "commands_total",
		Help:      "Total number of order commands.",
	}, []string{"command", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ordering",
		Subsystem: service,
		Name:      "command_duration_ms",
		Help:      "Order command latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"command"})

	prometheus.MustRegister(commands, latency)
	return &CommandMetrics{Commands: commands, LatencyMS: latency}
}

// Observe records one finished command.
func (m *CommandMetrics) Observe(command string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Commands.WithLabelValues(command, status).Inc()
	m.LatencyMS.WithLabelValues(command).Observe(float64(elapsed.Milliseconds()))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
