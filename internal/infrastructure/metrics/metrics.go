// Package metrics exposes console health as Prometheus collectors.
package metrics

import (
	control "trading-console/internal/domain/entity/control"

	"github.com/prometheus/client_golang/prometheus"
)

var statuses = []control.Status{control.StatusOnline, control.StatusOffline, control.StatusReconnecting}

type Metrics struct {
	ticks          *prometheus.CounterVec
	failures       prometheus.Counter
	queueDepth     prometheus.Gauge
	watchdogStatus *prometheus.GaugeVec
	transitions    *prometheus.CounterVec
	restarts       *prometheus.CounterVec
	candles        *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks:          newCounterVec(reg, prometheus.CounterOpts{Name: "console_ticks_ingested_total", Help: "Ticks accepted into the live state"}, []string{"symbol"}),
		failures:       newCounter(reg, prometheus.CounterOpts{Name: "console_transport_failures_total", Help: "Telemetry transport failures"}),
		queueDepth:     newGauge(reg, prometheus.GaugeOpts{Name: "console_command_queue_depth", Help: "Operator commands waiting for the agent"}),
		watchdogStatus: newGaugeVec(reg, prometheus.GaugeOpts{Name: "console_watchdog_status", Help: "1 for the current feed status"}, []string{"status"}),
		transitions:    newCounterVec(reg, prometheus.CounterOpts{Name: "console_watchdog_transitions_total", Help: "Feed status transitions"}, []string{"from", "to"}),
		restarts:       newCounterVec(reg, prometheus.CounterOpts{Name: "console_bridge_restarts_total", Help: "Bridge restarts by outcome"}, []string{"outcome"}),
		candles:        newCounterVec(reg, prometheus.CounterOpts{Name: "console_candles_upserted_total", Help: "Candles written to history"}, []string{"timeframe"}),
	}
	m.WatchdogTransition(control.StatusOffline, control.StatusOffline)
	return m
}

func (m *Metrics) TickIngested(symbol string) {
	m.ticks.WithLabelValues(symbol).Inc()
}

func (m *Metrics) TransportFailure() {
	m.failures.Inc()
}

func (m *Metrics) CommandDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

// WatchdogTransition matches watchdog.TransitionFunc.
func (m *Metrics) WatchdogTransition(from, to control.Status) {
	for _, s := range statuses {
		v := 0.0
		if s == to {
			v = 1
		}
		m.watchdogStatus.WithLabelValues(s.String()).Set(v)
	}
	if from != to {
		m.transitions.WithLabelValues(from.String(), to.String()).Inc()
	}
}

// RestartResult matches supervisor.ResultFunc.
func (m *Metrics) RestartResult(result control.RestartResult) {
	outcome := "ok"
	if result.Err != nil {
		outcome = "error"
	}
	m.restarts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CandlesUpserted(timeframe string, n int) {
	m.candles.WithLabelValues(timeframe).Add(float64(n))
}

func newCounter(reg prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	reg.MustRegister(c)
	return c
}

func newCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	reg.MustRegister(c)
	return c
}

func newGauge(reg prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	reg.MustRegister(g)
	return g
}

func newGaugeVec(reg prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(opts, labels)
	reg.MustRegister(g)
	return g
}
