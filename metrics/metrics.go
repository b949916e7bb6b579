// Package metrics exposes prometheus counters for signals, risk decisions
// and data collection.
package metrics

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector in this package. It is separate from the
// default registry so tests and embedders stay isolated.
var Registry = prometheus.NewRegistry()

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "autotrader_signals_total", Help: "Signals emitted by strategies"},
		[]string{"strategy", "direction"},
	)
	RiskDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "autotrader_risk_decisions_total", Help: "Risk rule decisions"},
		[]string{"rule", "approved"},
	)
	AnalyzeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "autotrader_analyze_errors_total", Help: "Evaluation failures by kind"},
		[]string{"kind"},
	)
	SignalStrength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "autotrader_signal_strength", Help: "Strength of the latest signal per symbol"},
		[]string{"symbol"},
	)
	PricesCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "autotrader_prices_collected_total", Help: "Quotes collected from the broker"},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		SignalsTotal,
		RiskDecisionsTotal,
		AnalyzeErrorsTotal,
		SignalStrength,
		PricesCollected,
		collectors.NewGoCollector(),
	)
}

// ObserveSignal counts a signal and records its strength.
func ObserveSignal(strategy, symbol, direction string, strength float64) {
	SignalsTotal.WithLabelValues(strategy, direction).Inc()
	SignalStrength.WithLabelValues(symbol).Set(strength)
}

func ObserveDecision(rule string, approved bool) {
	RiskDecisionsTotal.WithLabelValues(rule, strconv.FormatBool(approved)).Inc()
}

func ObserveError(kind string) {
	AnalyzeErrorsTotal.WithLabelValues(kind).Inc()
}

func ObserveCollection(success, failed int) {
	PricesCollected.WithLabelValues("success").Add(float64(success))
	PricesCollected.WithLabelValues("failed").Add(float64(failed))
}

// Handler serves Registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve binds addr and serves /metrics in the background. A bind failure
// is returned; otherwise the server's Addr holds the bound address. Close
// or Shutdown the returned server to stop it.
func Serve(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	return srv, nil
}
