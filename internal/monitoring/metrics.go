package monitoring

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process counters exported at /metrics. The hot path
// touches only atomics; Prometheus reads them through GaugeFuncs at scrape
// time.
type Metrics struct {
	FramesAnalyzed    atomic.Uint64
	DecodeFailures    atomic.Uint64
	EmotionFaults     atomic.Uint64
	PoseFaults        atomic.Uint64
	ActiveSessions    atomic.Int64
	SessionsStarted   atomic.Uint64
	SessionsFinalized atomic.Uint64
	AlertsRaised      atomic.Uint64

	registry *prometheus.Registry
}

// NewMetrics creates a Metrics instance with its own Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	gauges := []struct {
		name string
		help string
		load func() float64
	}{
		{"behavior_frames_analyzed_total", "Total frames run through the analyzer",
			func() float64 { return float64(m.FramesAnalyzed.Load()) }},
		{"behavior_decode_failures_total", "Total frame payloads that failed to decode",
			func() float64 { return float64(m.DecodeFailures.Load()) }},
		{"behavior_emotion_faults_total", "Total emotion model faults swallowed on the streaming path",
			func() float64 { return float64(m.EmotionFaults.Load()) }},
		{"behavior_pose_faults_total", "Total pose model faults swallowed on the streaming path",
			func() float64 { return float64(m.PoseFaults.Load()) }},
		{"behavior_active_sessions", "Number of live analysis sessions",
			func() float64 { return float64(m.ActiveSessions.Load()) }},
		{"behavior_sessions_started_total", "Total analysis sessions started",
			func() float64 { return float64(m.SessionsStarted.Load()) }},
		{"behavior_sessions_finalized_total", "Total analysis sessions finalized",
			func() float64 { return float64(m.SessionsFinalized.Load()) }},
		{"behavior_alerts_raised_total", "Total threshold alerts raised at session finalize",
			func() float64 { return float64(m.AlertsRaised.Load()) }},
	}
	for _, g := range gauges {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			g.load,
		))
	}
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
