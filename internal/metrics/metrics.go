// Package metrics exposes Prometheus instrumentation for turns and calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Turn metrics
	TurnsTotal      *prometheus.CounterVec
	RepliesRevealed prometheus.Counter
	RepliesDropped  *prometheus.CounterVec
	FetchDuration   prometheus.Histogram

	// Call metrics
	CallsActive    prometheus.Gauge
	CallsTotal     *prometheus.CounterVec
	CallDuration   prometheus.Histogram
	CallAudioBytes *prometheus.CounterVec
	CallInterrupts prometheus.Counter
	SpeechPreviews *prometheus.CounterVec
	BridgeMessages *prometheus.CounterVec
}

// New creates a Metrics instance with every collector registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ensemble"
	}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "User turns processed, by outcome",
		}, []string{"outcome"}),
		RepliesRevealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_revealed_total",
			Help:      "Agent replies appended to history",
		}),
		RepliesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_dropped_total",
			Help:      "Agent replies discarded, by reason",
		}, []string{"reason"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reply_fetch_duration_seconds",
			Help:      "Backend reply generation latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		CallsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calls_active",
			Help:      "Live call sessions currently open",
		}),
		CallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Live call sessions, by final state",
		}, []string{"state"}),
		CallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Live call session duration",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		CallAudioBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_audio_bytes_total",
			Help:      "Audio bytes moved during calls, by direction",
		}, []string{"direction"}),
		CallInterrupts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_interrupts_total",
			Help:      "Backend interruption signals received",
		}),
		SpeechPreviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_previews_total",
			Help:      "Voice previews requested, by outcome",
		}, []string{"outcome"}),
		BridgeMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bridge_messages_total",
			Help:      "Chat bridge messages, by direction",
		}, []string{"direction"}),
	}

	registry.MustRegister(
		m.TurnsTotal,
		m.RepliesRevealed,
		m.RepliesDropped,
		m.FetchDuration,
		m.CallsActive,
		m.CallsTotal,
		m.CallDuration,
		m.CallAudioBytes,
		m.CallInterrupts,
		m.SpeechPreviews,
		m.BridgeMessages,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records a reply fetch that started at start.
func (m *Metrics) ObserveFetch(start time.Time) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(time.Since(start).Seconds())
}

// Turn records a finished user turn.
func (m *Metrics) Turn(outcome string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(outcome).Inc()
}

// Revealed records one reply appended to history.
func (m *Metrics) Revealed() {
	if m == nil {
		return
	}
	m.RepliesRevealed.Inc()
}

// Dropped records replies discarded for reason.
func (m *Metrics) Dropped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RepliesDropped.WithLabelValues(reason).Add(float64(n))
}

// CallStarted marks a call as active.
func (m *Metrics) CallStarted() {
	if m == nil {
		return
	}
	m.CallsActive.Inc()
}

// CallFinished records a call leaving the active set.
func (m *Metrics) CallFinished(state string, d time.Duration) {
	if m == nil {
		return
	}
	m.CallsActive.Dec()
	m.CallsTotal.WithLabelValues(state).Inc()
	m.CallDuration.Observe(d.Seconds())
}

// AudioBytes adds n bytes moved in direction ("in" or "out").
func (m *Metrics) AudioBytes(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CallAudioBytes.WithLabelValues(direction).Add(float64(n))
}

// Interrupted counts a backend interruption.
func (m *Metrics) Interrupted() {
	if m == nil {
		return
	}
	m.CallInterrupts.Inc()
}

// Preview records a speech preview outcome.
func (m *Metrics) Preview(outcome string) {
	if m == nil {
		return
	}
	m.SpeechPreviews.WithLabelValues(outcome).Inc()
}

// Bridged records a bridge message in direction ("in" or "out").
func (m *Metrics) Bridged(direction string) {
	if m == nil {
		return
	}
	m.BridgeMessages.WithLabelValues(direction).Inc()
}
