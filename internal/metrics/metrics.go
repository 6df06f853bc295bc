package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's collectors on a private registry. All methods
// are safe on a nil receiver so components can run uninstrumented.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted  *prometheus.CounterVec
	SessionsFinished *prometheus.CounterVec
	AnswersScored    *prometheus.CounterVec
	ScoringDegraded  prometheus.Counter
	Relaxations      *prometheus.CounterVec
	OverallScore     prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mockprep",
				Name:      "sessions_started_total",
				Help:      "Interview sessions started, by session type.",
			},
			[]string{"type"},
		),
		SessionsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mockprep",
				Name:      "sessions_finished_total",
				Help:      "Interview sessions that reached a terminal status.",
			},
			[]string{"status"},
		),
		AnswersScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mockprep",
				Name:      "answers_scored_total",
				Help:      "Answers evaluated, by question type.",
			},
			[]string{"question_type"},
		),
		ScoringDegraded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mockprep",
				Name:      "scoring_degraded_total",
				Help:      "Evaluations that fell back to neutral scores.",
			},
		),
		Relaxations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mockprep",
				Name:      "selection_relaxations_total",
				Help:      "Question selection filter relaxations, by level.",
			},
			[]string{"level"},
		),
		OverallScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mockprep",
				Name:      "answer_overall_score",
				Help:      "Distribution of overall answer scores.",
				Buckets:   []float64{20, 40, 55, 70, 85, 100},
			},
		),
	}

	m.registry.MustRegister(
		m.SessionsStarted,
		m.SessionsFinished,
		m.AnswersScored,
		m.ScoringDegraded,
		m.Relaxations,
		m.OverallScore,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionStarted(sessionType string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(sessionType).Inc()
}

func (m *Metrics) SessionFinished(status string) {
	if m == nil {
		return
	}
	m.SessionsFinished.WithLabelValues(status).Inc()
}

func (m *Metrics) AnswerScored(questionType string, overall int, degraded bool) {
	if m == nil {
		return
	}
	m.AnswersScored.WithLabelValues(questionType).Inc()
	m.OverallScore.Observe(float64(overall))
	if degraded {
		m.ScoringDegraded.Inc()
	}
}

func (m *Metrics) Relaxed(level string) {
	if m == nil {
		return
	}
	m.Relaxations.WithLabelValues(level).Inc()
}
