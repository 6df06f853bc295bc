package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionStarted("mixed")
		m.SessionFinished("completed")
		m.AnswerScored("technical", 80, true)
		m.Relaxed("role")
	})
}

func TestCounters(t *testing.T) {
	m := New()

	m.SessionStarted("mixed")
	m.SessionStarted("mixed")
	m.SessionFinished("abandoned")
	m.AnswerScored("behavioral", 64, false)
	m.AnswerScored("behavioral", 50, true)
	m.Relaxed("difficulty")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("mixed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsFinished.WithLabelValues("abandoned")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnswersScored.WithLabelValues("behavioral")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoringDegraded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Relaxations.WithLabelValues("difficulty")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.SessionStarted("technical")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `mockprep_sessions_started_total{type="technical"} 1`))
}
