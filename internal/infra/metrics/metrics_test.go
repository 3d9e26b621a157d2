package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/students/:id", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/students/:id", http.StatusNotFound, time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/students/:id", http.StatusNotFound, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/students/:id", "2xx")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/students/:id", "4xx")), 0)
}

func TestMetrics_RecordLogin(t *testing.T) {
	m := New()

	m.RecordLogin(LoginSucceeded)
	m.RecordLogin(LoginRejected)
	m.RecordLogin(LoginRejected)

	assert.InDelta(t, 1, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(LoginSucceeded)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(LoginRejected)), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RateLimitedTotal.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "students_rate_limited_requests_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(http.StatusCreated))
	assert.Equal(t, "3xx", statusLabel(http.StatusFound))
	assert.Equal(t, "4xx", statusLabel(http.StatusTooManyRequests))
	assert.Equal(t, "5xx", statusLabel(http.StatusInternalServerError))
}
