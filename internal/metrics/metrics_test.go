package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAuthEvent(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.AuthEvent(EventLoginSuccess)
	m.AuthEvent(EventLoginSuccess)
	m.AuthEvent(EventLoginFailure)

	expected := `
# HELP nearmex_auth_events_total Authentication events by kind
# TYPE nearmex_auth_events_total counter
nearmex_auth_events_total{event="login_failure"} 1
nearmex_auth_events_total{event="login_success"} 2
`
	if err := testutil.CollectAndCompare(m.AuthEventsTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metric output: %v", err)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.AuthEvent(EventRegister)
	m.MailSent("password_reset", errors.New("boom"))
}

func TestMailSent(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.MailSent("password_reset", nil)
	m.MailSent("password_reset", errors.New("relay down"))
	if got := testutil.ToFloat64(m.MailSentTotal.WithLabelValues("password_reset", "error")); got != 1 {
		t.Errorf("expected 1 failed send, got %v", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/items/"+id, nil))
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "204")); got != 2 {
		t.Errorf("expected 2 requests on the route label, got %v", got)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "nearmex_http_requests_total") {
		t.Errorf("exposition missing request counter")
	}
}
