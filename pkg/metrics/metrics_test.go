package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "no")
	})

	for _, path := range []string{"/ping", "/ping", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/boom", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInFlight))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.ObserveAuthz("task", "delete", false)
	m.ObserveAuthz("task", "delete", true)
	m.ObserveAuthz("task", "delete", true)
	m.ObserveRefresh(OutcomeExpired)
	m.ObserveSweep(3)
	m.ObserveSweep(0)
	m.ObserveAuditFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthzDecisions.WithLabelValues("task", "delete", OutcomeAllowed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthzDecisions.WithLabelValues("task", "delete", OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenRefreshes.WithLabelValues(OutcomeExpired)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TokensSwept))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditWriteFailures))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAuthz("project", "read", true)
		m.ObserveRefresh(OutcomeSuccess)
		m.ObserveSweep(1)
		m.ObserveAuditFailure()
		m.ObserveRoleCache(true)
	})
}

func TestMetricsRoute(t *testing.T) {
	m := New()
	m.ObserveAuthz("project", "update", true)

	e := echo.New()
	m.RegisterRoute(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "projecthub_authz_decisions_total"))
}
