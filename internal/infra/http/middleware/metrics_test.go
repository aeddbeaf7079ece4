package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "418"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/def", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "418")))
}

func TestImportMetrics(t *testing.T) {
	m := ImportMetrics{}
	runs := testutil.ToFloat64(importRunsTotal.WithLabelValues("partial"))
	rows := testutil.ToFloat64(importRowsTotal.WithLabelValues("duplicate"))
	skips := testutil.ToFloat64(importSkippedTicks)
	failed := testutil.ToFloat64(alertsTotal.WithLabelValues("email", "failed"))

	m.RecordImportRun("partial", 2*time.Second)
	m.RecordImportRow("duplicate")
	m.RecordSkippedTick()
	m.RecordAlert("email", errors.New("smtp down"))

	assert.Equal(t, runs+1, testutil.ToFloat64(importRunsTotal.WithLabelValues("partial")))
	assert.Equal(t, rows+1, testutil.ToFloat64(importRowsTotal.WithLabelValues("duplicate")))
	assert.Equal(t, skips+1, testutil.ToFloat64(importSkippedTicks))
	assert.Equal(t, failed+1, testutil.ToFloat64(alertsTotal.WithLabelValues("email", "failed")))
}
