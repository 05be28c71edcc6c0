package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStore_CountsOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(storeOperationsTotal.WithLabelValues("insert", "ok"))
	errBefore := testutil.ToFloat64(storeOperationsTotal.WithLabelValues("insert", "error"))

	ObserveStore("insert", nil, 0.002)
	ObserveStore("insert", errors.New("boom"), 0.002)
	ObserveStore("insert", nil, 0.002)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(storeOperationsTotal.WithLabelValues("insert", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(storeOperationsTotal.WithLabelValues("insert", "error")))
}

func TestObserveEvent(t *testing.T) {
	before := testutil.ToFloat64(eventsPublishedTotal.WithLabelValues("updated", "error"))
	ObserveEvent("updated", errors.New("broker down"))
	assert.Equal(t, before+1, testutil.ToFloat64(eventsPublishedTotal.WithLabelValues("updated", "error")))
}

func TestMetricsHandler_Smoke(t *testing.T) {
	ObserveHTTP(http.MethodGet, "/spatial_data/{type}", http.StatusOK, 0.001)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "spatial_http_requests_total")
}
