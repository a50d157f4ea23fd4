package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-api-accounts/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.CollectAndCount(metrics.APILatency, "accounts_api_latency_seconds")
	for _, p := range []string{"/things/1", "/things/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	// both requests share one series
	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.APILatency, "accounts_api_latency_seconds"))
}
