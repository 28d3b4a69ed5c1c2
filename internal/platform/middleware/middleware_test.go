package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"carelink/internal/platform/metrics"
)

func TestLatency_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(Latency(m))
	r.Get("/adults/{adultID}/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/adults/"+uuid.NewString()+"/snapshot", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	// Three distinct adult IDs, one logical route, one series.
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))

	// Outside any chi route the label falls back to a constant, so probing
	// random paths cannot mint series either.
	bare := Latency(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	bare.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/"+uuid.NewString(), nil))
	bare.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/"+uuid.NewString(), nil))

	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}
