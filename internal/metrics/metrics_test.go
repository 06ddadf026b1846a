package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/users/c/{username}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/v1/users/c/alice", "/api/v1/users/c/bob", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.requests.WithLabelValues(http.MethodGet, "/api/v1/users/c/{username}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.requests.WithLabelValues(http.MethodGet, "/healthz", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestAuthEvent(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AuthEvent(EventLogin)
	m.AuthEvent(EventLogin)
	m.AuthEvent(EventRefreshRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authEvents.WithLabelValues(EventLogin)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues(EventRefreshRejected)))
}
