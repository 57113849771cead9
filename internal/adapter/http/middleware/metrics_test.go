package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/gowallet/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		want       string
		statusCode int
	}{
		{
			name:       "uses route pattern",
			method:     http.MethodGet,
			path:       "/api/v1/wallets/01HABC/items",
			want:       "/api/v1/wallets/{id}/items",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "keeps static path",
			method:     http.MethodGet,
			path:       "/health",
			want:       "/health",
			statusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.NewWithRegisterer(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(Metrics(m))
			handler := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tc.statusCode) }
			r.Get("/api/v1/wallets/{id}/items", handler)
			r.Get("/health", handler)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			counter := m.HTTPRequests.WithLabelValues(tc.method, tc.want, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "wallet path without suffix",
			input:    "/api/v1/wallets/01HABC",
			expected: "/api/v1/wallets/:id",
		},
		{
			name:     "wallet path with suffix",
			input:    "/api/v1/wallets/01HABC/items/type/INFLOW",
			expected: "/api/v1/wallets/:id/items/type/INFLOW",
		},
		{
			name:     "wallet item path",
			input:    "/api/v1/wallet-items/01HXYZ",
			expected: "/api/v1/wallet-items/:id",
		},
		{
			name:     "user wallets",
			input:    "/api/v1/users/01HU/wallets",
			expected: "/api/v1/users/:id/wallets",
		},
		{
			name:     "collection root",
			input:    "/api/v1/wallets",
			expected: "/api/v1/wallets",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePath(tc.input); got != tc.expected {
				t.Fatalf("normalizePath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
