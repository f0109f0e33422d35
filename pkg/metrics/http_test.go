package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest(http.MethodGet, "/v1/products", http.StatusOK, 25*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/v1/products", http.StatusOK, 40*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/v1/cart/items", http.StatusBadRequest, 5*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	count := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/v1/products", "200"))
	require.Equal(t, float64(2), count)
}

func TestObserveRequestNormalizesEmptyRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	count := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404"))
	require.Equal(t, float64(1), count)
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest(http.MethodGet, "/v1/products", http.StatusOK, time.Millisecond)
}
