package glassnode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetricPoints(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "gn-key", r.Header.Get("X-API-KEY"))
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"t":1714521600,"v":62000.1},{"t":1714525200,"v":null},{"t":1714528800,"v":61850.4}]`))
	}))
	defer server.Close()

	client := NewClient("gn-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	points, err := client.MetricPoints(context.Background(), "market/price_usd_close", PointParams{
		Asset:    "BTC",
		Interval: "1h",
		Since:    1714521600,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/metrics/market/price_usd_close", gotPath)
	assert.Equal(t, "BTC", gotQuery["a"])
	assert.Equal(t, "1h", gotQuery["i"])
	assert.Equal(t, "JSON", gotQuery["f"])
	assert.Equal(t, "1714521600", gotQuery["s"])

	require.Len(t, points, 3)
	require.NotNil(t, points[0].V)
	assert.InDelta(t, 62000.1, *points[0].V, 1e-9)
	assert.Nil(t, points[1].V, "gap buckets have null values")
	assert.Equal(t, int64(1714528800), points[2].T)
}

func TestClientMetricPointsNoSince(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("s"), "zero since should not be sent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("gn-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	points, err := client.MetricPoints(context.Background(), "addresses/accumulation_balance", PointParams{
		Asset:    "ETH",
		Interval: "24h",
	})
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestClientMetricPointsErrors(t *testing.T) {
	t.Run("missing asset", func(t *testing.T) {
		client := NewClient("gn-key")
		_, err := client.MetricPoints(context.Background(), "market/price_usd_close", PointParams{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "asset is required")
	})

	t.Run("http status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "API key invalid", http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient("bad-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
		_, err := client.MetricPoints(context.Background(), "market/price_usd_close", PointParams{Asset: "BTC"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http status 401")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"an array"}`))
		}))
		defer server.Close()

		client := NewClient("gn-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
		_, err := client.MetricPoints(context.Background(), "market/price_usd_close", PointParams{Asset: "BTC"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode response")
	})

	t.Run("context cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient("gn-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
		_, err := client.MetricPoints(ctx, "market/price_usd_close", PointParams{Asset: "BTC"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
