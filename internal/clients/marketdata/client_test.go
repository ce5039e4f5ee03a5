package marketdata

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/wealthscope/wealthscope/internal/clientdata"
)

func testCache(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := clientdata.NewRepository(db)
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestGetPriceHistory(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "PETR4.SA", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"date":"2024-01-02","close":31.00,"adjusted_close":30.50},
			{"date":"2024-01-03","close":32.00,"adjusted_close":31.40},
			{"date":"","close":1,"adjusted_close":1}
		]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, testCache(t), zerolog.New(io.Discard))

	series, err := client.GetPriceHistory("PETR4.SA", "1y", "1d")
	require.NoError(t, err)
	require.Len(t, series, 2, "rows without a date key are dropped")
	assert.InDelta(t, 30.50, series["2024-01-02"], 1e-9)
	assert.InDelta(t, 31.40, series["2024-01-03"], 1e-9)

	// Second call is served from cache.
	_, err = client.GetPriceHistory("PETR4.SA", "1y", "1d")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetPriceHistoryUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, testCache(t), zerolog.New(io.Discard))

	_, err := client.GetPriceHistory("BROKEN.SA", "1y", "1d")
	assert.Error(t, err, "no cache entry means the failure surfaces to the coordinator")
}

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"current_price": 61.25}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, testCache(t), zerolog.New(io.Discard))

	price, err := client.GetQuote("VALE3.SA")
	require.NoError(t, err)
	assert.InDelta(t, 61.25, price, 1e-9)
}

func TestGetQuoteStaleFallback(t *testing.T) {
	cache := testCache(t)
	require.NoError(t, cache.Store("current_quotes", "VALE3.SA", quoteResponse{CurrentPrice: 60.0}, -1))

	// Server that always fails; client should fall back to the stale entry.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, cache, zerolog.New(io.Discard))

	price, err := client.GetQuote("VALE3.SA")
	require.NoError(t, err)
	assert.InDelta(t, 60.0, price, 1e-9)
}
