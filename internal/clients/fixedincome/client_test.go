package fixedincome

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
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

func TestGetValuationSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cdb-42", r.URL.Query().Get("position_id"))
		assert.Equal(t, "2024-03-04", r.URL.Query().Get("start"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"2024-03-04": {"dirty_price": 1000.0, "clean_price": 995.0, "accrued": 5.0, "ytm": 0.11, "duration": 2.1, "convexity": 5.4},
			"2024-03-05": {"dirty_price": 1000.4, "clean_price": 995.2, "accrued": 5.2, "ytm": 0.11, "duration": 2.1, "convexity": 5.4}
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, testCache(t), zerolog.New(io.Discard))

	series, err := client.GetValuationSeries("cdb-42", "2024-03-04", "2024-03-05")

	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.InDelta(t, 1000.0, series["2024-03-04"].DirtyPrice, 1e-9)
	assert.InDelta(t, 5.2, series["2024-03-05"].Accrued, 1e-9)
}

func TestGetValuation_AsOfLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"2024-03-04": {"dirty_price": 1001.0}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, testCache(t), zerolog.New(io.Discard))

	valuation, err := client.GetValuation("cdb-42", "2024-03-04")
	require.NoError(t, err)
	assert.InDelta(t, 1001.0, valuation.DirtyPrice, 1e-9)
}

func TestGetValuation_MissingDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, testCache(t), zerolog.New(io.Discard))

	_, err := client.GetValuation("cdb-42", "2024-03-04")
	assert.Error(t, err)
}

func TestGetValuationSeries_StaleFallback(t *testing.T) {
	cache := testCache(t)
	require.NoError(t, cache.Store("fi_valuations", "cdb-42|2024-03-04|2024-03-05",
		map[string]map[string]float64{"2024-03-04": {"dirty_price": 999.0}}, -1))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, cache, zerolog.New(io.Discard))

	series, err := client.GetValuationSeries("cdb-42", "2024-03-04", "2024-03-05")

	require.NoError(t, err)
	assert.InDelta(t, 999.0, series["2024-03-04"].DirtyPrice, 1e-9)
}
