package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) (*sql.DB, *Repository) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.InitSchema())

	return db, repo
}

func TestStoreAndGetIfFresh(t *testing.T) {
	_, repo := setupTestDB(t)

	series := map[string]float64{"2024-01-02": 31.50, "2024-01-03": 31.80}
	require.NoError(t, repo.Store("price_history", "PETR4.SA", series, TTLPriceHistory))

	data, err := repo.GetIfFresh("price_history", "PETR4.SA")
	require.NoError(t, err)
	require.NotNil(t, data)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(data, &got))
	assert.InDelta(t, 31.50, got["2024-01-02"], 1e-9)
}

func TestGetIfFreshExpired(t *testing.T) {
	_, repo := setupTestDB(t)

	require.NoError(t, repo.Store("fx_history", "USD:BRL", map[string]float64{"2024-01-02": 4.87}, -time.Minute))

	fresh, err := repo.GetIfFresh("fx_history", "USD:BRL")
	require.NoError(t, err)
	assert.Nil(t, fresh, "expired data must not be returned as fresh")

	// Stale fallback still works.
	stale, err := repo.Get("fx_history", "USD:BRL")
	require.NoError(t, err)
	assert.NotNil(t, stale)
}

func TestGetMissingKey(t *testing.T) {
	_, repo := setupTestDB(t)

	data, err := repo.Get("current_quotes", "UNKNOWN")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestInvalidTableRejected(t *testing.T) {
	_, repo := setupTestDB(t)

	err := repo.Store("positions; DROP TABLE price_history", "k", "v", time.Minute)
	assert.Error(t, err)

	_, err = repo.Get("unknown_table", "k")
	assert.Error(t, err)
}

func TestDeleteAllExpired(t *testing.T) {
	_, repo := setupTestDB(t)

	require.NoError(t, repo.Store("price_history", "FRESH", "x", time.Hour))
	require.NoError(t, repo.Store("price_history", "STALE", "y", -time.Hour))
	require.NoError(t, repo.Store("fi_valuations", "bond-1", "z", -time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), results["price_history"])
	assert.Equal(t, int64(1), results["fi_valuations"])
	assert.Equal(t, int64(0), results["fx_history"])

	data, err := repo.Get("price_history", "FRESH")
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestCleanupJob(t *testing.T) {
	_, repo := setupTestDB(t)
	require.NoError(t, repo.Store("current_quotes", "VALE3.SA", 61.2, -time.Minute))

	job := NewCleanupJob(repo, testLogger())
	assert.Equal(t, "client_data_cleanup", job.Name())
	require.NoError(t, job.Run())

	data, err := repo.GetIfFresh("current_quotes", "VALE3.SA")
	require.NoError(t, err)
	assert.Nil(t, data)
}
