package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_data.db")

	db, err := New(Config{Path: path, Profile: ProfileCache, Name: "client_data"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, 4, db.Conn().Stats().MaxOpenConnections)

	_, err = db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	assert.NoError(t, err)
}

func TestNew_InMemoryURI(t *testing.T) {
	db, err := New(Config{Path: "file::memory:", Name: "test"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	assert.NoError(t, err)
}

func TestNew_UnusableFileReleasesConnection(t *testing.T) {
	// A directory is not a valid SQLite file, so the liveness check fails.
	// New must surface the error without holding the pool open.
	dir := t.TempDir()

	db, err := New(Config{Path: dir, Profile: ProfileStandard, Name: "broken"})
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "broken")
}

func TestBuildConnectionString_ProfilePragmas(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{name: "cache trades durability for speed", profile: ProfileCache, want: "_pragma=synchronous(OFF)"},
		{name: "standard keeps normal sync", profile: ProfileStandard, want: "_pragma=synchronous(NORMAL)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildConnectionString("/tmp/test.db", tt.profile)
			assert.True(t, strings.HasPrefix(dsn, "/tmp/test.db?"))
			assert.Contains(t, dsn, "_pragma=journal_mode(WAL)")
			assert.Contains(t, dsn, tt.want)
		})
	}
}
