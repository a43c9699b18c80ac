package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"010_late.sql":   {Data: []byte("SELECT 10;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{migrations[0].Version, migrations[1].Version, migrations[2].Version})
	assert.Equal(t, "first", migrations[0].Name)
}

func TestLoad_RejectsBadName(t *testing.T) {
	_, err := Load(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}})
	assert.Error(t, err)
}

func TestMigrator_RunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "console.db")}, logger)
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrator(db, logger)
	require.NoError(t, m.Run(ctx, Migrations))
	require.NoError(t, m.Run(ctx, Migrations))

	var applied int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)

	_, err = db.ExecContext(ctx, "INSERT INTO kv_snapshots (key, value) VALUES ('vehicleData', '[]')")
	assert.NoError(t, err)
}
