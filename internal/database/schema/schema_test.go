package schema_test

import (
	"context"
	"path/filepath"
	"testing"

	"hirefeed/internal/database"
	"hirefeed/internal/database/schema"
	"hirefeed/internal/database/schema/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func openDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), database.SQLiteOptions{
		Path: filepath.Join(t.TempDir(), "jobs.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrator_MigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := schema.NewMigrator(db, zap.NewNop())

	n, err := m.Migrate(ctx, migrations.All)
	require.NoError(t, err)
	assert.Equal(t, len(migrations.All), n)
	assert.True(t, tableExists(t, db, "job_postings"))

	n, err = m.Migrate(ctx, migrations.All)
	require.NoError(t, err)
	assert.Zero(t, n)

	applied, err := m.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Contains(t, applied, migrations.CreateJobPostingsTable.Version)
}

func TestMigrator_AppliesInVersionOrder(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := schema.NewMigrator(db, zap.NewNop())

	second := schema.Migration{
		Version:     2,
		Description: "index on created_at",
		Up:          "CREATE INDEX idx_job_postings_created_at ON job_postings (created_at)",
		Down:        "DROP INDEX idx_job_postings_created_at",
	}

	n, err := m.Migrate(ctx, []schema.Migration{second, migrations.CreateJobPostingsTable})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMigrator_Rollback(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := schema.NewMigrator(db, zap.NewNop())

	_, err := m.Migrate(ctx, migrations.All)
	require.NoError(t, err)

	require.NoError(t, m.RollbackMigration(ctx, migrations.CreateJobPostingsTable))
	assert.False(t, tableExists(t, db, "job_postings"))

	applied, err := m.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := schema.NewMigrator(db, zap.NewNop())

	broken := schema.Migration{Version: 1, Description: "broken", Up: "CREATE TABLE (", Down: ""}

	_, err := m.Migrate(ctx, []schema.Migration{broken})
	require.Error(t, err)

	applied, err := m.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
