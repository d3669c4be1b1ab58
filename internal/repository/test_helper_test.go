package repository

import (
	"testing"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/db"
	"github.com/stretchr/testify/require"
)

// setupTestDB returns an in-memory SQLite database with the real migrations
// applied.
func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.CreateReadWrite(db.Config{}, db.Config{Driver: db.DriverSQLite, DSN: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, d.MigrateUp())

	t.Cleanup(func() { _ = d.Close() })
	return d
}
