package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashcards/internal/config"
)

func TestMigrate_SQLite(t *testing.T) {
	cfg := config.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "cards.sqlite")}

	require.NoError(t, Migrate(config.DriverSQLite, cfg))
	// a second run has nothing to apply
	require.NoError(t, Migrate(config.DriverSQLite, cfg))

	db, err := Open(config.DriverSQLite, cfg)
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('decks', 'cards') ORDER BY name"))
	assert.Equal(t, []string{"cards", "decks"}, tables)
}
