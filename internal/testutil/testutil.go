// Package testutil provides shared test helpers for creating config files and store fixtures.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/store"
)

type testConfig struct {
	driver  string
	userID  string
	baseURL string
}

// ConfigOption customizes the config written by SetupTestConfig.
type ConfigOption func(*testConfig)

func WithDriver(driver string) ConfigOption {
	return func(c *testConfig) {
		c.driver = driver
	}
}

func WithUser(userID string) ConfigOption {
	return func(c *testConfig) {
		c.userID = userID
	}
}

func WithRemote(baseURL string) ConfigOption {
	return func(c *testConfig) {
		c.baseURL = baseURL
	}
}

// SetupTestConfig writes a config file whose storage and output paths live under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{driver: "yaml", baseURL: "http://localhost:8080"}
	for _, opt := range opts {
		opt(&cfg)
	}

	configContent := fmt.Sprintf(`storage:
  driver: %s
  yaml_directory: %s
  bolt_path: %s
  retry_attempts: 1
database:
  sqlite_path: %s
review:
  user_id: %q
remote:
  base_url: %s
outputs:
  export_directory: %s
`,
		cfg.driver,
		filepath.Join(tmpDir, "data"),
		filepath.Join(tmpDir, "flashcards.db"),
		filepath.Join(tmpDir, "flashcards.sqlite"),
		cfg.userID,
		cfg.baseURL,
		filepath.Join(tmpDir, "outputs"),
	)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}

// SeedYAMLStore saves decks and cards into the YAML store at <tmpDir>/data.
func SeedYAMLStore(t *testing.T, tmpDir string, decks []flashcard.Deck, cards []flashcard.Card) {
	t.Helper()

	s, err := store.NewYAMLStore(filepath.Join(tmpDir, "data"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ctx := context.Background()
	for _, d := range decks {
		require.NoError(t, s.SaveDeck(ctx, d))
	}
	for _, c := range cards {
		require.NoError(t, s.SaveCard(ctx, c))
	}
	require.NoError(t, s.Close())
}

// LoadYAMLStore reads back everything in the YAML store at <tmpDir>/data.
func LoadYAMLStore(t *testing.T, tmpDir string) ([]flashcard.Deck, []flashcard.Card) {
	t.Helper()

	s, err := store.NewYAMLStore(filepath.Join(tmpDir, "data"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	decks, err := s.LoadDecks(context.Background())
	require.NoError(t, err)
	cards, err := s.LoadCards(context.Background())
	require.NoError(t, err)
	return decks, cards
}
