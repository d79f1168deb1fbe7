package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
)

const (
	cardsFile = "cards.yml"
	decksFile = "decks.yml"
)

// YAMLStore keeps cards and decks in two YAML files under a directory.
// A missing or unreadable file loads as an empty collection, but writes
// refuse to replace a file that cannot be parsed.
type YAMLStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewYAMLStore creates the directory if needed and returns a store over it.
func NewYAMLStore(dir string, logger *slog.Logger) (*YAMLStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YAMLStore{dir: dir, logger: logger}, nil
}

func (s *YAMLStore) LoadCards(ctx context.Context) ([]flashcard.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollection[flashcard.Card](s, cardsFile), nil
}

func (s *YAMLStore) LoadDecks(ctx context.Context) ([]flashcard.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollection[flashcard.Deck](s, decksFile), nil
}

func (s *YAMLStore) SaveCard(ctx context.Context, card flashcard.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := readCollection[flashcard.Card](s, cardsFile)
	if err != nil {
		return fmt.Errorf("save card %s: %w", card.ID, err)
	}
	cards = upsert(cards, card, func(c flashcard.Card) string { return c.ID })
	if err := writeYamlFile(filepath.Join(s.dir, cardsFile), cards); err != nil {
		return fmt.Errorf("save card %s: %w", card.ID, err)
	}
	return nil
}

func (s *YAMLStore) SaveDeck(ctx context.Context, deck flashcard.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := readCollection[flashcard.Deck](s, decksFile)
	if err != nil {
		return fmt.Errorf("save deck %s: %w", deck.ID, err)
	}
	decks = upsert(decks, deck, func(d flashcard.Deck) string { return d.ID })
	if err := writeYamlFile(filepath.Join(s.dir, decksFile), decks); err != nil {
		return fmt.Errorf("save deck %s: %w", deck.ID, err)
	}
	return nil
}

func (s *YAMLStore) DeleteDeck(ctx context.Context, deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := readCollection[flashcard.Card](s, cardsFile)
	if err != nil {
		return fmt.Errorf("delete cards of deck %s: %w", deckID, err)
	}
	decks, err := readCollection[flashcard.Deck](s, decksFile)
	if err != nil {
		return fmt.Errorf("delete deck %s: %w", deckID, err)
	}

	cards = removeWhere(cards, func(c flashcard.Card) bool { return c.DeckID == deckID })
	if err := writeYamlFile(filepath.Join(s.dir, cardsFile), cards); err != nil {
		return fmt.Errorf("delete cards of deck %s: %w", deckID, err)
	}
	decks = removeWhere(decks, func(d flashcard.Deck) bool { return d.ID == deckID })
	if err := writeYamlFile(filepath.Join(s.dir, decksFile), decks); err != nil {
		return fmt.Errorf("delete deck %s: %w", deckID, err)
	}
	return nil
}

func (s *YAMLStore) DeleteCard(ctx context.Context, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := readCollection[flashcard.Card](s, cardsFile)
	if err != nil {
		return fmt.Errorf("delete card %s: %w", cardID, err)
	}
	cards = removeWhere(cards, func(c flashcard.Card) bool { return c.ID == cardID })
	if err := writeYamlFile(filepath.Join(s.dir, cardsFile), cards); err != nil {
		return fmt.Errorf("delete card %s: %w", cardID, err)
	}
	return nil
}

func (s *YAMLStore) Close() error {
	return nil
}

// loadCollection is the lenient read used by loads.
func loadCollection[T any](s *YAMLStore, name string) []T {
	items, err := readCollection[T](s, name)
	if err != nil {
		s.logger.Warn("ignoring unreadable storage file", "path", filepath.Join(s.dir, name), "error", err)
		return []T{}
	}
	return items
}

// readCollection is the strict read used before a write. Only a missing file
// counts as empty.
func readCollection[T any](s *YAMLStore, name string) ([]T, error) {
	items, err := readYamlFile[[]T](filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("decode %s: %w", path, err)
	}
	return result, nil
}

// writeYamlFile replaces path through a temporary file so readers never see
// a partially written collection.
func writeYamlFile[T any](path string, data T) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func upsert[T any](items []T, item T, id func(T) string) []T {
	for i := range items {
		if id(items[i]) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func removeWhere[T any](items []T, match func(T) bool) []T {
	kept := items[:0]
	for _, item := range items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
