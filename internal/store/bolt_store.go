package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
)

var (
	cardsBucket = []byte("cards")
	decksBucket = []byte("decks")
)

// BoltStore keeps cards and decks as JSON values in a bbolt file, keyed by ID.
type BoltStore struct {
	db     *bolt.DB
	logger *slog.Logger
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string, logger *slog.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{cardsBucket, decksBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoltStore{db: db, logger: logger}, nil
}

func (s *BoltStore) LoadCards(ctx context.Context) ([]flashcard.Card, error) {
	return loadBucket[flashcard.Card](s, cardsBucket)
}

func (s *BoltStore) LoadDecks(ctx context.Context) ([]flashcard.Deck, error) {
	return loadBucket[flashcard.Deck](s, decksBucket)
}

func (s *BoltStore) SaveCard(ctx context.Context, card flashcard.Card) error {
	if err := putJSON(s.db, cardsBucket, card.ID, card); err != nil {
		return fmt.Errorf("save card %s: %w", card.ID, err)
	}
	return nil
}

func (s *BoltStore) SaveDeck(ctx context.Context, deck flashcard.Deck) error {
	if err := putJSON(s.db, decksBucket, deck.ID, deck); err != nil {
		return fmt.Errorf("save deck %s: %w", deck.ID, err)
	}
	return nil
}

// DeleteDeck removes the deck and its cards in one bolt transaction.
func (s *BoltStore) DeleteDeck(ctx context.Context, deckID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		cards := tx.Bucket(cardsBucket)
		var doomed [][]byte
		if err := cards.ForEach(func(k, v []byte) error {
			var c flashcard.Card
			if err := json.Unmarshal(v, &c); err == nil && c.DeckID == deckID {
				doomed = append(doomed, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return fmt.Errorf("scan cards of deck %s: %w", deckID, err)
		}
		for _, k := range doomed {
			if err := cards.Delete(k); err != nil {
				return fmt.Errorf("delete card %s: %w", k, err)
			}
		}
		if err := tx.Bucket(decksBucket).Delete([]byte(deckID)); err != nil {
			return fmt.Errorf("delete deck %s: %w", deckID, err)
		}
		return nil
	})
}

func (s *BoltStore) DeleteCard(ctx context.Context, cardID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(cardsBucket).Delete([]byte(cardID)); err != nil {
			return fmt.Errorf("delete card %s: %w", cardID, err)
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// loadBucket decodes every value in bucket. Entries that are not valid JSON
// are logged and skipped.
func loadBucket[T any](s *BoltStore, bucket []byte) ([]T, error) {
	items := []T{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				s.logger.Warn("skipping corrupt entry", "bucket", string(bucket), "key", string(k), "error", err)
				return nil
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", bucket, err)
	}
	return items, nil
}

func putJSON(db *bolt.DB, bucket []byte, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), encoded)
	})
}
