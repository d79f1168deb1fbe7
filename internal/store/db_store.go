package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/flashcards/internal/database"
	"github.com/at-ishikawa/flashcards/internal/flashcard"
)

const (
	cardColumns = "id, deck_id, question, answer, easiness_factor, interval_days, repetitions, next_review_at, created_at, updated_at"
	deckColumns = "id, user_id, name, description, created_at, updated_at"
)

// DBStore implements Store on MySQL or SQLite.
type DBStore struct {
	db *sqlx.DB
}

// NewDBStore creates a new DBStore.
func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

// LoadCards returns all cards.
func (s *DBStore) LoadCards(ctx context.Context) ([]flashcard.Card, error) {
	cards := []flashcard.Card{}
	if err := s.db.SelectContext(ctx, &cards, "SELECT "+cardColumns+" FROM cards ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("load all cards: %w", err)
	}
	return cards, nil
}

// LoadDecks returns all decks.
func (s *DBStore) LoadDecks(ctx context.Context) ([]flashcard.Deck, error) {
	decks := []flashcard.Deck{}
	if err := s.db.SelectContext(ctx, &decks, "SELECT "+deckColumns+" FROM decks ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("load all decks: %w", err)
	}
	return decks, nil
}

// SaveCard inserts the card or replaces the row with the same ID.
func (s *DBStore) SaveCard(ctx context.Context, card flashcard.Card) error {
	query := "INSERT INTO cards (" + cardColumns + ") VALUES " +
		"(:id, :deck_id, :question, :answer, :easiness_factor, :interval_days, :repetitions, :next_review_at, :created_at, :updated_at) " +
		s.upsertClause("deck_id", "question", "answer", "easiness_factor", "interval_days", "repetitions", "next_review_at", "updated_at")
	if _, err := s.db.NamedExecContext(ctx, query, card); err != nil {
		return fmt.Errorf("upsert card %s: %w", card.ID, err)
	}
	return nil
}

// SaveDeck inserts the deck or replaces the row with the same ID.
func (s *DBStore) SaveDeck(ctx context.Context, deck flashcard.Deck) error {
	query := "INSERT INTO decks (" + deckColumns + ") VALUES " +
		"(:id, :user_id, :name, :description, :created_at, :updated_at) " +
		s.upsertClause("user_id", "name", "description", "updated_at")
	if _, err := s.db.NamedExecContext(ctx, query, deck); err != nil {
		return fmt.Errorf("upsert deck %s: %w", deck.ID, err)
	}
	return nil
}

// DeleteDeck removes the deck and its cards in one transaction.
func (s *DBStore) DeleteDeck(ctx context.Context, deckID string) error {
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM cards WHERE deck_id = ?"), deckID); err != nil {
			return fmt.Errorf("delete cards of deck %s: %w", deckID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM decks WHERE id = ?"), deckID); err != nil {
			return fmt.Errorf("delete deck %s: %w", deckID, err)
		}
		return nil
	})
}

// DeleteCard removes a card. Deleting a missing card is not an error.
func (s *DBStore) DeleteCard(ctx context.Context, cardID string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM cards WHERE id = ?"), cardID); err != nil {
		return fmt.Errorf("delete card %s: %w", cardID, err)
	}
	return nil
}

func (s *DBStore) Close() error {
	return s.db.Close()
}

// upsertClause builds the conflict clause for the connected dialect.
func (s *DBStore) upsertClause(columns ...string) string {
	clause := "ON CONFLICT (id) DO UPDATE SET "
	format := "%s = excluded.%s"
	if s.db.DriverName() == "mysql" {
		clause = "ON DUPLICATE KEY UPDATE "
		format = "%s = VALUES(%s)"
	}
	for i, c := range columns {
		if i > 0 {
			clause += ", "
		}
		clause += fmt.Sprintf(format, c, c)
	}
	return clause
}
