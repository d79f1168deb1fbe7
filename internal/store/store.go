// Package store provides persistence for cards and decks.
package store

import (
	"context"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
)

//go:generate mockgen -source=store.go -destination=../mocks/store/mock_store.go -package=mock_store

// CardStore is the persistence contract used by the review engine.
// Loads return empty slices when nothing is stored; absence is never an error.
type CardStore interface {
	LoadCards(ctx context.Context) ([]flashcard.Card, error)
	LoadDecks(ctx context.Context) ([]flashcard.Deck, error)
	// SaveCard inserts or replaces the card with the same ID.
	SaveCard(ctx context.Context, card flashcard.Card) error
}

// Store adds the deck and card management used outside of reviews.
type Store interface {
	CardStore
	SaveDeck(ctx context.Context, deck flashcard.Deck) error
	// DeleteDeck removes the deck and every card in it.
	DeleteDeck(ctx context.Context, deckID string) error
	DeleteCard(ctx context.Context, cardID string) error
	Close() error
}
