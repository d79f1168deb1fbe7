package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/flashcards/internal/bootstrap"
	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/identity"
	"github.com/at-ishikawa/flashcards/internal/review"
	"github.com/at-ishikawa/flashcards/internal/store"
)

var errNoActiveUser = errors.New("no active user: pass --user or set FLASHCARDS_USER_ID")

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// activeUser prefers --user over the configured user.
func activeUser(cfg *config.Config) identity.Static {
	if userFlag != "" {
		return identity.Static(userFlag)
	}
	return identity.Static(cfg.Review.UserID)
}

func requireUser(cfg *config.Config) (string, error) {
	userID, ok := activeUser(cfg).ActiveUserID()
	if !ok {
		return "", errNoActiveUser
	}
	return userID, nil
}

// openStore opens the configured store and closes it when app shuts down.
func openStore(app *bootstrap.App, cfg *config.Config) (store.Store, error) {
	s, err := store.Open(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("store.Open() > %w", err)
	}
	app.AddCloser("store", s)
	return s, nil
}

func newOrchestrator(cfg *config.Config, cardStore store.CardStore) *review.Orchestrator {
	session := review.NewSession(review.WithThrottle(cfg.Review.FetchThrottle()))
	return review.NewOrchestrator(cardStore, activeUser(cfg),
		review.WithSession(session),
		review.WithLogger(slog.Default()),
	)
}

// findOwnedDeck returns the deck if it belongs to userID.
func findOwnedDeck(ctx context.Context, s store.Store, userID, deckID string) (flashcard.Deck, error) {
	decks, err := s.LoadDecks(ctx)
	if err != nil {
		return flashcard.Deck{}, fmt.Errorf("LoadDecks() > %w", err)
	}
	for _, d := range flashcard.DecksForUser(decks, userID, "") {
		if d.ID == deckID {
			return d, nil
		}
	}
	return flashcard.Deck{}, fmt.Errorf("deck %s not found for user %s", deckID, userID)
}

// withStore loads the config, opens the store, and runs fn under a bootstrap.App.
func withStore(ctx context.Context, fn func(ctx context.Context, cfg *config.Config, s store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app := bootstrap.New()
	return app.Run(ctx, func(ctx context.Context) error {
		s, err := openStore(app, cfg)
		if err != nil {
			return err
		}
		return fn(ctx, cfg, s)
	})
}
