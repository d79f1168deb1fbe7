package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/store"
)

// Result summarizes an import.
type Result struct {
	Imported []flashcard.Card
	Skipped  []SkippedEntry
}

// SkippedEntry is an entry that failed card validation.
type SkippedEntry struct {
	Entry  Entry
	Reason error
}

// Import creates a new card in deckID for every valid entry. Invalid entries
// are reported in Result.Skipped; a failed write stops the import.
func Import(ctx context.Context, cardStore store.CardStore, deckID string, entries []Entry, now time.Time) (Result, error) {
	var result Result
	for _, e := range entries {
		card := flashcard.NewCard(deckID, e.Question, e.Answer, now)
		if err := flashcard.ValidateCard(card); err != nil {
			slog.Debug("skipping invalid entry", "line", e.Line, "error", err)
			result.Skipped = append(result.Skipped, SkippedEntry{Entry: e, Reason: err})
			continue
		}
		if err := cardStore.SaveCard(ctx, card); err != nil {
			return result, fmt.Errorf("save card from line %d: %w", e.Line, err)
		}
		result.Imported = append(result.Imported, card)
	}
	return result, nil
}
