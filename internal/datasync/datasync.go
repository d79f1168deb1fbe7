// Package datasync copies decks and cards from one store to another, for
// example when moving from YAML files to a database.
package datasync

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/store"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	DecksNew      int
	DecksSkipped  int
	DecksUpdated  int
	CardsNew      int
	CardsSkipped  int
	CardsUpdated  int
	CardsOrphaned int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// ExportData holds everything read from a source store.
type ExportData struct {
	Decks []flashcard.Deck
	Cards []flashcard.Card
}

// Exporter reads a store and returns domain structs.
type Exporter struct {
	source store.CardStore
}

// NewExporter creates a new Exporter.
func NewExporter(source store.CardStore) *Exporter {
	return &Exporter{source: source}
}

func (e *Exporter) Export(ctx context.Context) (*ExportData, error) {
	decks, err := e.source.LoadDecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadDecks() > %w", err)
	}
	cards, err := e.source.LoadCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadCards() > %w", err)
	}
	return &ExportData{Decks: decks, Cards: cards}, nil
}

// Importer writes exported data into a destination store, matching records by ID.
type Importer struct {
	dest   store.Store
	writer io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(dest store.Store, writer io.Writer) *Importer {
	return &Importer{dest: dest, writer: writer}
}

// Import saves decks before cards. Cards whose deck exists in neither the
// data nor the destination are reported and left out.
func (imp *Importer) Import(ctx context.Context, data *ExportData, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult

	existingDecks, err := imp.dest.LoadDecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadDecks() > %w", err)
	}
	existingCards, err := imp.dest.LoadCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadCards() > %w", err)
	}

	deckIDs := make(map[string]struct{}, len(existingDecks)+len(data.Decks))
	for _, d := range existingDecks {
		deckIDs[d.ID] = struct{}{}
	}
	for _, d := range data.Decks {
		if err := imp.importDeck(ctx, d, deckIDs, opts, &result); err != nil {
			return nil, err
		}
		deckIDs[d.ID] = struct{}{}
	}

	cardIDs := make(map[string]struct{}, len(existingCards))
	for _, c := range existingCards {
		cardIDs[c.ID] = struct{}{}
	}
	for _, c := range data.Cards {
		if _, ok := deckIDs[c.DeckID]; !ok {
			fmt.Fprintf(imp.writer, "  [WARN]  deck %s not found for card %q\n", c.DeckID, c.Question)
			result.CardsOrphaned++
			continue
		}
		if err := imp.importCard(ctx, c, cardIDs, opts, &result); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

func (imp *Importer) importDeck(ctx context.Context, d flashcard.Deck, existing map[string]struct{}, opts ImportOptions, result *ImportResult) error {
	if _, ok := existing[d.ID]; ok {
		if !opts.UpdateExisting {
			fmt.Fprintf(imp.writer, "  [SKIP]  deck %q (%s)\n", d.Name, d.ID)
			result.DecksSkipped++
			return nil
		}
		if !opts.DryRun {
			if err := imp.dest.SaveDeck(ctx, d); err != nil {
				return fmt.Errorf("SaveDeck(%s) > %w", d.ID, err)
			}
		}
		fmt.Fprintf(imp.writer, "  [UPDATE]  deck %q (%s)\n", d.Name, d.ID)
		result.DecksUpdated++
		return nil
	}

	if !opts.DryRun {
		if err := imp.dest.SaveDeck(ctx, d); err != nil {
			return fmt.Errorf("SaveDeck(%s) > %w", d.ID, err)
		}
	}
	fmt.Fprintf(imp.writer, "  [NEW]  deck %q (%s)\n", d.Name, d.ID)
	result.DecksNew++
	return nil
}

func (imp *Importer) importCard(ctx context.Context, c flashcard.Card, existing map[string]struct{}, opts ImportOptions, result *ImportResult) error {
	if _, ok := existing[c.ID]; ok {
		if !opts.UpdateExisting {
			fmt.Fprintf(imp.writer, "  [SKIP]  card %q (%s)\n", c.Question, c.ID)
			result.CardsSkipped++
			return nil
		}
		if !opts.DryRun {
			if err := imp.dest.SaveCard(ctx, c); err != nil {
				return fmt.Errorf("SaveCard(%s) > %w", c.ID, err)
			}
		}
		fmt.Fprintf(imp.writer, "  [UPDATE]  card %q (%s)\n", c.Question, c.ID)
		result.CardsUpdated++
		return nil
	}

	if !opts.DryRun {
		if err := imp.dest.SaveCard(ctx, c); err != nil {
			return fmt.Errorf("SaveCard(%s) > %w", c.ID, err)
		}
	}
	fmt.Fprintf(imp.writer, "  [NEW]  card %q (%s)\n", c.Question, c.ID)
	result.CardsNew++
	return nil
}
