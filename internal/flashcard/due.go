package flashcard

import (
	"sort"
	"strings"
	"time"
)

// OwnedDeckIDs returns the IDs of the decks that belong to userID.
// An empty userID owns nothing.
func OwnedDeckIDs(decks []Deck, userID string) map[string]struct{} {
	owned := make(map[string]struct{})
	if userID == "" {
		return owned
	}
	for _, d := range decks {
		if d.UserID == userID {
			owned[d.ID] = struct{}{}
		}
	}
	return owned
}

// SelectDue returns the cards in ownerDeckIDs that are due at now, in input order.
// Cards in decks outside ownerDeckIDs are silently dropped.
func SelectDue(cards []Card, ownerDeckIDs map[string]struct{}, now time.Time) []Card {
	var due []Card
	if len(ownerDeckIDs) == 0 {
		return due
	}
	for _, c := range cards {
		if _, ok := ownerDeckIDs[c.DeckID]; !ok {
			continue
		}
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	return due
}

// DecksForUser returns userID's decks sorted by name, optionally filtered by a
// case-insensitive name substring.
func DecksForUser(decks []Deck, userID, search string) []Deck {
	search = strings.ToLower(strings.TrimSpace(search))
	var result []Deck
	for _, d := range decks {
		if d.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Name), search) {
			continue
		}
		result = append(result, d)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// CardsInDeck returns the cards that belong to deckID.
func CardsInDeck(cards []Card, deckID string) []Card {
	var result []Card
	for _, c := range cards {
		if c.DeckID == deckID {
			result = append(result, c)
		}
	}
	return result
}
