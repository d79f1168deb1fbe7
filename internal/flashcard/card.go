// Package flashcard provides the card and deck models and the SM-2 scheduling rules.
package flashcard

import (
	"time"

	"github.com/google/uuid"
)

// Card is a question/answer item together with its SM-2 scheduling state.
// A nil NextReviewAt means the card has never been reviewed and is due immediately.
type Card struct {
	ID             string     `db:"id" yaml:"id" json:"id"`
	DeckID         string     `db:"deck_id" yaml:"deck_id" json:"deck_id" validate:"required"`
	Question       string     `db:"question" yaml:"question" json:"question" validate:"required,min=3,max=50"`
	Answer         string     `db:"answer" yaml:"answer" json:"answer" validate:"required,min=3,max=50"`
	EasinessFactor float64    `db:"easiness_factor" yaml:"easiness_factor" json:"easiness_factor"`
	Interval       int        `db:"interval_days" yaml:"interval" json:"interval"`
	Repetitions    int        `db:"repetitions" yaml:"repetitions" json:"repetitions"`
	NextReviewAt   *time.Time `db:"next_review_at" yaml:"next_review_at,omitempty" json:"next_review_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" yaml:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" yaml:"updated_at" json:"updated_at"`
}

// Deck groups cards and belongs to a single user.
type Deck struct {
	ID          string    `db:"id" yaml:"id" json:"id"`
	UserID      string    `db:"user_id" yaml:"user_id" json:"user_id" validate:"required"`
	Name        string    `db:"name" yaml:"name" json:"name" validate:"required,min=1,max=100"`
	Description string    `db:"description" yaml:"description" json:"description" validate:"max=500"`
	CreatedAt   time.Time `db:"created_at" yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" yaml:"updated_at" json:"updated_at"`
}

// SchedulingFields is the part of a card that the scheduler reads and writes.
type SchedulingFields struct {
	EasinessFactor float64
	Interval       int
	Repetitions    int
	NextReviewAt   *time.Time
}

// NewCard creates a card in deckID with the default scheduling state.
func NewCard(deckID, question, answer string, now time.Time) Card {
	return Card{
		ID:             uuid.NewString(),
		DeckID:         deckID,
		Question:       question,
		Answer:         answer,
		EasinessFactor: DefaultEasinessFactor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewDeck creates a deck owned by userID.
func NewDeck(userID, name, description string, now time.Time) Deck {
	return Deck{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Scheduling returns the scheduling fields of the card.
func (c Card) Scheduling() SchedulingFields {
	return SchedulingFields{
		EasinessFactor: c.EasinessFactor,
		Interval:       c.Interval,
		Repetitions:    c.Repetitions,
		NextReviewAt:   c.NextReviewAt,
	}
}

// WithScheduling returns a copy of the card with its scheduling fields replaced.
func (c Card) WithScheduling(f SchedulingFields) Card {
	c.EasinessFactor = f.EasinessFactor
	c.Interval = f.Interval
	c.Repetitions = f.Repetitions
	c.NextReviewAt = f.NextReviewAt
	return c
}

// IsDue reports whether the card can be reviewed at now.
func (c Card) IsDue(now time.Time) bool {
	return c.NextReviewAt == nil || !c.NextReviewAt.After(now)
}
