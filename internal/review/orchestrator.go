package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/identity"
	"github.com/at-ishikawa/flashcards/internal/store"
)

// ErrStorageWrite matches every StorageWriteError with errors.Is.
var ErrStorageWrite = errors.New("storage write failed")

// StorageWriteError reports that a graded card could not be saved.
// The session is left as it was, so the grade can be submitted again.
type StorageWriteError struct {
	CardID string
	Err    error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("save card %s: %v", e.CardID, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

func (e *StorageWriteError) Is(target error) bool {
	return target == ErrStorageWrite
}

// Snapshot is a read-only view of the session for presentation layers.
type Snapshot struct {
	State         State
	CurrentCard   *flashcard.Card
	AnswerVisible bool
	Progress      float64
	Index         int
	Total         int
	IsFinished    bool
	IsLoading     bool
}

// Orchestrator drives a review session against a card store for the active user.
// It is not safe for concurrent use.
type Orchestrator struct {
	store    store.CardStore
	identity identity.Provider
	session  *Session
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSession replaces the default session.
func WithSession(session *Session) Option {
	return func(o *Orchestrator) {
		o.session = session
	}
}

// WithOrchestratorClock sets the time source used for due checks and scheduling.
func WithOrchestratorClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithLogger sets the logger for recovered storage errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator over cardStore for the user reported by provider.
func NewOrchestrator(cardStore store.CardStore, provider identity.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    cardStore,
		identity: provider,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.session == nil {
		o.session = NewSession(WithClock(o.clock))
	}
	return o
}

// Session returns the underlying session.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// FetchDue loads the active user's due cards into the session. Unforced calls
// within the throttle window are no-ops. Read failures are logged and treated
// as empty collections.
func (o *Orchestrator) FetchDue(ctx context.Context, force bool) error {
	if !o.session.ShouldFetch(force) {
		return nil
	}
	o.session.BeginFetch()

	if err := ctx.Err(); err != nil {
		o.session.FailFetch()
		return err
	}

	cards, owned := o.loadUserCards(ctx)
	o.session.CompleteFetch(flashcard.SelectDue(cards, owned, o.clock()))

	o.logger.Debug("fetched due cards", "due", o.session.Len(), "total", len(cards))
	return nil
}

// SubmitGrade schedules the current card with grade and saves it. Without a
// current card it does nothing. If the save fails, a *StorageWriteError is
// returned and the session does not move.
func (o *Orchestrator) SubmitGrade(ctx context.Context, grade flashcard.Grade) error {
	current := o.session.CurrentCard()
	if current == nil {
		return nil
	}

	now := o.clock()
	fields, err := flashcard.Advance(current.Scheduling(), grade, now)
	if err != nil {
		return err
	}
	updated := current.WithScheduling(fields)
	updated.UpdatedAt = now

	if err := o.store.SaveCard(ctx, updated); err != nil {
		o.logger.Error("failed to save graded card", "card_id", updated.ID, "grade", grade, "error", err)
		return &StorageWriteError{CardID: updated.ID, Err: err}
	}

	o.session.Advance(updated)
	return nil
}

// ToggleAnswer shows or hides the answer of the current card.
func (o *Orchestrator) ToggleAnswer() error {
	return o.session.ToggleAnswer()
}

// ResetReview rewinds the session and forces a fresh fetch.
func (o *Orchestrator) ResetReview(ctx context.Context) error {
	o.session.Reset()
	return o.FetchDue(ctx, true)
}

// DueCountForUser counts the active user's due cards from a fresh load,
// independent of the session queue.
func (o *Orchestrator) DueCountForUser(ctx context.Context) int {
	if _, ok := o.identity.ActiveUserID(); !ok {
		return 0
	}
	cards, owned := o.loadUserCards(ctx)
	return len(flashcard.SelectDue(cards, owned, o.clock()))
}

// Snapshot returns the current session view.
func (o *Orchestrator) Snapshot() Snapshot {
	s := o.session
	return Snapshot{
		State:         s.State(),
		CurrentCard:   s.CurrentCard(),
		AnswerVisible: s.AnswerVisible(),
		Progress:      s.Progress(),
		Index:         s.CurrentIndex(),
		Total:         s.Len(),
		IsFinished:    s.IsFinished(),
		IsLoading:     s.IsLoading(),
	}
}

// loadUserCards returns the cards in decks owned by the active user along with
// the owned deck IDs.
func (o *Orchestrator) loadUserCards(ctx context.Context) ([]flashcard.Card, map[string]struct{}) {
	userID, ok := o.identity.ActiveUserID()
	if !ok {
		return nil, map[string]struct{}{}
	}

	decks, err := o.store.LoadDecks(ctx)
	if err != nil {
		o.logger.Warn("failed to load decks, using an empty collection", "error", err)
		decks = nil
	}
	owned := flashcard.OwnedDeckIDs(decks, userID)
	if len(owned) == 0 {
		return nil, owned
	}

	cards, err := o.store.LoadCards(ctx)
	if err != nil {
		o.logger.Warn("failed to load cards, using an empty collection", "error", err)
		cards = nil
	}

	var userCards []flashcard.Card
	for _, c := range cards {
		if _, ok := owned[c.DeckID]; ok {
			userCards = append(userCards, c)
		}
	}
	return userCards, owned
}
