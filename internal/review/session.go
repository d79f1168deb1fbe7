// Package review runs spaced-repetition review sessions over a user's due cards.
package review

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
)

// FetchThrottle is how long a completed fetch stays fresh.
const FetchThrottle = 60 * time.Second

// ErrNoCurrentCard is returned by operations that need a card on screen.
var ErrNoCurrentCard = errors.New("no current card")

// State is the lifecycle stage of a Session.
type State int

const (
	Idle State = iota
	Loading
	Active
	Finished
)

var stateNames = [...]string{Idle: "idle", Loading: "loading", Active: "active", Finished: "finished"}

func (s State) String() string {
	if s >= Idle && s <= Finished {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session holds the shuffled queue of due cards and the reviewer's position in it.
// It is not safe for concurrent use.
type Session struct {
	queue         []flashcard.Card
	currentIndex  int
	answerVisible bool
	loading       bool
	lastFetchAt   *time.Time

	throttle time.Duration
	clock    func() time.Time
	rng      *rand.Rand
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock sets the time source used for the fetch throttle.
func WithClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithRand sets the random source used to shuffle the queue.
func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithThrottle overrides FetchThrottle.
func WithThrottle(d time.Duration) SessionOption {
	return func(s *Session) {
		s.throttle = d
	}
}

// NewSession creates an idle session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		throttle: FetchThrottle,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.clock().UnixNano()))
	}
	return s
}

// ShouldFetch reports whether a fetch request should run. Unforced requests
// within the throttle window of the last successful fetch are skipped.
func (s *Session) ShouldFetch(force bool) bool {
	if force || s.lastFetchAt == nil {
		return true
	}
	return s.clock().Sub(*s.lastFetchAt) >= s.throttle
}

// BeginFetch marks the session as loading.
func (s *Session) BeginFetch() {
	s.loading = true
}

// CompleteFetch installs a shuffled copy of due as the queue.
func (s *Session) CompleteFetch(due []flashcard.Card) {
	queue := make([]flashcard.Card, len(due))
	copy(queue, due)
	Shuffle(queue, s.rng)

	now := s.clock()
	s.queue = queue
	s.currentIndex = 0
	s.answerVisible = false
	s.lastFetchAt = &now
	s.loading = false
}

// FailFetch empties the queue after a fetch that could not complete.
// The throttle window is not restarted.
func (s *Session) FailFetch() {
	s.queue = nil
	s.currentIndex = 0
	s.answerVisible = false
	s.loading = false
}

// Shuffle permutes cards in place with the Fisher-Yates algorithm.
func Shuffle(cards []flashcard.Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// CurrentCard returns the card under review, or nil when there is none.
func (s *Session) CurrentCard() *flashcard.Card {
	if s.currentIndex < 0 || s.currentIndex >= len(s.queue) {
		return nil
	}
	card := s.queue[s.currentIndex]
	return &card
}

// Progress returns the percentage of the queue already reviewed.
func (s *Session) Progress() float64 {
	if len(s.queue) == 0 {
		return 0
	}
	return float64(s.currentIndex) / float64(len(s.queue)) * 100
}

// IsFinished reports whether every card in a non-empty queue has been reviewed.
func (s *Session) IsFinished() bool {
	return len(s.queue) > 0 && s.currentIndex >= len(s.queue)
}

func (s *Session) IsLoading() bool {
	return s.loading
}

func (s *Session) AnswerVisible() bool {
	return s.answerVisible
}

func (s *Session) CurrentIndex() int {
	return s.currentIndex
}

func (s *Session) Len() int {
	return len(s.queue)
}

// Queue returns a copy of the review queue.
func (s *Session) Queue() []flashcard.Card {
	queue := make([]flashcard.Card, len(s.queue))
	copy(queue, s.queue)
	return queue
}

// State derives the lifecycle stage from the session fields.
func (s *Session) State() State {
	switch {
	case s.loading:
		return Loading
	case s.lastFetchAt == nil && len(s.queue) == 0:
		return Idle
	case s.IsFinished():
		return Finished
	default:
		return Active
	}
}

// ToggleAnswer shows or hides the answer of the current card.
func (s *Session) ToggleAnswer() error {
	if s.CurrentCard() == nil {
		return ErrNoCurrentCard
	}
	s.answerVisible = !s.answerVisible
	return nil
}

// Advance stores the graded version of the current card and moves to the next one.
func (s *Session) Advance(updated flashcard.Card) {
	replaceCard(s.queue, updated)
	s.currentIndex++
	s.answerVisible = false
}

// Reset rewinds the session to the first card. The caller is expected to
// follow up with a forced fetch.
func (s *Session) Reset() {
	s.currentIndex = 0
	s.answerVisible = false
	s.loading = true
}

func replaceCard(cards []flashcard.Card, updated flashcard.Card) {
	for i := range cards {
		if cards[i].ID == updated.ID {
			cards[i] = updated
		}
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return Idle, fmt.Errorf("unknown review state %q", s)
}
