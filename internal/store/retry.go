package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
)

// DefaultRetryDelay is the base backoff delay between SaveCard attempts.
const DefaultRetryDelay = 100 * time.Millisecond

// RetryingStore retries failed card writes with exponential backoff.
// Other operations go straight to the wrapped store.
type RetryingStore struct {
	Store
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

// NewRetryingStore wraps inner so that SaveCard is tried up to attempts times.
func NewRetryingStore(inner Store, attempts uint, delay time.Duration, logger *slog.Logger) *RetryingStore {
	if attempts == 0 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingStore{Store: inner, attempts: attempts, delay: delay, logger: logger}
}

func (s *RetryingStore) SaveCard(ctx context.Context, card flashcard.Card) error {
	return retry.Do(
		func() error {
			return s.Store.SaveCard(ctx, card)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryableError),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("retrying card write", "card_id", card.ID, "attempt", n+1, "error", err)
		}),
	)
}

func isRetryableError(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
