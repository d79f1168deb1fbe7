package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/identity"
	mock_identity "github.com/at-ishikawa/flashcards/internal/mocks/identity"
	mock_store "github.com/at-ishikawa/flashcards/internal/mocks/store"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func testDecks() []flashcard.Deck {
	return []flashcard.Deck{
		{ID: "deck-1", UserID: "user-1", Name: "Capitals"},
		{ID: "deck-2", UserID: "user-2", Name: "Not mine"},
	}
}

func storedCards() []flashcard.Card {
	return []flashcard.Card{
		{ID: "new", DeckID: "deck-1", Question: "Capital of Japan?", Answer: "Tokyo", EasinessFactor: 2.5},
		{ID: "due", DeckID: "deck-1", Question: "Capital of Peru?", Answer: "Lima", EasinessFactor: 2.2, Interval: 6, Repetitions: 2, NextReviewAt: timePtr(t0.Add(-time.Hour))},
		{ID: "later", DeckID: "deck-1", Question: "Capital of Chad?", Answer: "N'Djamena", EasinessFactor: 2.5, Interval: 1, Repetitions: 1, NextReviewAt: timePtr(t0.Add(24 * time.Hour))},
		{ID: "other", DeckID: "deck-2", Question: "Capital of Mali?", Answer: "Bamako", EasinessFactor: 2.5},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(cardStore *mock_store.MockCardStore, provider identity.Provider, clock *fakeClock) *Orchestrator {
	return NewOrchestrator(cardStore, provider,
		WithSession(newTestSession(clock)),
		WithOrchestratorClock(clock.Now),
		WithLogger(discardLogger()),
	)
}

func TestOrchestrator_FetchDue(t *testing.T) {
	readErr := errors.New("disk on fire")

	tests := []struct {
		name     string
		provider identity.Provider
		setup    func(s *mock_store.MockCardStore)
		wantIDs  []string
	}{
		{
			name:     "owned due cards only",
			provider: identity.Static("user-1"),
			setup: func(s *mock_store.MockCardStore) {
				s.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
				s.EXPECT().LoadCards(gomock.Any()).Return(storedCards(), nil)
			},
			wantIDs: []string{"new", "due"},
		},
		{
			name:     "unauthenticated",
			provider: identity.Static(""),
			setup:    func(s *mock_store.MockCardStore) {},
		},
		{
			name:     "deck read failure is treated as no decks",
			provider: identity.Static("user-1"),
			setup: func(s *mock_store.MockCardStore) {
				s.EXPECT().LoadDecks(gomock.Any()).Return(nil, readErr)
			},
		},
		{
			name:     "card read failure is treated as no cards",
			provider: identity.Static("user-1"),
			setup: func(s *mock_store.MockCardStore) {
				s.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
				s.EXPECT().LoadCards(gomock.Any()).Return(nil, readErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cardStore := mock_store.NewMockCardStore(ctrl)
			tt.setup(cardStore)

			o := newTestOrchestrator(cardStore, tt.provider, &fakeClock{now: t0})
			require.NoError(t, o.FetchDue(context.Background(), false))

			snapshot := o.Snapshot()
			assert.Equal(t, Active, snapshot.State)
			assert.False(t, snapshot.IsLoading)
			assert.ElementsMatch(t, tt.wantIDs, cardIDs(o.Session().Queue()))
			assert.Equal(t, len(tt.wantIDs), snapshot.Total)
		})
	}
}

func TestOrchestrator_FetchDueThrottle(t *testing.T) {
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)
	cardStore.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil).Times(3)
	cardStore.EXPECT().LoadCards(gomock.Any()).Return(storedCards(), nil).Times(3)

	clock := &fakeClock{now: t0}
	o := newTestOrchestrator(cardStore, identity.Static("user-1"), clock)
	ctx := context.Background()

	require.NoError(t, o.FetchDue(ctx, false))
	clock.Add(30 * time.Second)
	require.NoError(t, o.FetchDue(ctx, false)) // throttled
	require.NoError(t, o.FetchDue(ctx, true))  // forced
	clock.Add(61 * time.Second)
	require.NoError(t, o.FetchDue(ctx, false))
}

func TestOrchestrator_FetchDueCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)

	o := newTestOrchestrator(cardStore, identity.Static("user-1"), &fakeClock{now: t0})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, o.FetchDue(ctx, false), context.Canceled)
	assert.False(t, o.Snapshot().IsLoading)
	assert.True(t, o.Session().ShouldFetch(false))
}

func TestOrchestrator_SubmitGrade(t *testing.T) {
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)
	cardStore.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
	cardStore.EXPECT().LoadCards(gomock.Any()).Return([]flashcard.Card{storedCards()[1]}, nil)

	clock := &fakeClock{now: t0}
	o := newTestOrchestrator(cardStore, identity.Static("user-1"), clock)
	ctx := context.Background()
	require.NoError(t, o.FetchDue(ctx, false))
	require.NoError(t, o.ToggleAnswer())

	clock.Add(time.Minute)
	wantNext := time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC)
	cardStore.EXPECT().SaveCard(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, card flashcard.Card) error {
		assert.Equal(t, "due", card.ID)
		assert.Equal(t, 3, card.Repetitions)
		assert.Equal(t, 13, card.Interval) // 6 * 2.2 rounded
		assert.InDelta(t, 2.2, card.EasinessFactor, 1e-9)
		require.NotNil(t, card.NextReviewAt)
		assert.Equal(t, wantNext, *card.NextReviewAt)
		assert.Equal(t, clock.Now(), card.UpdatedAt)
		return nil
	})

	require.NoError(t, o.SubmitGrade(ctx, flashcard.Good))

	snapshot := o.Snapshot()
	assert.True(t, snapshot.IsFinished)
	assert.Equal(t, Finished, snapshot.State)
	assert.False(t, snapshot.AnswerVisible)
	assert.InDelta(t, 100, snapshot.Progress, 1e-9)
	assert.Equal(t, 3, o.Session().Queue()[0].Repetitions)
}

func TestOrchestrator_SubmitGradeWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)
	cardStore.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
	cardStore.EXPECT().LoadCards(gomock.Any()).Return([]flashcard.Card{storedCards()[0]}, nil)

	o := newTestOrchestrator(cardStore, identity.Static("user-1"), &fakeClock{now: t0})
	ctx := context.Background()
	require.NoError(t, o.FetchDue(ctx, false))
	require.NoError(t, o.ToggleAnswer())

	writeErr := errors.New("connection reset")
	cardStore.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(writeErr)

	err := o.SubmitGrade(ctx, flashcard.Perfect)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, err, writeErr)
	var storageErr *StorageWriteError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "new", storageErr.CardID)

	snapshot := o.Snapshot()
	assert.Equal(t, 0, snapshot.Index)
	assert.True(t, snapshot.AnswerVisible)
	require.NotNil(t, snapshot.CurrentCard)
	assert.Zero(t, snapshot.CurrentCard.Repetitions)
	assert.Nil(t, snapshot.CurrentCard.NextReviewAt)

	// the same grade can be submitted again
	cardStore.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, o.SubmitGrade(ctx, flashcard.Perfect))
	assert.True(t, o.Snapshot().IsFinished)
}

func TestOrchestrator_SubmitGradeInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)
	cardStore.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
	cardStore.EXPECT().LoadCards(gomock.Any()).Return(storedCards(), nil)

	o := newTestOrchestrator(cardStore, identity.Static("user-1"), &fakeClock{now: t0})
	ctx := context.Background()
	require.NoError(t, o.FetchDue(ctx, false))

	err := o.SubmitGrade(ctx, flashcard.Grade(6))
	assert.ErrorIs(t, err, flashcard.ErrInvalidGrade)
	assert.Equal(t, 0, o.Snapshot().Index)
}

func TestOrchestrator_SubmitGradeWithoutCard(t *testing.T) {
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)

	o := newTestOrchestrator(cardStore, identity.Static(""), &fakeClock{now: t0})
	assert.NoError(t, o.SubmitGrade(context.Background(), flashcard.Good))
	assert.ErrorIs(t, o.ToggleAnswer(), ErrNoCurrentCard)
}

func TestOrchestrator_ResetReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)
	cardStore.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil).Times(2)
	first := cardStore.EXPECT().LoadCards(gomock.Any()).Return([]flashcard.Card{storedCards()[0]}, nil)
	cardStore.EXPECT().LoadCards(gomock.Any()).Return(storedCards(), nil).After(first)
	cardStore.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(nil)

	o := newTestOrchestrator(cardStore, identity.Static("user-1"), &fakeClock{now: t0})
	ctx := context.Background()
	require.NoError(t, o.FetchDue(ctx, false))
	require.NoError(t, o.SubmitGrade(ctx, flashcard.Easy))
	require.True(t, o.Snapshot().IsFinished)

	// reset refetches inside the throttle window
	require.NoError(t, o.ResetReview(ctx))
	snapshot := o.Snapshot()
	assert.Equal(t, Active, snapshot.State)
	assert.Equal(t, 0, snapshot.Index)
	assert.Equal(t, 2, snapshot.Total)
}

func TestOrchestrator_DueCountForUser(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *mock_identity.MockProvider, s *mock_store.MockCardStore)
		want  int
	}{
		{
			name: "counts owned due cards",
			setup: func(p *mock_identity.MockProvider, s *mock_store.MockCardStore) {
				p.EXPECT().ActiveUserID().Return("user-1", true).AnyTimes()
				s.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
				s.EXPECT().LoadCards(gomock.Any()).Return(storedCards(), nil)
			},
			want: 2,
		},
		{
			name: "other user",
			setup: func(p *mock_identity.MockProvider, s *mock_store.MockCardStore) {
				p.EXPECT().ActiveUserID().Return("user-2", true).AnyTimes()
				s.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
				s.EXPECT().LoadCards(gomock.Any()).Return(storedCards(), nil)
			},
			want: 1,
		},
		{
			name: "no active user",
			setup: func(p *mock_identity.MockProvider, s *mock_store.MockCardStore) {
				p.EXPECT().ActiveUserID().Return("", false)
			},
			want: 0,
		},
		{
			name: "read failure",
			setup: func(p *mock_identity.MockProvider, s *mock_store.MockCardStore) {
				p.EXPECT().ActiveUserID().Return("user-1", true).AnyTimes()
				s.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil)
				s.EXPECT().LoadCards(gomock.Any()).Return(nil, errors.New("corrupt"))
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mock_identity.NewMockProvider(ctrl)
			cardStore := mock_store.NewMockCardStore(ctrl)
			tt.setup(provider, cardStore)

			o := NewOrchestrator(cardStore, provider,
				WithOrchestratorClock(func() time.Time { return t0 }),
				WithLogger(discardLogger()),
			)
			assert.Equal(t, tt.want, o.DueCountForUser(context.Background()))
			assert.Equal(t, Idle, o.Snapshot().State, "counting does not touch the session")
		})
	}
}
