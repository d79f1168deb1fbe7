package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/identity"
	mock_store "github.com/at-ishikawa/flashcards/internal/mocks/store"
	"github.com/at-ishikawa/flashcards/internal/review"
	"github.com/at-ishikawa/flashcards/internal/server"
)

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, setup func(s *mock_store.MockCardStore)) *Client {
	t.Helper()
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)
	cardStore.EXPECT().LoadDecks(gomock.Any()).Return([]flashcard.Deck{
		{ID: "deck-1", UserID: "user-1", Name: "Capitals"},
	}, nil).AnyTimes()
	cardStore.EXPECT().LoadCards(gomock.Any()).Return([]flashcard.Card{
		{ID: "card-1", DeckID: "deck-1", Question: "Capital of Japan?", Answer: "Tokyo", EasinessFactor: 2.5},
		{ID: "card-2", DeckID: "deck-1", Question: "Capital of Peru?", Answer: "Lima", EasinessFactor: 2.5},
	}, nil).AnyTimes()
	if setup != nil {
		setup(cardStore)
	}

	clock := func() time.Time { return testNow }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := review.NewOrchestrator(cardStore, identity.Static("user-1"),
		review.WithSession(review.NewSession(review.WithClock(clock), review.WithRand(rand.New(rand.NewSource(3))))),
		review.WithOrchestratorClock(clock),
		review.WithLogger(logger),
	)

	srv := httptest.NewServer(server.NewHTTPHandler(server.NewReviewHandler(orchestrator, logger), nil))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestClient_FetchDue(t *testing.T) {
	client := newTestServer(t, nil)

	snap, err := client.FetchDue(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, review.Active, snap.State)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 0, snap.Index)
	require.NotNil(t, snap.CurrentCard)
	assert.Contains(t, []string{"card-1", "card-2"}, snap.CurrentCard.ID)
	assert.Nil(t, snap.CurrentCard.NextReviewAt)
}

func TestClient_ReviewFlow(t *testing.T) {
	client := newTestServer(t, func(s *mock_store.MockCardStore) {
		s.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	})
	ctx := context.Background()

	_, err := client.FetchDue(ctx, false)
	require.NoError(t, err)

	snap, err := client.ToggleAnswer(ctx)
	require.NoError(t, err)
	assert.True(t, snap.AnswerVisible)

	snap, err = client.SubmitGrade(ctx, flashcard.Good)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Index)
	assert.InDelta(t, 50, snap.Progress, 1e-9)
	assert.False(t, snap.AnswerVisible)

	snap, err = client.SubmitGrade(ctx, flashcard.Incorrect)
	require.NoError(t, err)
	assert.True(t, snap.IsFinished)
	assert.Equal(t, review.Finished, snap.State)
	assert.Nil(t, snap.CurrentCard)

	snap, err = client.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, review.Active, snap.State)
	assert.Equal(t, 0, snap.Index)

	snap, err = client.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Total)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(s *mock_store.MockCardStore)
		call     func(c *Client) error
		wantErr  error
		wantCode string
	}{
		{
			name: "invalid grade",
			call: func(c *Client) error {
				_, err := c.SubmitGrade(context.Background(), flashcard.Grade(8))
				return err
			},
			wantErr:  flashcard.ErrInvalidGrade,
			wantCode: "invalid_argument",
		},
		{
			name: "toggle without a card",
			call: func(c *Client) error {
				_, err := c.ToggleAnswer(context.Background())
				return err
			},
			wantErr:  review.ErrNoCurrentCard,
			wantCode: "failed_precondition",
		},
		{
			name: "save failure",
			setup: func(s *mock_store.MockCardStore) {
				s.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			call: func(c *Client) error {
				if _, err := c.FetchDue(context.Background(), false); err != nil {
					return err
				}
				_, err := c.SubmitGrade(context.Background(), flashcard.Good)
				return err
			},
			wantErr:  review.ErrStorageWrite,
			wantCode: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, tt.setup)

			err := tt.call(client)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsCode(err, tt.wantCode))
		})
	}
}

func TestClient_DueCount(t *testing.T) {
	client := newTestServer(t, nil)

	count, err := client.DueCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClient_NonConnectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchDue(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 502")
	assert.False(t, IsCode(err, "unavailable"))
}
