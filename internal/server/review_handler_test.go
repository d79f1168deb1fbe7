package server

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

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/identity"
	mock_store "github.com/at-ishikawa/flashcards/internal/mocks/store"
	"github.com/at-ishikawa/flashcards/internal/review"
)

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func testDecks() []flashcard.Deck {
	return []flashcard.Deck{{ID: "deck-1", UserID: "user-1", Name: "Capitals"}}
}

func testCards() []flashcard.Card {
	return []flashcard.Card{
		{ID: "card-1", DeckID: "deck-1", Question: "Capital of Japan?", Answer: "Tokyo", EasinessFactor: 2.5},
	}
}

func newTestHandler(t *testing.T, setup func(s *mock_store.MockCardStore)) *ReviewHandler {
	t.Helper()
	ctrl := gomock.NewController(t)
	cardStore := mock_store.NewMockCardStore(ctrl)
	cardStore.EXPECT().LoadDecks(gomock.Any()).Return(testDecks(), nil).AnyTimes()
	cardStore.EXPECT().LoadCards(gomock.Any()).Return(testCards(), nil).AnyTimes()
	if setup != nil {
		setup(cardStore)
	}

	clock := func() time.Time { return testNow }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := review.NewOrchestrator(cardStore, identity.Static("user-1"),
		review.WithSession(review.NewSession(review.WithClock(clock), review.WithRand(rand.New(rand.NewSource(1))))),
		review.WithOrchestratorClock(clock),
		review.WithLogger(logger),
	)
	return NewReviewHandler(orchestrator, logger)
}

func TestReviewHandler_FetchDue(t *testing.T) {
	handler := newTestHandler(t, nil)

	resp, err := handler.FetchDue(context.Background(), connect.NewRequest(wrapperspb.Bool(false)))
	require.NoError(t, err)

	fields := resp.Msg.AsMap()
	assert.Equal(t, "active", fields["state"])
	assert.Equal(t, float64(1), fields["total"])
	assert.Equal(t, float64(0), fields["index"])
	assert.Equal(t, false, fields["answer_visible"])
	card, ok := fields["current_card"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "card-1", card["id"])
	assert.Equal(t, "Tokyo", card["answer"])
	assert.Nil(t, card["next_review_at"])
}

func TestReviewHandler_SubmitGrade(t *testing.T) {
	tests := []struct {
		name     string
		grade    int32
		setup    func(s *mock_store.MockCardStore)
		wantCode connect.Code
		wantErr  bool
	}{
		{
			name:     "returns INVALID_ARGUMENT for a grade above 5",
			grade:    7,
			wantCode: connect.CodeInvalidArgument,
			wantErr:  true,
		},
		{
			name:     "returns INVALID_ARGUMENT for a negative grade",
			grade:    -1,
			wantCode: connect.CodeInvalidArgument,
			wantErr:  true,
		},
		{
			name:  "returns UNAVAILABLE when the card cannot be saved",
			grade: int32(flashcard.Good),
			setup: func(s *mock_store.MockCardStore) {
				s.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
			},
			wantCode: connect.CodeUnavailable,
			wantErr:  true,
		},
		{
			name:  "advances past the graded card",
			grade: int32(flashcard.Good),
			setup: func(s *mock_store.MockCardStore) {
				s.EXPECT().SaveCard(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c flashcard.Card) error {
					assert.Equal(t, 1, c.Repetitions)
					assert.Equal(t, 1, c.Interval)
					return nil
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, tt.setup)
			_, err := handler.FetchDue(context.Background(), connect.NewRequest(wrapperspb.Bool(false)))
			require.NoError(t, err)

			resp, err := handler.SubmitGrade(context.Background(), connect.NewRequest(wrapperspb.Int32(tt.grade)))

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, resp)
				connectErr, ok := err.(*connect.Error)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, connectErr.Code())
				return
			}

			require.NoError(t, err)
			fields := resp.Msg.AsMap()
			assert.Equal(t, "finished", fields["state"])
			assert.Equal(t, float64(100), fields["progress"])
			assert.Nil(t, fields["current_card"])
		})
	}
}

func TestReviewHandler_SubmitGradeErrorDetails(t *testing.T) {
	handler := newTestHandler(t, nil)

	_, err := handler.SubmitGrade(context.Background(), connect.NewRequest(wrapperspb.Int32(9)))
	require.Error(t, err)

	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	require.Len(t, connectErr.Details(), 1)

	value, err := connectErr.Details()[0].Value()
	require.NoError(t, err)
	badRequest, ok := value.(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, badRequest.GetFieldViolations(), 1)
	assert.Equal(t, "value", badRequest.GetFieldViolations()[0].GetField())
}

func TestReviewHandler_ToggleAnswer(t *testing.T) {
	t.Run("returns FAILED_PRECONDITION before a fetch", func(t *testing.T) {
		handler := newTestHandler(t, nil)

		_, err := handler.ToggleAnswer(context.Background(), connect.NewRequest(&emptypb.Empty{}))
		require.Error(t, err)
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	})

	t.Run("shows the answer", func(t *testing.T) {
		handler := newTestHandler(t, nil)
		_, err := handler.FetchDue(context.Background(), connect.NewRequest(wrapperspb.Bool(false)))
		require.NoError(t, err)

		resp, err := handler.ToggleAnswer(context.Background(), connect.NewRequest(&emptypb.Empty{}))
		require.NoError(t, err)
		assert.Equal(t, true, resp.Msg.AsMap()["answer_visible"])
	})
}

func TestReviewHandler_GetDueCount(t *testing.T) {
	handler := newTestHandler(t, nil)

	resp, err := handler.GetDueCount(context.Background(), connect.NewRequest(&emptypb.Empty{}))
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.Msg.GetValue())
}

func TestReviewHandler_Reset(t *testing.T) {
	handler := newTestHandler(t, func(s *mock_store.MockCardStore) {
		s.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(nil)
	})
	_, err := handler.FetchDue(context.Background(), connect.NewRequest(wrapperspb.Bool(false)))
	require.NoError(t, err)
	_, err = handler.SubmitGrade(context.Background(), connect.NewRequest(wrapperspb.Int32(int32(flashcard.Perfect))))
	require.NoError(t, err)

	resp, err := handler.Reset(context.Background(), connect.NewRequest(&emptypb.Empty{}))
	require.NoError(t, err)
	fields := resp.Msg.AsMap()
	assert.Equal(t, "active", fields["state"])
	assert.Equal(t, float64(0), fields["index"])
}

func TestSnapshotToStruct(t *testing.T) {
	next := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	msg, err := SnapshotToStruct(review.Snapshot{
		State: review.Active,
		CurrentCard: &flashcard.Card{
			ID: "card-1", DeckID: "deck-1", Question: "Q?", Answer: "A",
			EasinessFactor: 2.36, Interval: 6, Repetitions: 2, NextReviewAt: &next,
		},
		Progress: 50,
		Index:    1,
		Total:    2,
	})
	require.NoError(t, err)

	card := msg.AsMap()["current_card"].(map[string]any)
	assert.Equal(t, "2025-03-16T00:00:00Z", card["next_review_at"])
	assert.InDelta(t, 2.36, card["easiness_factor"], 1e-9)
	assert.Equal(t, float64(6), card["interval"])
}

func TestNewHTTPHandler(t *testing.T) {
	handler := newTestHandler(t, nil)
	srv := httptest.NewServer(NewHTTPHandler(handler, []string{"http://localhost:3000"}))
	defer srv.Close()

	t.Run("serves connect requests", func(t *testing.T) {
		client := connect.NewClient[wrapperspb.BoolValue, structpb.Struct](
			srv.Client(), srv.URL+FetchDueProcedure, connect.WithProtoJSON(),
		)
		resp, err := client.CallUnary(context.Background(), connect.NewRequest(wrapperspb.Bool(true)))
		require.NoError(t, err)
		assert.Equal(t, "active", resp.Msg.AsMap()["state"])
	})

	t.Run("answers preflight for allowed origins", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+FetchDueProcedure, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:3000")

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("ignores other origins", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+FetchDueProcedure, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://evil.example")

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("health check", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
