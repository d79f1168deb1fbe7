// Package server exposes the review engine over Connect RPC.
//
// The service uses protobuf well-known types for its messages, so any Connect,
// gRPC or gRPC-Web client can call it with plain JSON:
//
//	POST /flashcards.v1.ReviewService/FetchDue     BoolValue (force)  -> Struct (snapshot)
//	POST /flashcards.v1.ReviewService/SubmitGrade  Int32Value (grade) -> Struct (snapshot)
//	POST /flashcards.v1.ReviewService/ToggleAnswer Empty              -> Struct (snapshot)
//	POST /flashcards.v1.ReviewService/Reset        Empty              -> Struct (snapshot)
//	POST /flashcards.v1.ReviewService/GetSnapshot  Empty              -> Struct (snapshot)
//	POST /flashcards.v1.ReviewService/GetDueCount  Empty              -> Int32Value
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/review"
)

const ServiceName = "flashcards.v1.ReviewService"

const (
	FetchDueProcedure     = "/" + ServiceName + "/FetchDue"
	SubmitGradeProcedure  = "/" + ServiceName + "/SubmitGrade"
	ToggleAnswerProcedure = "/" + ServiceName + "/ToggleAnswer"
	ResetProcedure        = "/" + ServiceName + "/Reset"
	GetSnapshotProcedure  = "/" + ServiceName + "/GetSnapshot"
	GetDueCountProcedure  = "/" + ServiceName + "/GetDueCount"
)

// ReviewHandler serves one review session. RPCs are serialized because the
// orchestrator is single-threaded.
type ReviewHandler struct {
	mu           sync.Mutex
	orchestrator *review.Orchestrator
	logger       *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(orchestrator *review.Orchestrator, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{orchestrator: orchestrator, logger: logger}
}

// NewReviewServiceHandler returns the path prefix and handler for the service.
func NewReviewServiceHandler(h *ReviewHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(FetchDueProcedure, connect.NewUnaryHandler(FetchDueProcedure, h.FetchDue, opts...))
	mux.Handle(SubmitGradeProcedure, connect.NewUnaryHandler(SubmitGradeProcedure, h.SubmitGrade, opts...))
	mux.Handle(ToggleAnswerProcedure, connect.NewUnaryHandler(ToggleAnswerProcedure, h.ToggleAnswer, opts...))
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, h.Reset, opts...))
	mux.Handle(GetSnapshotProcedure, connect.NewUnaryHandler(GetSnapshotProcedure, h.GetSnapshot, opts...))
	mux.Handle(GetDueCountProcedure, connect.NewUnaryHandler(GetDueCountProcedure, h.GetDueCount, opts...))
	return "/" + ServiceName + "/", mux
}

// FetchDue loads due cards, honoring the fetch throttle unless force is set.
func (h *ReviewHandler) FetchDue(
	ctx context.Context,
	req *connect.Request[wrapperspb.BoolValue],
) (*connect.Response[structpb.Struct], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.orchestrator.FetchDue(ctx, req.Msg.GetValue()); err != nil {
		return nil, connect.NewError(connect.CodeCanceled, fmt.Errorf("fetch due cards: %w", err))
	}
	return h.snapshotResponse()
}

// SubmitGrade grades the current card.
func (h *ReviewHandler) SubmitGrade(
	ctx context.Context,
	req *connect.Request[wrapperspb.Int32Value],
) (*connect.Response[structpb.Struct], error) {
	grade := flashcard.Grade(req.Msg.GetValue())
	if !grade.IsValid() {
		return nil, invalidGradeError(req.Msg.GetValue())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.orchestrator.SubmitGrade(ctx, grade); err != nil {
		if errors.Is(err, review.ErrStorageWrite) {
			return nil, connect.NewError(connect.CodeUnavailable, err)
		}
		if errors.Is(err, flashcard.ErrInvalidGrade) {
			return nil, invalidGradeError(req.Msg.GetValue())
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return h.snapshotResponse()
}

// ToggleAnswer shows or hides the answer.
func (h *ReviewHandler) ToggleAnswer(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.orchestrator.ToggleAnswer(); err != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return h.snapshotResponse()
}

// Reset restarts the review with a forced fetch.
func (h *ReviewHandler) Reset(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.orchestrator.ResetReview(ctx); err != nil {
		return nil, connect.NewError(connect.CodeCanceled, fmt.Errorf("reset review: %w", err))
	}
	return h.snapshotResponse()
}

func (h *ReviewHandler) GetSnapshot(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotResponse()
}

// GetDueCount counts due cards from a fresh load.
func (h *ReviewHandler) GetDueCount(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[wrapperspb.Int32Value], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := h.orchestrator.DueCountForUser(ctx)
	return connect.NewResponse(wrapperspb.Int32(int32(count))), nil
}

func (h *ReviewHandler) snapshotResponse() (*connect.Response[structpb.Struct], error) {
	msg, err := SnapshotToStruct(h.orchestrator.Snapshot())
	if err != nil {
		h.logger.Error("failed to encode snapshot", "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("encode snapshot: %w", err))
	}
	return connect.NewResponse(msg), nil
}

func invalidGradeError(value int32) *connect.Error {
	connectErr := connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %d", flashcard.ErrInvalidGrade, value))
	if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{
				Field:       "value",
				Description: fmt.Sprintf("grade must be between %d and %d", flashcard.Incorrect, flashcard.Perfect),
			},
		},
	}); detailErr == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}

// SnapshotToStruct encodes a session snapshot with snake_case keys.
func SnapshotToStruct(s review.Snapshot) (*structpb.Struct, error) {
	fields := map[string]any{
		"state":          s.State.String(),
		"answer_visible": s.AnswerVisible,
		"progress":       s.Progress,
		"index":          s.Index,
		"total":          s.Total,
		"is_finished":    s.IsFinished,
		"is_loading":     s.IsLoading,
		"current_card":   nil,
	}
	if c := s.CurrentCard; c != nil {
		card := map[string]any{
			"id":              c.ID,
			"deck_id":         c.DeckID,
			"question":        c.Question,
			"answer":          c.Answer,
			"easiness_factor": c.EasinessFactor,
			"interval":        c.Interval,
			"repetitions":     c.Repetitions,
			"next_review_at":  nil,
		}
		if c.NextReviewAt != nil {
			card["next_review_at"] = c.NextReviewAt.Format(time.RFC3339)
		}
		fields["current_card"] = card
	}
	return structpb.NewStruct(fields)
}
