package cli

import (
	"context"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/review"
)

//go:generate mockgen -source=reviewer.go -destination=../mocks/cli/mock_reviewer.go -package=mock_cli Reviewer

// Reviewer is a review session driven either in process or through a server.
type Reviewer interface {
	FetchDue(ctx context.Context, force bool) (review.Snapshot, error)
	SubmitGrade(ctx context.Context, grade flashcard.Grade) (review.Snapshot, error)
	ToggleAnswer(ctx context.Context) (review.Snapshot, error)
	Reset(ctx context.Context) (review.Snapshot, error)
	DueCount(ctx context.Context) (int, error)
}

// LocalReviewer runs the session in this process.
type LocalReviewer struct {
	orchestrator *review.Orchestrator
}

func NewLocalReviewer(orchestrator *review.Orchestrator) *LocalReviewer {
	return &LocalReviewer{orchestrator: orchestrator}
}

func (r *LocalReviewer) FetchDue(ctx context.Context, force bool) (review.Snapshot, error) {
	err := r.orchestrator.FetchDue(ctx, force)
	return r.orchestrator.Snapshot(), err
}

func (r *LocalReviewer) SubmitGrade(ctx context.Context, grade flashcard.Grade) (review.Snapshot, error) {
	err := r.orchestrator.SubmitGrade(ctx, grade)
	return r.orchestrator.Snapshot(), err
}

func (r *LocalReviewer) ToggleAnswer(ctx context.Context) (review.Snapshot, error) {
	err := r.orchestrator.ToggleAnswer()
	return r.orchestrator.Snapshot(), err
}

func (r *LocalReviewer) Reset(ctx context.Context) (review.Snapshot, error) {
	err := r.orchestrator.ResetReview(ctx)
	return r.orchestrator.Snapshot(), err
}

func (r *LocalReviewer) DueCount(ctx context.Context) (int, error) {
	return r.orchestrator.DueCountForUser(ctx), nil
}
