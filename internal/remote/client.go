// Package remote calls a flashcards server over the Connect JSON protocol.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/review"
	"github.com/at-ishikawa/flashcards/internal/server"
)

// Error is a Connect error returned by the server.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap maps Connect codes onto the errors a local review would return.
func (e *Error) Unwrap() error {
	switch e.Code {
	case "unavailable":
		return review.ErrStorageWrite
	case "invalid_argument":
		return flashcard.ErrInvalidGrade
	case "failed_precondition":
		return review.ErrNoCurrentCard
	}
	return nil
}

type snapshot struct {
	State         string          `json:"state"`
	CurrentCard   *flashcard.Card `json:"current_card"`
	AnswerVisible bool            `json:"answer_visible"`
	Progress      float64         `json:"progress"`
	Index         int             `json:"index"`
	Total         int             `json:"total"`
	IsFinished    bool            `json:"is_finished"`
	IsLoading     bool            `json:"is_loading"`
}

func (s snapshot) toReview() (review.Snapshot, error) {
	state, err := review.ParseState(s.State)
	if err != nil {
		return review.Snapshot{}, err
	}
	return review.Snapshot{
		State:         state,
		CurrentCard:   s.CurrentCard,
		AnswerVisible: s.AnswerVisible,
		Progress:      s.Progress,
		Index:         s.Index,
		Total:         s.Total,
		IsFinished:    s.IsFinished,
		IsLoading:     s.IsLoading,
	}, nil
}

// Client drives a review session hosted by a flashcards server.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Connect-Protocol-Version", "1")
	return &Client{http: client}
}

func (c *Client) FetchDue(ctx context.Context, force bool) (review.Snapshot, error) {
	return c.callSnapshot(ctx, server.FetchDueProcedure, strconv.FormatBool(force))
}

func (c *Client) SubmitGrade(ctx context.Context, grade flashcard.Grade) (review.Snapshot, error) {
	return c.callSnapshot(ctx, server.SubmitGradeProcedure, strconv.Itoa(int(grade)))
}

func (c *Client) ToggleAnswer(ctx context.Context) (review.Snapshot, error) {
	return c.callSnapshot(ctx, server.ToggleAnswerProcedure, "{}")
}

func (c *Client) Reset(ctx context.Context) (review.Snapshot, error) {
	return c.callSnapshot(ctx, server.ResetProcedure, "{}")
}

func (c *Client) Snapshot(ctx context.Context) (review.Snapshot, error) {
	return c.callSnapshot(ctx, server.GetSnapshotProcedure, "{}")
}

func (c *Client) DueCount(ctx context.Context) (int, error) {
	body, err := c.call(ctx, server.GetDueCountProcedure, "{}")
	if err != nil {
		return 0, err
	}
	var count int32
	if err := json.Unmarshal(body, &count); err != nil {
		return 0, fmt.Errorf("json.Unmarshal(%s) > %w", string(body), err)
	}
	return int(count), nil
}

func (c *Client) callSnapshot(ctx context.Context, procedure, body string) (review.Snapshot, error) {
	raw, err := c.call(ctx, procedure, body)
	if err != nil {
		return review.Snapshot{}, err
	}
	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return review.Snapshot{}, fmt.Errorf("json.Unmarshal(%s) > %w", procedure, err)
	}
	return s.toReview()
}

func (c *Client) call(ctx context.Context, procedure, body string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(procedure)
	if err != nil {
		return nil, fmt.Errorf("POST %s > %w", procedure, err)
	}
	if res.StatusCode() != http.StatusOK {
		var connectErr Error
		if jsonErr := json.Unmarshal(res.Body(), &connectErr); jsonErr != nil || connectErr.Code == "" {
			return nil, fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
		}
		return nil, &connectErr
	}
	return res.Body(), nil
}

// IsCode reports whether err is a server error with the given Connect code.
func IsCode(err error, code string) bool {
	var remoteErr *Error
	return errors.As(err, &remoteErr) && remoteErr.Code == code
}
