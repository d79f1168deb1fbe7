package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/review"
)

var errEnd = errors.New("end")

// ReviewCLI walks the user through the due cards one prompt at a time.
type ReviewCLI struct {
	reviewer     Reviewer
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	snapshot     review.Snapshot
	reviewed     int

	bold   *color.Color
	italic *color.Color
	green  *color.Color
	red    *color.Color
}

// NewReviewCLI creates a ReviewCLI reading answers from in and printing to out.
func NewReviewCLI(reviewer Reviewer, in io.Reader, out io.Writer) *ReviewCLI {
	return &ReviewCLI{
		reviewer:     reviewer,
		stdinReader:  bufio.NewReader(in),
		stdoutWriter: out,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
	}
}

// Run fetches the due cards and reviews them until the queue is done,
// the user quits, or ctx is canceled.
func (cli *ReviewCLI) Run(ctx context.Context, force bool) error {
	snapshot, err := cli.reviewer.FetchDue(ctx, force)
	if err != nil {
		return fmt.Errorf("reviewer.FetchDue() > %w", err)
	}
	cli.snapshot = snapshot

	for {
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(cli.stdoutWriter, "Interrupted, exiting...")
			return nil
		default:
		}

		if err := cli.Session(ctx); err != nil {
			if errors.Is(err, errEnd) {
				return nil
			}
			return err
		}
	}
}

// Session reviews the current card.
func (cli *ReviewCLI) Session(ctx context.Context) error {
	if cli.snapshot.IsFinished {
		_, _ = cli.green.Fprintf(cli.stdoutWriter, "Review finished! %d cards reviewed.\n", cli.reviewed)
		return cli.reviewAgain(ctx)
	}
	card := cli.snapshot.CurrentCard
	if card == nil {
		_, _ = fmt.Fprintln(cli.stdoutWriter, "No cards are due. Come back later!")
		return errEnd
	}

	_, _ = fmt.Fprintf(cli.stdoutWriter, "[%d/%d] %.0f%%\n", cli.snapshot.Index+1, cli.snapshot.Total, cli.snapshot.Progress)
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "Q: %s\n", card.Question)

	line, err := cli.prompt("Press Enter to show the answer (q to quit): ")
	if err != nil {
		return err
	}
	if isQuit(line) {
		return errEnd
	}

	snapshot, err := cli.reviewer.ToggleAnswer(ctx)
	if err != nil {
		return fmt.Errorf("reviewer.ToggleAnswer() > %w", err)
	}
	cli.snapshot = snapshot
	_, _ = fmt.Fprintf(cli.stdoutWriter, "A: %s\n", cli.italic.Sprint(card.Answer))

	for {
		line, err := cli.prompt(gradePrompt())
		if err != nil {
			return err
		}
		if isQuit(line) {
			return errEnd
		}
		grade, err := flashcard.ParseGrade(line)
		if err != nil {
			_, _ = cli.red.Fprintf(cli.stdoutWriter, "%v\n", err)
			continue
		}

		snapshot, err := cli.reviewer.SubmitGrade(ctx, grade)
		if errors.Is(err, review.ErrStorageWrite) {
			_, _ = cli.red.Fprintf(cli.stdoutWriter, "Could not save the card, please grade it again: %v\n", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("reviewer.SubmitGrade() > %w", err)
		}

		cli.snapshot = snapshot
		cli.reviewed++
		if grade.IsPassing() {
			_, _ = cli.green.Fprintf(cli.stdoutWriter, "✅ %s\n\n", grade)
		} else {
			_, _ = cli.red.Fprintf(cli.stdoutWriter, "❌ %s, this card will come back tomorrow\n\n", grade)
		}
		return nil
	}
}

// reviewAgain offers to restart a finished review with a fresh fetch.
func (cli *ReviewCLI) reviewAgain(ctx context.Context) error {
	line, err := cli.prompt("Review again? (y/N): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(line, "y") && !strings.EqualFold(line, "yes") {
		return errEnd
	}

	snapshot, err := cli.reviewer.Reset(ctx)
	if err != nil {
		return fmt.Errorf("reviewer.Reset() > %w", err)
	}
	cli.snapshot = snapshot
	cli.reviewed = 0
	return nil
}

// prompt reads one line. End of input ends the review.
func (cli *ReviewCLI) prompt(message string) (string, error) {
	_, _ = fmt.Fprint(cli.stdoutWriter, message)
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(cli.stdoutWriter)
			return "", errEnd
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func gradePrompt() string {
	names := make([]string, 0, len(flashcard.Grades()))
	for _, g := range flashcard.Grades() {
		names = append(names, fmt.Sprintf("%d=%s", int(g), g))
	}
	return "Grade (" + strings.Join(names, ", ") + ", q to quit): "
}

func isQuit(line string) bool {
	return strings.EqualFold(line, "q") || strings.EqualFold(line, "quit")
}
