package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/importer"
	"github.com/at-ishikawa/flashcards/internal/store"
)

func newCardCommand() *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}
	cardCmd.AddCommand(
		newCardAddCommand(),
		newCardListCommand(),
		newCardDeleteCommand(),
		newCardImportCommand(),
	)
	return cardCmd
}

func newCardAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <deck-id> <question> <answer>",
		Short: "Add a card to a deck",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, s store.Store) error {
				userID, err := requireUser(cfg)
				if err != nil {
					return err
				}
				deck, err := findOwnedDeck(ctx, s, userID, args[0])
				if err != nil {
					return err
				}
				card := flashcard.NewCard(deck.ID, args[1], args[2], time.Now())
				if err := flashcard.ValidateCard(card); err != nil {
					return err
				}
				if err := s.SaveCard(ctx, card); err != nil {
					return fmt.Errorf("SaveCard() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added card %s to %s\n", card.ID, deck.Name)
				return nil
			})
		},
	}
}

func newCardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <deck-id>",
		Short: "List the cards of a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, s store.Store) error {
				userID, err := requireUser(cfg)
				if err != nil {
					return err
				}
				deck, err := findOwnedDeck(ctx, s, userID, args[0])
				if err != nil {
					return err
				}
				cards, err := s.LoadCards(ctx)
				if err != nil {
					return fmt.Errorf("LoadCards() > %w", err)
				}

				now := time.Now()
				out := cmd.OutOrStdout()
				bold := color.New(color.Bold)
				for _, c := range flashcard.CardsInDeck(cards, deck.ID) {
					next := "new"
					if c.NextReviewAt != nil {
						next = c.NextReviewAt.Format("2006-01-02")
					}
					marker := " "
					if c.IsDue(now) {
						marker = "*"
					}
					_, _ = fmt.Fprintf(out, "%s %s\t%s\t%s\t%s\n", marker, c.ID, bold.Sprint(c.Question), c.Answer, next)
				}
				return nil
			})
		},
	}
}

func newCardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, s store.Store) error {
				userID, err := requireUser(cfg)
				if err != nil {
					return err
				}
				cards, err := s.LoadCards(ctx)
				if err != nil {
					return fmt.Errorf("LoadCards() > %w", err)
				}
				for _, c := range cards {
					if c.ID != args[0] {
						continue
					}
					if _, err := findOwnedDeck(ctx, s, userID, c.DeckID); err != nil {
						return err
					}
					if err := s.DeleteCard(ctx, c.ID); err != nil {
						return fmt.Errorf("DeleteCard() > %w", err)
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted card %s\n", c.ID)
					return nil
				}
				return fmt.Errorf("card %s not found", args[0])
			})
		},
	}
}

func newCardImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <deck-id> <markdown-file>",
		Short: "Import Q:/A: cards from a markdown file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := importer.ParseFile(args[1])
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, s store.Store) error {
				userID, err := requireUser(cfg)
				if err != nil {
					return err
				}
				deck, err := findOwnedDeck(ctx, s, userID, args[0])
				if err != nil {
					return err
				}

				result, err := importer.Import(ctx, s, deck.ID, entries, time.Now())
				out := cmd.OutOrStdout()
				for _, skipped := range result.Skipped {
					_, _ = color.New(color.FgYellow).Fprintf(out, "skipped line %d: %v\n", skipped.Entry.Line, skipped.Reason)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "Imported %d cards into %s\n", len(result.Imported), deck.Name)
				return nil
			})
		},
	}
}
