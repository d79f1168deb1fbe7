package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/internal/export"
	"github.com/at-ishikawa/flashcards/internal/flashcard"
	"github.com/at-ishikawa/flashcards/internal/store"
)

func newDeckCommand() *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	deckCmd.AddCommand(
		newDeckCreateCommand(),
		newDeckListCommand(),
		newDeckDeleteCommand(),
		newDeckExportCommand(),
	)
	return deckCmd
}

func newDeckCreateCommand() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, s store.Store) error {
				userID, err := requireUser(cfg)
				if err != nil {
					return err
				}
				deck := flashcard.NewDeck(userID, args[0], description, time.Now())
				if err := flashcard.ValidateDeck(deck); err != nil {
					return err
				}
				if err := s.SaveDeck(ctx, deck); err != nil {
					return fmt.Errorf("SaveDeck() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created deck %s (%s)\n", deck.Name, deck.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "deck description")
	return cmd
}

func newDeckListCommand() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, s store.Store) error {
				userID, err := requireUser(cfg)
				if err != nil {
					return err
				}
				decks, err := s.LoadDecks(ctx)
				if err != nil {
					return fmt.Errorf("LoadDecks() > %w", err)
				}
				cards, err := s.LoadCards(ctx)
				if err != nil {
					return fmt.Errorf("LoadCards() > %w", err)
				}

				now := time.Now()
				out := cmd.OutOrStdout()
				for _, d := range flashcard.DecksForUser(decks, userID, search) {
					deckCards := flashcard.CardsInDeck(cards, d.ID)
					due := len(flashcard.SelectDue(deckCards, map[string]struct{}{d.ID: {}}, now))
					_, _ = fmt.Fprintf(out, "%s\t%s\t%d cards\t%d due\n", d.ID, d.Name, len(deckCards), due)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter decks by name")
	return cmd
}

func newDeckDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <deck-id>",
		Short: "Delete a deck and its cards",
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
				if err := s.DeleteDeck(ctx, deck.ID); err != nil {
					return fmt.Errorf("DeleteDeck() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted deck %s\n", deck.Name)
				return nil
			})
		},
	}
}

func newDeckExportCommand() *cobra.Command {
	var withPDF, landscape bool
	var paperSize string
	var templatePath string
	var outputDir string
	cmd := &cobra.Command{
		Use:   "export <deck-id>",
		Short: "Export a deck to markdown, and optionally PDF",
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

				tmpl, err := export.ParseDeckTemplate(templatePath)
				if err != nil {
					return err
				}
				if outputDir == "" {
					outputDir = cfg.Outputs.ExportDirectory
				}
				var pdfOptions *export.PDFOptions
				if withPDF {
					pdfOptions = &export.PDFOptions{PaperSize: paperSize, Landscape: landscape}
				}
				mdPath, pdfPath, err := export.Deck(outputDir, tmpl, deck, flashcard.CardsInDeck(cards, deck.ID), pdfOptions)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", mdPath)
				if pdfPath != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", pdfPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withPDF, "pdf", false, "also render a PDF")
	cmd.Flags().StringVar(&paperSize, "paper", export.DefaultPDFOptions.PaperSize, "PDF paper size (A3, A4, A5, Letter, Legal)")
	cmd.Flags().BoolVar(&landscape, "landscape", false, "print PDF pages in landscape")
	cmd.Flags().StringVar(&templatePath, "template", "", "markdown template file (defaults to the built-in template)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (defaults to outputs.export_directory)")
	return cmd
}
