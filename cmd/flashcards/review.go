package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashcards/internal/bootstrap"
	"github.com/at-ishikawa/flashcards/internal/cli"
	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/internal/remote"
)

// useConfiguredRemote is the value of a bare --remote flag.
const useConfiguredRemote = "configured"

// newReviewer returns a remote reviewer when remoteURL is set, and a local one otherwise.
func newReviewer(app *bootstrap.App, cfg *config.Config, remoteURL string) (cli.Reviewer, error) {
	switch remoteURL {
	case "":
		s, err := openStore(app, cfg)
		if err != nil {
			return nil, err
		}
		return cli.NewLocalReviewer(newOrchestrator(cfg, s)), nil
	case useConfiguredRemote:
		remoteURL = cfg.Remote.BaseURL
	}
	return remote.NewClient(remoteURL, cfg.Remote.Timeout()), nil
}

func addRemoteFlag(cmd *cobra.Command, remoteURL *string) {
	cmd.Flags().StringVar(remoteURL, "remote", "", "use the flashcards server at --remote=URL, or at remote.base_url when given without a value")
	cmd.Flags().Lookup("remote").NoOptDefVal = useConfiguredRemote
}

func newReviewCommand() *cobra.Command {
	var remoteURL string
	var force bool
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the cards that are due",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if remoteURL == "" {
				if _, err := requireUser(cfg); err != nil {
					return err
				}
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				reviewer, err := newReviewer(app, cfg, remoteURL)
				if err != nil {
					return err
				}
				return cli.NewReviewCLI(reviewer, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx, force)
			})
		},
	}
	addRemoteFlag(cmd, &remoteURL)
	cmd.Flags().BoolVar(&force, "force", false, "reload due cards even inside the fetch throttle window")
	return cmd
}

func newDueCommand() *cobra.Command {
	var remoteURL string
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show how many cards are due",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				reviewer, err := newReviewer(app, cfg, remoteURL)
				if err != nil {
					return err
				}
				count, err := reviewer.DueCount(ctx)
				if err != nil {
					return fmt.Errorf("DueCount() > %w", err)
				}
				if count == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No cards to review")
					return nil
				}
				_, _ = color.New(color.FgYellow, color.Bold).Fprintf(cmd.OutOrStdout(), "You have %d cards to review\n", count)
				return nil
			})
		},
	}
	addRemoteFlag(cmd, &remoteURL)
	return cmd
}
