package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashcards/internal/bootstrap"
	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/internal/identity"
	"github.com/at-ishikawa/flashcards/internal/review"
	"github.com/at-ishikawa/flashcards/internal/server"
	"github.com/at-ishikawa/flashcards/internal/store"
)

var (
	configFile string
	userFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "flashcards-server",
		Short:         "Flashcards review service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().StringVar(&userFlag, "user", "", "user whose cards are reviewed (overrides review.user_id)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.Default()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	app := bootstrap.New(
		bootstrap.WithLogger(logger),
		bootstrap.WithShutdownTimeout(cfg.Server.ShutdownTimeout()),
	)
	userID := userFlag
	if userID == "" {
		userID = cfg.Review.UserID
	}
	if userID == "" {
		return errors.New("no user to serve: pass --user or set FLASHCARDS_USER_ID")
	}

	cardStore, err := store.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("store.Open() > %w", err)
	}
	app.AddCloser("store", cardStore)

	orchestrator := review.NewOrchestrator(cardStore, identity.Static(userID),
		review.WithSession(review.NewSession(review.WithThrottle(cfg.Review.FetchThrottle()))),
		review.WithLogger(logger),
	)
	handler := server.NewReviewHandler(orchestrator, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.NewHTTPHandler(handler, cfg.Server.CORS.AllowedOrigins),
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", "addr", srv.Addr, "user_id", userID, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
