// Package bootstrap runs a command until it returns or the process is signaled,
// then releases whatever the command opened.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultShutdownTimeout bounds the time given to shutdown hooks.
const DefaultShutdownTimeout = 10 * time.Second

// App owns the cleanup of stores and servers opened by a command.
type App struct {
	mu              sync.Mutex
	hooks           []hook
	logger          *slog.Logger
	shutdownTimeout time.Duration
	signals         []os.Signal
}

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// Option configures an App.
type Option func(*App)

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		a.shutdownTimeout = d
	}
}

// New creates a new App that stops on SIGINT or SIGTERM.
func New(opts ...Option) *App {
	a := &App{
		logger:          slog.Default(),
		shutdownTimeout: DefaultShutdownTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddShutdownHook registers fn under name. Hooks run in reverse order of
// registration and may be added from inside the run function.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// AddCloser registers a Close method as a shutdown hook.
func (a *App) AddCloser(name string, closer interface{ Close() error }) {
	a.AddShutdownHook(name, func(context.Context) error {
		return closer.Close()
	})
}

// Run executes run with a context canceled on signal. Shutdown hooks run
// either way: after run returns, or as soon as a signal arrives. The error of
// run is joined with hook errors.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down", "reason", context.Cause(ctx))
	case runErr = <-errCh:
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancelShutdown()
	return errors.Join(runErr, a.shutdown(shutdownCtx))
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			a.logger.Error("shutdown hook failed", "hook", hooks[i].name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
