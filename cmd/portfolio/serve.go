package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/portfolio-api/internal/handler"
	"github.com/deppfellow/portfolio-api/internal/middleware"
	"github.com/deppfellow/portfolio-api/internal/router"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	h := handler.NewHandlers(a.server, a.repos, a.services)
	m := middleware.NewMiddlewares(a.server, a.services.Auth)
	r := router.NewRouter(a.server, h, m)

	a.server.SetupHTTPServer(r)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Long-running processes connect eagerly once the listener is up.
	// Serverless instances connect on first use.
	if !a.cfg.Server.Serverless {
		a.warmUp(ctx)
	}

	select {
	case err := <-errCh:
		if err != nil {
			a.log.Error().Err(err).Msg("server stopped")
			return err
		}
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	a.log.Info().Msg("server exited properly")
	return nil
}

// warmUp dials the store and provisions the default admin in the
// background. A failure is only logged; requests keep retrying the dial.
func (a *app) warmUp(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		connectCtx, cancel := context.WithTimeout(ctx, a.cfg.Database.ServerSelectionTimeout+5*time.Second)
		defer cancel()

		if _, err := a.server.DB.Get(connectCtx); err != nil {
			a.log.Warn().Err(err).Msg("database not reachable at startup, will retry per request")
			return
		}

		created, err := a.services.Auth.EnsureDefaultAdmin(connectCtx)
		switch {
		case err != nil:
			a.log.Warn().Err(err).Msg("failed to ensure default admin")
		case created:
			a.log.Info().Str("username", a.cfg.Auth.AdminUsername).Msg("default admin created")
		}
	}()

	return done
}
