// Command portfolio runs the portfolio API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/logger"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio API server",
	Long: `Portfolio API serves projects, skills, contacts, profile, resume and
translations to the portfolio front-end, with a single-admin login for edits.

Configuration is read from PORTFOLIO_* environment variables (and a .env
file when present). Run without arguments to start the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, adminCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	log      *zerolog.Logger
	server   *server.Server
	repos    *repository.Repositories
	services *service.Services
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, err
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		loggerService.Shutdown()
		return nil, err
	}

	return &app{cfg: cfg, log: &log, server: srv, repos: repos, services: services}, nil
}

// close releases the store and flushes telemetry for one-shot commands.
func (a *app) close(ctx context.Context) {
	if err := a.server.DB.Close(ctx); err != nil {
		a.log.Warn().Err(err).Msg("failed to close database")
	}
	a.server.LoggerService.Shutdown()
}
