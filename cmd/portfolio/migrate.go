package main

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/database"
	"github.com/deppfellow/portfolio-api/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations (postgres driver only)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		log := logger.NewLogger(cfg.Observability)

		return database.Migrate(cmd.Context(), &log, cfg)
	},
}
