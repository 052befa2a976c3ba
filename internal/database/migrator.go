package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/portfolio-api/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the Postgres documents schema up to date. It is a no-op
// for the other drivers, which need no schema.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	if cfg.Database.Driver != "postgres" {
		logger.Info().Str("driver", cfg.Database.Driver).Msg("no schema migrations for this driver")
		return nil
	}

	conn, err := pgx.Connect(ctx, PostgresDSN(cfg))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	return migrateConn(ctx, conn, logger)
}

func migratePool(ctx context.Context, pool *pgxpool.Pool, logger *zerolog.Logger) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection for migrations: %w", err)
	}
	defer conn.Release()

	return migrateConn(ctx, conn.Conn(), logger)
}

func migrateConn(ctx context.Context, conn *pgx.Conn, logger *zerolog.Logger) error {
	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
