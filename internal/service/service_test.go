package service_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/database"
	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
	"github.com/deppfellow/portfolio-api/internal/storage"
)

type fixture struct {
	cfg      *config.Config
	server   *server.Server
	repos    *repository.Repositories
	services *service.Services
	uploads  string
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Upload.Dir = t.TempDir()
	cfg.Translations.SourceDir = t.TempDir()
	for _, m := range mutate {
		m(cfg)
	}

	logger := zerolog.Nop()
	blobs, err := storage.NewLocal(cfg.Upload.Dir)
	require.NoError(t, err)

	s := server.NewWithDeps(cfg, &logger, nil, database.NewMemory(&logger), blobs)
	repos := repository.NewRepositories(s)
	services, err := service.NewServices(s, repos)
	require.NoError(t, err)

	return &fixture{cfg: cfg, server: s, repos: repos, services: services, uploads: cfg.Upload.Dir}
}

func requireHTTPError(t *testing.T, err error, status int, message string) {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, status, httpErr.Status)
	if message != "" {
		require.Equal(t, message, httpErr.Message)
	}
}
