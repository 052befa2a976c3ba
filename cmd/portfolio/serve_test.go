package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/database"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
	"github.com/deppfellow/portfolio-api/internal/storage"
	"github.com/deppfellow/portfolio-api/internal/store"
)

func newTestApp(t *testing.T, dial database.Dialer) *app {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.JWTSecret = "serve-secret"
	cfg.Auth.AdminUsername = "admin"
	cfg.Auth.AdminEmail = "admin@example.com"
	cfg.Auth.AdminPassword = "hunter22"
	cfg.Database.ServerSelectionTimeout = time.Second
	cfg.Upload.Dir = t.TempDir()

	log := zerolog.Nop()
	blobs, err := storage.NewLocal(cfg.Upload.Dir)
	require.NoError(t, err)

	srv := server.NewWithDeps(cfg, &log, nil, database.NewWithDialer("memory", &log, dial), blobs)
	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	require.NoError(t, err)

	return &app{cfg: cfg, log: &log, server: srv, repos: repos, services: services}
}

func TestWarmUpRunsInBackground(t *testing.T) {
	release := make(chan struct{})
	a := newTestApp(t, func(context.Context) (store.Backend, error) {
		<-release
		return store.NewMemory(), nil
	})

	start := time.Now()
	done := a.warmUp(context.Background())
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.False(t, a.server.DB.Connected())

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("warm-up did not finish")
	}

	assert.True(t, a.server.DB.Connected())
	n, err := a.repos.Admins.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWarmUpToleratesUnreachableStore(t *testing.T) {
	a := newTestApp(t, func(context.Context) (store.Backend, error) {
		return nil, errors.New("connection refused")
	})

	select {
	case <-a.warmUp(context.Background()):
	case <-time.After(5 * time.Second):
		t.Fatal("warm-up did not finish")
	}
	assert.False(t, a.server.DB.Connected())
}
