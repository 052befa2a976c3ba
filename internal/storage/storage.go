// Package storage keeps uploaded files.
//
// The upload service only sees the Storage interface; the local disk
// backend serves long-running deployments and the S3 backend serves
// serverless ones, where the local filesystem does not persist.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/deppfellow/portfolio-api/internal/config"
)

// ErrNotExist is returned when deleting a file that is not stored.
var ErrNotExist = errors.New("file does not exist")

// PublicPrefix is the URL path local uploads are served under.
const PublicPrefix = "/uploads/"

// Storage stores blobs under flat names.
type Storage interface {
	// Save writes r under name.
	Save(ctx context.Context, name, contentType string, r io.Reader) error

	// Delete removes name. ErrNotExist when it is not stored.
	Delete(ctx context.Context, name string) error

	// URL is the link clients use to fetch name. It is a path for local
	// storage and absolute for object storage.
	URL(name string) string

	Name() string
}

// New builds the backend selected in configuration.
func New(ctx context.Context, cfg config.UploadConfig, logger *zerolog.Logger) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocal(cfg.Dir)
	case "s3":
		return NewS3(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}
