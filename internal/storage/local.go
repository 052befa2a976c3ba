package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Local stores files in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates dir if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &Local{dir: dir}, nil
}

// Dir is the directory files are written to.
func (l *Local) Dir() string { return l.dir }

func (l *Local) Save(ctx context.Context, name, _ string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write upload")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close upload")
	}

	if err := os.Rename(tmp.Name(), l.path(name)); err != nil {
		return errors.Wrap(err, "store upload")
	}
	return nil
}

func (l *Local) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(l.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return errors.Wrap(err, "delete upload")
}

func (l *Local) URL(name string) string {
	return PublicPrefix + name
}

func (l *Local) Name() string { return "local" }

func (l *Local) path(name string) string {
	return filepath.Join(l.dir, filepath.Base(name))
}
