package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
)

const (
	MsgLanguageAndDataRequired = "Language and data are required"
	MsgInvalidLanguage         = `Language must be "en" or "ru"`
	MsgTranslationImported     = "Translation imported successfully"
)

// TranslationFile is the path of a language's bundle inside a loader root.
func TranslationFile(language string) string {
	return path.Join(language, "translation.json")
}

// ErrTranslationFileMissing is returned by a loader when no bundle exists
// for the requested language.
var ErrTranslationFileMissing = errors.New("translation file not found")

// TranslationLoader reads a language bundle from some source.
type TranslationLoader interface {
	Load(ctx context.Context, language string) (map[string]any, error)
}

// DirLoader reads `<language>/translation.json` from a file system.
type DirLoader struct {
	FS fs.FS
}

// NewDirLoader loads bundles from a directory on disk.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{FS: os.DirFS(dir)}
}

func (l *DirLoader) Load(_ context.Context, language string) (map[string]any, error) {
	raw, err := fs.ReadFile(l.FS, TranslationFile(language))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrTranslationFileMissing
	}
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", TranslationFile(language), err)
	}
	return data, nil
}

// TranslationService validates and stores translation bundles.
type TranslationService struct {
	server *server.Server
	repo   *repository.TranslationRepository
	loader TranslationLoader
}

func NewTranslationService(s *server.Server, repo *repository.TranslationRepository, loader TranslationLoader) *TranslationService {
	return &TranslationService{server: s, repo: repo, loader: loader}
}

func (t *TranslationService) List(ctx context.Context, language string) ([]model.Translation, error) {
	return t.repo.List(ctx, language)
}

func (t *TranslationService) Get(ctx context.Context, language string) (*model.Translation, error) {
	return t.repo.Get(ctx, language)
}

// Save creates or replaces the bundle of language.
func (t *TranslationService) Save(ctx context.Context, language string, data map[string]any) (*model.Translation, error) {
	if language == "" || len(data) == 0 {
		return nil, errs.NewBadRequestError(MsgLanguageAndDataRequired, true, nil, nil)
	}
	if !model.IsLanguage(language) {
		return nil, errs.NewBadRequestError(MsgInvalidLanguage, true, nil, nil)
	}

	translation, err := t.repo.Upsert(ctx, language, data)
	if err != nil {
		return nil, err
	}

	t.server.Logger.Info().Str("language", language).Int("keys", len(data)).Msg("translation saved")
	return translation, nil
}

// Import replaces the stored bundle of language with the one from the loader.
func (t *TranslationService) Import(ctx context.Context, language string) (*model.Translation, error) {
	if !model.IsLanguage(language) {
		return nil, errs.NewBadRequestError(MsgInvalidLanguage, true, nil, nil)
	}

	data, err := t.loader.Load(ctx, language)
	if errors.Is(err, ErrTranslationFileMissing) {
		msg := fmt.Sprintf("Translation file not found for %q. Please ensure %s exists.", language, TranslationFile(language))
		return nil, errs.NewNotFoundError(msg, true, nil)
	}
	if err != nil {
		return nil, errs.NewBadRequestError(err.Error(), true, nil, nil)
	}

	return t.Save(ctx, language, data)
}

func (t *TranslationService) Delete(ctx context.Context, language string) error {
	return t.repo.Delete(ctx, language)
}
