package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// TranslationRepository stores one document per language.
type TranslationRepository struct {
	coll store.Collection
	now  func() time.Time
}

func NewTranslationRepository(coll store.Collection) *TranslationRepository {
	return &TranslationRepository{coll: coll, now: time.Now}
}

func (r *TranslationRepository) byLanguage(language string) store.Filter {
	return store.Eq("language", language)
}

// List returns translations sorted by language. A non-empty language
// narrows the result to that language.
func (r *TranslationRepository) List(ctx context.Context, language string) ([]model.Translation, error) {
	filter := store.All()
	if language != "" {
		filter = r.byLanguage(language)
	}

	var out []model.Translation
	if err := r.coll.Find(ctx, filter, []store.Sort{store.Asc("language")}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the translation of language.
func (r *TranslationRepository) Get(ctx context.Context, language string) (*model.Translation, error) {
	var t model.Translation
	if err := r.coll.FindOne(ctx, r.byLanguage(language), &t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &store.NotFoundError{Entity: "Translation"}
		}
		return nil, err
	}
	return &t, nil
}

// Upsert replaces the data of language, creating the document if needed.
func (r *TranslationRepository) Upsert(ctx context.Context, language string, data map[string]any) (*model.Translation, error) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var t *model.Translation
		t, err = r.upsertOnce(ctx, language, data)
		if err == nil {
			return t, nil
		}
		// A concurrent writer created the language first; retry as an update.
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, err
}

func (r *TranslationRepository) upsertOnce(ctx context.Context, language string, data map[string]any) (*model.Translation, error) {
	t := &model.Translation{Language: language, Data: data}

	existing, err := r.Get(ctx, language)
	switch {
	case err == nil:
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
	case errors.Is(err, store.ErrNotFound):
		t.ID = primitive.NewObjectID()
	default:
		return nil, err
	}
	t.Stamp(r.now())

	if err := r.coll.Upsert(ctx, r.byLanguage(language), t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the translation of language.
func (r *TranslationRepository) Delete(ctx context.Context, language string) error {
	err := r.coll.Delete(ctx, r.byLanguage(language))
	if errors.Is(err, store.ErrNotFound) {
		return &store.NotFoundError{Entity: "Translation"}
	}
	return err
}

// Exists reports whether language has a stored translation.
func (r *TranslationRepository) Exists(ctx context.Context, language string) (bool, error) {
	n, err := r.coll.Count(ctx, r.byLanguage(language))
	return n > 0, err
}
