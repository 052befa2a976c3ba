// Package repository provides typed access to the document store, one
// accessor per entity.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// Entity constrains PT to be a pointer to a document type T.
type Entity[T any] interface {
	*T
	model.Document
}

// Repository is the CRUD accessor shared by identifier-keyed entities.
type Repository[T any, PT Entity[T]] struct {
	coll   store.Collection
	entity string
	sorts  []store.Sort
	now    func() time.Time
}

// NewRepository wraps coll. entity names the type in not-found errors;
// sorts is the order List returns.
func NewRepository[T any, PT Entity[T]](coll store.Collection, entity string, sorts ...store.Sort) *Repository[T, PT] {
	return &Repository[T, PT]{coll: coll, entity: entity, sorts: sorts, now: time.Now}
}

// Entity is the display name used in error messages.
func (r *Repository[T, PT]) Entity() string { return r.entity }

func (r *Repository[T, PT]) notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &store.NotFoundError{Entity: r.entity}
	}
	return err
}

// List returns every document in the repository's order.
func (r *Repository[T, PT]) List(ctx context.Context) ([]T, error) {
	return r.Find(ctx, store.All())
}

// Find returns the documents matching filter in the repository's order.
func (r *Repository[T, PT]) Find(ctx context.Context, filter store.Filter) ([]T, error) {
	var out []T
	if err := r.coll.Find(ctx, filter, r.sorts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the document with the given hex id.
func (r *Repository[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	return r.FindOne(ctx, store.ByID(id))
}

// FindOne returns the first document matching filter.
func (r *Repository[T, PT]) FindOne(ctx context.Context, filter store.Filter) (PT, error) {
	var doc T
	if err := r.coll.FindOne(ctx, filter, &doc); err != nil {
		return nil, r.notFound(err)
	}
	return PT(&doc), nil
}

// Create assigns an identifier and timestamps, then inserts doc.
func (r *Repository[T, PT]) Create(ctx context.Context, doc PT) error {
	meta := doc.Meta()
	meta.ID = primitive.NewObjectID()
	meta.CreatedAt = time.Time{}
	meta.Stamp(r.now())

	return r.coll.Insert(ctx, doc)
}

// Update replaces the document with the given id by doc, keeping its
// identifier and creation time. doc is updated in place.
func (r *Repository[T, PT]) Update(ctx context.Context, id string, doc PT) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	meta := doc.Meta()
	meta.ID = existing.Meta().ID
	meta.CreatedAt = existing.Meta().CreatedAt
	meta.Stamp(r.now())

	return r.notFound(r.coll.Replace(ctx, store.ByID(meta.ID.Hex()), doc))
}

// Save writes back a document previously read from the repository.
func (r *Repository[T, PT]) Save(ctx context.Context, doc PT) error {
	meta := doc.Meta()
	meta.Stamp(r.now())
	return r.notFound(r.coll.Replace(ctx, store.ByID(meta.ID.Hex()), doc))
}

// Delete removes the document with the given id.
func (r *Repository[T, PT]) Delete(ctx context.Context, id string) error {
	return r.notFound(r.coll.Delete(ctx, store.ByID(id)))
}

// Count returns the number of stored documents.
func (r *Repository[T, PT]) Count(ctx context.Context) (int64, error) {
	return r.coll.Count(ctx, store.All())
}
