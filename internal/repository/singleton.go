package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// SingletonEntity constrains PT to a pointer to a single-instance document.
type SingletonEntity[T any] interface {
	*T
	model.Singleton
}

// Singleton stores a document that exists at most once. The instance is
// marked with a slot field carrying a unique index, so two concurrent first
// reads cannot both create one.
type Singleton[T any, PT SingletonEntity[T]] struct {
	coll     store.Collection
	entity   string
	defaults func() PT
	now      func() time.Time
}

// NewSingleton wraps coll. defaults builds the document created on first read.
func NewSingleton[T any, PT SingletonEntity[T]](coll store.Collection, entity string, defaults func() PT) *Singleton[T, PT] {
	return &Singleton[T, PT]{coll: coll, entity: entity, defaults: defaults, now: time.Now}
}

var slotFilter = store.Eq("slot", model.SingletonSlot)

// Get returns the instance, creating it from defaults when absent.
func (s *Singleton[T, PT]) Get(ctx context.Context) (PT, error) {
	doc, err := s.find(ctx)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return doc, err
	}

	doc = s.defaults()
	doc.Claim()
	meta := doc.Meta()
	meta.ID = primitive.NewObjectID()
	meta.Stamp(s.now())

	err = s.coll.Insert(ctx, doc)
	if errors.Is(err, store.ErrDuplicate) {
		// Lost the race to another first read; use the winner.
		return s.find(ctx)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// find looks up the slotted instance. A document written before slots
// existed is adopted when it is the only candidate.
func (s *Singleton[T, PT]) find(ctx context.Context) (PT, error) {
	var doc T
	err := s.coll.FindOne(ctx, slotFilter, &doc)
	if err == nil {
		return PT(&doc), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var legacy []T
	if err := s.coll.Find(ctx, store.All(), []store.Sort{store.Asc("createdAt")}, &legacy); err != nil {
		return nil, err
	}
	if len(legacy) == 0 {
		return nil, store.ErrNotFound
	}

	adopted := PT(&legacy[0])
	adopted.Claim()
	if err := s.coll.Replace(ctx, store.ByID(adopted.Meta().ID.Hex()), adopted); err != nil {
		return nil, err
	}
	return adopted, nil
}

// Save writes back the instance returned by Get.
func (s *Singleton[T, PT]) Save(ctx context.Context, doc PT) error {
	doc.Claim()
	meta := doc.Meta()
	meta.Stamp(s.now())

	err := s.coll.Replace(ctx, store.ByID(meta.ID.Hex()), doc)
	if errors.Is(err, store.ErrNotFound) {
		return &store.NotFoundError{Entity: s.entity}
	}
	return err
}

// Exists reports whether any instance is stored, without creating one.
func (s *Singleton[T, PT]) Exists(ctx context.Context) (bool, error) {
	n, err := s.coll.Count(ctx, store.All())
	return n > 0, err
}
