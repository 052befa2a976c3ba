// Package store defines the document store contract the repositories are
// written against, plus an in-memory backend.
//
// Backends encode documents through their bson tags, so a document looks
// the same whether it lives in MongoDB, the Postgres documents table, or
// memory.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document matches a filter.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when a write violates a unique field.
	ErrDuplicate = errors.New("duplicate document")
)

// NotFoundError names the entity that was missing. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IDField is the identifier field of every document.
const IDField = "_id"

// Match is a single equality condition.
type Match struct {
	Field string
	Value any
}

// Filter is a list of equality conditions OR-ed together. An empty filter
// matches every document.
type Filter []Match

// All matches every document.
func All() Filter { return nil }

// Eq matches documents whose field equals value.
func Eq(field string, value any) Filter {
	return Filter{{Field: field, Value: value}}
}

// ByID matches the document with the given hex identifier. An identifier
// that does not parse matches nothing.
func ByID(id string) Filter {
	return Eq(IDField, id)
}

// Or widens the filter with another alternative.
func (f Filter) Or(field string, value any) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, Match{Field: field, Value: value})
}

// Sort orders results by one field.
type Sort struct {
	Field string
	Desc  bool
}

// Asc sorts ascending by field.
func Asc(field string) Sort { return Sort{Field: field} }

// Desc sorts descending by field.
func Desc(field string) Sort { return Sort{Field: field, Desc: true} }

// Collection is a named set of documents.
//
// out arguments are pointers: *[]T for Find, *T for FindOne.
type Collection interface {
	Find(ctx context.Context, filter Filter, sorts []Sort, out any) error
	FindOne(ctx context.Context, filter Filter, out any) error
	Insert(ctx context.Context, doc any) error

	// Replace swaps the first matching document for doc. ErrNotFound when
	// nothing matches.
	Replace(ctx context.Context, filter Filter, doc any) error

	// Upsert replaces the first matching document, or inserts doc.
	Upsert(ctx context.Context, filter Filter, doc any) error

	// Delete removes the first matching document. ErrNotFound when nothing matches.
	Delete(ctx context.Context, filter Filter) error

	Count(ctx context.Context, filter Filter) (int64, error)

	// EnsureUnique rejects writes that repeat a value of field. Documents
	// without the field are not constrained.
	EnsureUnique(ctx context.Context, field string) error
}

// Backend is a connected document store.
type Backend interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Name() string
}
