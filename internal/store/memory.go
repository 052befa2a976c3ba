package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a process-local Backend. Documents are kept as encoded bson in
// insertion order, so results match what a real store would return after a
// round trip.
type Memory struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memoryCollection)}
}

func (m *Memory) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{unique: make(map[string]struct{})}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) Name() string { return "memory" }

type memoryCollection struct {
	mu     sync.RWMutex
	docs   []bson.Raw
	unique map[string]struct{}
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter, sorts []Sort, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	var matched []bson.Raw
	for _, doc := range c.docs {
		if matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	c.mu.RUnlock()

	if len(sorts) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, s := range sorts {
				cmp := compareValues(matched[i].Lookup(s.Field), matched[j].Lookup(s.Field))
				if cmp == 0 {
					continue
				}
				if s.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	return DecodeAll(matched, out)
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	idx := c.indexOf(filter)
	var doc bson.Raw
	if idx >= 0 {
		doc = c.docs[idx]
	}
	c.mu.RUnlock()

	if doc == nil {
		return ErrNotFound
	}
	return Decode(doc, out)
}

func (c *memoryCollection) Insert(ctx context.Context, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := encodeWithID(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnique(raw, -1); err != nil {
		return err
	}
	c.docs = append(c.docs, raw)
	return nil
}

func (c *memoryCollection) Replace(ctx context.Context, filter Filter, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := encodeWithID(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(filter)
	if idx < 0 {
		return ErrNotFound
	}
	if err := c.checkUnique(raw, idx); err != nil {
		return err
	}
	c.docs[idx] = raw
	return nil
}

func (c *memoryCollection) Upsert(ctx context.Context, filter Filter, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := encodeWithID(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(filter)
	if err := c.checkUnique(raw, idx); err != nil {
		return err
	}
	if idx < 0 {
		c.docs = append(c.docs, raw)
	} else {
		c.docs[idx] = raw
	}
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, filter Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(filter)
	if idx < 0 {
		return ErrNotFound
	}
	c.docs = append(c.docs[:idx], c.docs[idx+1:]...)
	return nil
}

func (c *memoryCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (c *memoryCollection) EnsureUnique(ctx context.Context, field string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(c.docs))
	for _, doc := range c.docs {
		v, err := doc.LookupErr(field)
		if err != nil {
			continue
		}
		key := string(append([]byte{byte(v.Type)}, v.Value...))
		if _, dup := seen[key]; dup {
			return fmt.Errorf("unique index on %q: %w", field, ErrDuplicate)
		}
		seen[key] = struct{}{}
	}

	c.unique[field] = struct{}{}
	return nil
}

// indexOf returns the position of the first document matching filter, or -1.
// Callers hold the lock.
func (c *memoryCollection) indexOf(filter Filter) int {
	for i, doc := range c.docs {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

// checkUnique reports ErrDuplicate when raw repeats a unique value held by
// any document other than the one at skip. Callers hold the lock.
func (c *memoryCollection) checkUnique(raw bson.Raw, skip int) error {
	for field := range c.unique {
		v, err := raw.LookupErr(field)
		if err != nil {
			continue
		}
		for i, doc := range c.docs {
			if i == skip {
				continue
			}
			other, err := doc.LookupErr(field)
			if err == nil && sameValue(v, other) {
				return ErrDuplicate
			}
		}
	}

	if id, err := raw.LookupErr(IDField); err == nil {
		for i, doc := range c.docs {
			if i == skip {
				continue
			}
			if other, err := doc.LookupErr(IDField); err == nil && sameValue(id, other) {
				return ErrDuplicate
			}
		}
	}
	return nil
}

func encodeWithID(doc any) (bson.Raw, error) {
	raw, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	if _, err := raw.LookupErr(IDField); err != nil {
		return nil, fmt.Errorf("encode document: missing %s", IDField)
	}
	return raw, nil
}

func matches(doc bson.Raw, filter Filter) bool {
	if len(filter) == 0 {
		return true
	}

	for _, m := range filter {
		stored, err := doc.LookupErr(m.Field)
		if err != nil {
			continue
		}

		if m.Field == IDField {
			id, ok := ObjectID(m.Value)
			if ok && stored.Type == bsontype.ObjectID && stored.ObjectID() == id {
				return true
			}
			continue
		}

		t, data, err := bson.MarshalValue(m.Value)
		if err != nil {
			continue
		}
		if sameValue(stored, bson.RawValue{Type: t, Value: data}) {
			return true
		}
	}
	return false
}

// ObjectID converts an identifier filter value. Strings must be 24 hex chars.
func ObjectID(v any) (primitive.ObjectID, bool) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id, !id.IsZero()
	case string:
		oid, err := primitive.ObjectIDFromHex(id)
		return oid, err == nil
	default:
		return primitive.NilObjectID, false
	}
}

func sameValue(a, b bson.RawValue) bool {
	if isNumber(a.Type) && isNumber(b.Type) {
		return number(a) == number(b)
	}
	return a.Type == b.Type && bytes.Equal(a.Value, b.Value)
}

func isNumber(t bsontype.Type) bool {
	return t == bsontype.Int32 || t == bsontype.Int64 || t == bsontype.Double
}

func number(v bson.RawValue) float64 {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32())
	case bsontype.Int64:
		return float64(v.Int64())
	case bsontype.Double:
		return v.Double()
	}
	return 0
}

// compareValues orders two field values. Missing values sort first;
// values of different kinds order by bson type.
func compareValues(a, b bson.RawValue) int {
	switch {
	case a.Type == 0 && b.Type == 0:
		return 0
	case a.Type == 0:
		return -1
	case b.Type == 0:
		return 1
	}

	if isNumber(a.Type) && isNumber(b.Type) {
		x, y := number(a), number(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}

	if a.Type != b.Type {
		if a.Type < b.Type {
			return -1
		}
		return 1
	}

	switch a.Type {
	case bsontype.String:
		return strings.Compare(a.StringValue(), b.StringValue())
	case bsontype.DateTime:
		x, y := a.DateTime(), b.DateTime()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case bsontype.ObjectID:
		x, y := a.ObjectID(), b.ObjectID()
		return bytes.Compare(x[:], y[:])
	case bsontype.Boolean:
		x, y := a.Boolean(), b.Boolean()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}

	return bytes.Compare(a.Value, b.Value)
}
