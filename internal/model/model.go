// Package model holds the documents the portfolio API stores.
//
// Every document embeds Base, which carries the identifier and the
// timestamps. Field names are shared between the bson and json encodings
// so the stored shape is the shape the front-end reads.
package model

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names, one per entity.
const (
	ProjectCollection     = "projects"
	SkillCollection       = "skills"
	ContactCollection     = "contacts"
	ProfileCollection     = "profiles"
	ResumeCollection      = "resumes"
	TranslationCollection = "translations"
	AdminCollection       = "admins"
)

// Base is embedded in every document.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Meta gives generic code access to the embedded Base.
func (b *Base) Meta() *Base { return b }

// Stamp sets UpdatedAt, and CreatedAt when it is still zero. Times are
// truncated to milliseconds, the precision the document store keeps.
func (b *Base) Stamp(now time.Time) {
	now = now.UTC().Truncate(time.Millisecond)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Document is implemented by pointers to every entity.
type Document interface {
	Meta() *Base
}

// StringList is a list-typed field. Clients may send either a single
// string or an array; entries are trimmed and blanks dropped.
type StringList []string

var stringListType = reflect.TypeOf(StringList{})

// UnmarshalJSON accepts null, a string, or an array of strings.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var values []string
	switch v := raw.(type) {
	case nil:
	case string:
		values = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return &json.UnmarshalTypeError{Value: "array element", Type: stringListType}
			}
			values = append(values, s)
		}
	default:
		return &json.UnmarshalTypeError{Value: "value", Type: stringListType}
	}

	*l = NewStringList(values...)
	return nil
}

// MarshalJSON renders a nil list as [].
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// NewStringList trims values and drops blank ones. The result is never nil.
func NewStringList(values ...string) StringList {
	out := make(StringList, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Ordinal is a sort position sent by the admin UI. Form fields arrive as
// strings, so a numeric string is accepted as well as a number.
type Ordinal int

var ordinalType = reflect.TypeOf(Ordinal(0))

// UnmarshalJSON accepts null, an integral number, or a string holding one.
// A blank string is 0.
func (o *Ordinal) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*o = 0
	case float64:
		if v != math.Trunc(v) {
			return &json.UnmarshalTypeError{Value: "number " + strconv.FormatFloat(v, 'f', -1, 64), Type: ordinalType}
		}
		*o = Ordinal(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			*o = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return &json.UnmarshalTypeError{Value: "string " + strconv.Quote(v), Type: ordinalType}
		}
		*o = Ordinal(n)
	default:
		return &json.UnmarshalTypeError{Value: "value", Type: ordinalType}
	}
	return nil
}
