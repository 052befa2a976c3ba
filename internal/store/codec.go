package store

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
)

// Encode marshals doc through its bson tags.
func Encode(doc any) (bson.Raw, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return bson.Raw(data), nil
}

// Decode unmarshals raw into v. Nested documents decode as maps so opaque
// payloads render as JSON objects.
func Decode(raw bson.Raw, v any) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(raw))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	dec.DefaultDocumentM()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DecodeAll decodes raws into out, which must point to a slice.
func DecodeAll(raws []bson.Raw, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("decode documents: out must be a pointer to a slice, got %T", out)
	}

	sliceType := rv.Elem().Type()
	elemType := sliceType.Elem()
	slice := reflect.MakeSlice(sliceType, 0, len(raws))

	for _, raw := range raws {
		elem := reflect.New(elemType)
		if err := Decode(raw, elem.Interface()); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem.Elem())
	}

	rv.Elem().Set(slice)
	return nil
}
