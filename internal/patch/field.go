// Package patch provides the optional-field representation used by PATCH
// request bodies. A Field distinguishes three states that plain pointers
// cannot: absent from the payload, explicitly null, and set to a value.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is an unset | null | value wrapper for a single JSON field.
// The zero Field means the field was absent from the payload.
type Field[T any] struct {
	Set   bool // present in the payload
	Valid bool // present and not null
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, []byte("null")) {
		f.Valid = false
		var zero T
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// Ptr returns the value as a pointer, nil when the field was null.
// Only meaningful when Set is true.
func (f Field[T]) Ptr() *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Set returns a Field holding v, as if v had been present in the payload.
func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// Null returns a Field representing an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}
