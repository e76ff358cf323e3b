// Package patch models sparse updates where a field can be left alone, set, or cleared.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is one optional field of a partial update.
// The zero value leaves the stored value untouched.
type Field[T any] struct {
	set   bool
	value *T
}

// Set returns a field that writes v.
func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: &v}
}

// Clear returns a field that removes the stored value.
func Clear[T any]() Field[T] {
	return Field[T]{set: true}
}

// IsSet reports whether the field takes part in the update.
func (f Field[T]) IsSet() bool {
	return f.set
}

// IsClear reports whether the field removes the stored value.
func (f Field[T]) IsClear() bool {
	return f.set && f.value == nil
}

// Value returns the new value, or nil when the field is untouched or cleared.
func (f Field[T]) Value() *T {
	return f.value
}

// Apply returns the result of applying f to current.
func (f Field[T]) Apply(current *T) *T {
	if !f.set {
		return current
	}
	return f.value
}

// UnmarshalJSON maps an explicit null to Clear and any value to Set.
// Absent keys never reach UnmarshalJSON and stay untouched.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.value = &v
	return nil
}

// MarshalJSON writes the value or null. Untouched fields should be tagged omitzero.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.value)
}

// IsZero reports an untouched field, so `json:",omitzero"` omits it.
func (f Field[T]) IsZero() bool {
	return !f.set
}
