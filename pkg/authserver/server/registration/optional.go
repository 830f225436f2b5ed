// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"bytes"
	"encoding/json"
)

// Optional is a request field that tracks whether it was sent. A field sent
// as JSON null is present but null; a field left out is absent.
type Optional[T any] struct {
	present bool
	null    bool
	value   T
}

// Some returns a present, non-null Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{present: true, value: v}
}

// Null returns a present Optional that was sent as null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// Present reports whether the field was sent, null included.
func (o Optional[T]) Present() bool { return o.present }

// IsNull reports whether the field was sent as null.
func (o Optional[T]) IsNull() bool { return o.present && o.null }

// HasValue reports whether the field was sent with a non-null value.
func (o Optional[T]) HasValue() bool { return o.present && !o.null }

// Get returns the value and whether it is set. Absent and null fields
// return the zero value and false.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.HasValue()
}

// OrElse returns the value, or def when the field is absent or null.
func (o Optional[T]) OrElse(def T) T {
	if o.HasValue() {
		return o.value
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for keys present
// in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON implements json.Marshaler. Absent fields marshal as null;
// use omitzero on the struct field to leave them out.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// IsZero reports whether the field is absent, for the omitzero tag option.
func (o Optional[T]) IsZero() bool { return !o.present }
