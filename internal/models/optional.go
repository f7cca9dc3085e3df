package models

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Optional distinguishes a field that was absent from a payload from one that
// was explicitly set to null. Set reports that the field appeared at all;
// Valid reports a non-null value.
type Optional[T any] struct {
	Value T
	Set   bool
	Valid bool
}

// NewOptional returns a present, non-null Optional.
func NewOptional[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true, Valid: true}
}

// Null returns a present but explicitly-null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON records that the field appeared in the payload, then decodes
// the value unless it was an explicit null. encoding/json never calls this
// for absent fields, so Set stays false for them.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}
