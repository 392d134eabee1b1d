package common

import (
	"bytes"
	"encoding/json"
)

// Optional 区分 PATCH 请求中的三种状态：未提供、显式 null、具体值。
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Get returns the value when it was provided and not null.
func (o Optional[T]) Get() (T, bool) {
	if !o.Set || o.Null {
		var zero T
		return zero, false
	}
	return o.Value, true
}

// UnmarshalJSON is only invoked for keys present in the payload.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes null for unset or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
