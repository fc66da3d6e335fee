package core

import "github.com/bytedance/sonic"

// Optional holds a value that may be absent.
// Absence is distinct from the zero value of T: a blank price is
// "not applicable", not "0".
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.ok
}

// OrElse returns the held value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// MarshalJSON encodes an absent value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return sonic.Marshal(o.value)
}
