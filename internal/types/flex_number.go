package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Number is the set of numeric kinds a FlexNumber can hold
type Number interface {
	~int | ~int64 | ~uint64 | ~float64
}

// FlexNumber is a nullable number that can be unmarshaled from a JSON number,
// a numeric JSON string, an empty string or null.
type FlexNumber[T Number] struct {
	Value T
	Valid bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexNumber[T]) UnmarshalJSON(data []byte) error {
	f.Valid = false
	var zero T
	f.Value = zero

	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n T
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected a number or numeric string, got %s", string(data))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	f.Value, f.Valid = n, true
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexNumber[T]) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns a pointer to the value, or nil when unset
func (f FlexNumber[T]) Ptr() *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Or returns the value, or def when unset
func (f FlexNumber[T]) Or(def T) T {
	if !f.Valid {
		return def
	}
	return f.Value
}
