package interop

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// ErrOutOfRange is wrapped by every failed coercion.
var ErrOutOfRange = errors.New("out of range integral type conversion attempted")

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// Coerce narrows a host int to the width a native method expects.
func Coerce[T constraints.Integer](v int) (T, error) {
	t := T(v)
	if int(t) != v || (v < 0) != (t < 0) {
		var zero T
		return zero, fmt.Errorf("failed to coerce int (%d) to %s: %w", v, typeName[T](), ErrOutOfRange)
	}
	return t, nil
}

// CoerceOption narrows an optional host int. nil stays nil.
func CoerceOption[T constraints.Integer](v *int) (*T, error) {
	if v == nil {
		return nil, nil
	}
	t, err := Coerce[T](*v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// widen converts a native integer back to a host int.
func widen[T constraints.Integer](v int64) (int, error) {
	t := T(v)
	if int64(t) != v || (v < 0) != (t < 0) {
		return 0, fmt.Errorf("native value %d does not fit %s: %w", v, typeName[T](), ErrOutOfRange)
	}
	return int(v), nil
}
