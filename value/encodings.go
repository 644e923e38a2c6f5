package value

import (
	"errors"
	"fmt"
)

// None is the absent option.
func None() Value { return Int(0) }

// Some wraps x in a present option.
func Some(x Value) Value { return Block(0, x) }

// AsOption decodes an option, returning ok=false for None.
func (v Value) AsOption() (Value, bool, error) {
	if v.kind == KindInt {
		if v.i != 0 {
			return Value{}, false, &ShapeError{Want: "option", Got: v}
		}
		return Value{}, false, nil
	}
	fields, err := v.Block(0, 1)
	if err != nil {
		return Value{}, false, &ShapeError{Want: "option", Got: v}
	}
	return fields[0], true, nil
}

// List builds a host list out of cons cells, preserving order.
func List(xs ...Value) Value {
	out := Int(0)
	for i := len(xs) - 1; i >= 0; i-- {
		out = Block(0, xs[i], out)
	}
	return out
}

// AsList walks cons cells into a slice. The empty list decodes to an empty,
// non-nil slice.
func (v Value) AsList() ([]Value, error) {
	out := []Value{}
	for cur := v; ; {
		if cur.kind == KindInt {
			if cur.i != 0 {
				return nil, &ShapeError{Want: "list", Got: v}
			}
			return out, nil
		}
		cell, err := cur.Block(0, 2)
		if err != nil {
			return nil, &ShapeError{Want: "list", Got: v}
		}
		out = append(out, cell[0])
		cur = cell[1]
	}
}

// Ok is the success arm of a result.
func Ok(x Value) Value { return Block(0, x) }

// Err is the failure arm of a result; the payload is the message.
func Err(msg string) Value { return Block(1, String(msg)) }

// ErrResult is returned by AsResult for the failure arm.
type ErrResult struct {
	Message string
}

func (e *ErrResult) Error() string { return e.Message }

// AsResult decodes a result. The failure arm is returned as *ErrResult.
func (v Value) AsResult() (Value, error) {
	tag, err := v.Tag()
	if err != nil || v.Len() != 1 {
		return Value{}, &ShapeError{Want: "result", Got: v}
	}
	switch tag {
	case 0:
		return v.fields[0], nil
	case 1:
		msg, err := v.fields[0].AsString()
		if err != nil {
			return Value{}, err
		}
		return Value{}, &ErrResult{Message: msg}
	}
	return Value{}, &ShapeError{Want: "result", Got: v}
}

// HashVariant computes the structural hash the host runtime assigns to a
// polymorphic variant name. The result fits in 31 bits, sign-extended.
func HashVariant(name string) int64 {
	var accu int64
	for i := 0; i < len(name); i++ {
		accu = 223*accu + int64(name[i])
	}
	accu &= 0x7FFFFFFF
	if accu > 0x3FFFFFFF {
		accu -= 1 << 31
	}
	return accu
}

// Variant encodes a polymorphic variant without payload.
func Variant(name string) Value { return Int(HashVariant(name)) }

// VariantWith encodes a polymorphic variant carrying one payload value.
func VariantWith(name string, payload Value) Value {
	return Block(0, Int(HashVariant(name)), payload)
}

// ErrUnknownVariant is returned when a hash matches none of the candidates.
var ErrUnknownVariant = errors.New("value: unknown polymorphic variant")

// AsVariant resolves v against the candidate names. payload is the zero
// Value and hasPayload false for nullary variants.
func (v Value) AsVariant(candidates ...string) (name string, payload Value, hasPayload bool, err error) {
	var hash int64
	switch v.kind {
	case KindInt:
		hash = v.i
	case KindBlock:
		fields, berr := v.Block(0, 2)
		if berr != nil {
			return "", Value{}, false, &ShapeError{Want: "polymorphic variant", Got: v}
		}
		if hash, err = fields[0].AsInt(); err != nil {
			return "", Value{}, false, err
		}
		payload, hasPayload = fields[1], true
	default:
		return "", Value{}, false, &ShapeError{Want: "polymorphic variant", Got: v}
	}
	for _, c := range candidates {
		if HashVariant(c) == hash {
			return c, payload, hasPayload, nil
		}
	}
	return "", Value{}, false, fmt.Errorf("%w: hash %d", ErrUnknownVariant, hash)
}
