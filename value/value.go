// Package value is the representation every argument and result takes while it
// crosses the native boundary: immediate integers, floats, strings, byte
// buffers, tagged blocks with positional fields, and abstract native handles.
//
// The block layout mirrors the host runtime the native binding was written
// against, so constant constructors are immediates and payload-carrying
// constructors are blocks whose tag is their index among payload constructors.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the representation of a Value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindBytes
	KindBlock
	KindAbstract
)

// MaxTag is the largest block tag usable for structured data.
const MaxTag = 245

// Host integers are 63 bits wide.
const (
	MaxHostInt = 1<<62 - 1
	MinHostInt = -(1 << 62)
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindBlock:
		return "block"
	case KindAbstract:
		return "abstract"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable cross-boundary value. The zero Value is Int(0), which
// doubles as unit, false, None and the empty list.
type Value struct {
	kind   Kind
	i      int64
	f      float64
	s      string
	fields []Value
}

// Int returns an immediate integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// HostInt returns an immediate integer, failing if i does not fit in a host int.
func HostInt(i int64) (Value, error) {
	if i > MaxHostInt || i < MinHostInt {
		return Value{}, fmt.Errorf("value: %d does not fit in a 63-bit host int", i)
	}
	return Int(i), nil
}

// Bool encodes false as 0 and true as 1.
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Unit is the only value of the unit type.
func Unit() Value { return Int(0) }

// Float returns a boxed float.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bytes returns a byte buffer value. b is copied.
func Bytes(b []byte) Value { return Value{kind: KindBytes, s: string(b)} }

// Block returns a tagged block. It panics if tag is outside [0, MaxTag].
func Block(tag int, fields ...Value) Value {
	if tag < 0 || tag > MaxTag {
		panic(fmt.Sprintf("value: block tag %d out of range", tag))
	}
	return Value{kind: KindBlock, i: int64(tag), fields: fields}
}

// Tuple returns a block with tag 0. Records use the same shape.
func Tuple(fields ...Value) Value { return Block(0, fields...) }

// Abstract wraps a native handle.
func Abstract(handle uint64) Value { return Value{kind: KindAbstract, i: int64(handle)} }

// Kind reports the representation of v.
func (v Value) Kind() Kind { return v.kind }

// IsInt reports whether v is an immediate.
func (v Value) IsInt() bool { return v.kind == KindInt }

// IsBlock reports whether v is a block.
func (v Value) IsBlock() bool { return v.kind == KindBlock }

func (v Value) expect(k Kind) error {
	if v.kind != k {
		return &ShapeError{Want: k.String(), Got: v}
	}
	return nil
}

// AsInt returns the immediate integer.
func (v Value) AsInt() (int64, error) {
	if err := v.expect(KindInt); err != nil {
		return 0, err
	}
	return v.i, nil
}

// AsBool decodes 0 and 1.
func (v Value) AsBool() (bool, error) {
	i, err := v.AsInt()
	if err != nil {
		return false, err
	}
	switch i {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, &ShapeError{Want: "bool", Got: v}
}

// AsFloat returns the boxed float.
func (v Value) AsFloat() (float64, error) {
	if err := v.expect(KindFloat); err != nil {
		return 0, err
	}
	return v.f, nil
}

// AsString returns the string payload.
func (v Value) AsString() (string, error) {
	if err := v.expect(KindString); err != nil {
		return "", err
	}
	return v.s, nil
}

// AsBytes returns a copy of the byte buffer.
func (v Value) AsBytes() ([]byte, error) {
	if err := v.expect(KindBytes); err != nil {
		return nil, err
	}
	return []byte(v.s), nil
}

// AsHandle returns the native handle of an abstract value.
func (v Value) AsHandle() (uint64, error) {
	if err := v.expect(KindAbstract); err != nil {
		return 0, err
	}
	return uint64(v.i), nil
}

// Tag returns the block tag.
func (v Value) Tag() (int, error) {
	if err := v.expect(KindBlock); err != nil {
		return 0, err
	}
	return int(v.i), nil
}

// Len returns the number of block fields, or 0 for non-blocks.
func (v Value) Len() int {
	if v.kind != KindBlock {
		return 0
	}
	return len(v.fields)
}

// Field returns the i-th block field.
func (v Value) Field(i int) (Value, error) {
	if err := v.expect(KindBlock); err != nil {
		return Value{}, err
	}
	if i < 0 || i >= len(v.fields) {
		return Value{}, fmt.Errorf("value: field %d out of range for block of size %d", i, len(v.fields))
	}
	return v.fields[i], nil
}

// Fields returns the block fields. The slice must not be modified.
func (v Value) Fields() []Value {
	if v.kind != KindBlock {
		return nil
	}
	return v.fields
}

// Block opens v as a block with the expected tag and arity.
func (v Value) Block(tag, arity int) ([]Value, error) {
	t, err := v.Tag()
	if err != nil {
		return nil, err
	}
	if t != tag || len(v.fields) != arity {
		return nil, &ShapeError{Want: fmt.Sprintf("block tag %d size %d", tag, arity), Got: v}
	}
	return v.fields, nil
}

// Equal reports structural equality. Floats compare bitwise so NaN equals itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt, KindAbstract:
		return v.i == o.i
	case KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case KindString, KindBytes:
		return v.s == o.s
	case KindBlock:
		if v.i != o.i || len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if !v.fields[i].Equal(o.fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for debugging: blocks print as <tag:f1,f2>, abstract
// handles as @handle.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.kind {
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindBytes:
		fmt.Fprintf(sb, "b%q", v.s)
	case KindAbstract:
		sb.WriteByte('@')
		sb.WriteString(strconv.FormatUint(uint64(v.i), 10))
	case KindBlock:
		sb.WriteByte('<')
		sb.WriteString(strconv.FormatInt(v.i, 10))
		sb.WriteByte(':')
		for i, f := range v.fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			f.format(sb)
		}
		sb.WriteByte('>')
	}
}

// ShapeError reports a value whose representation does not match what the
// decoder expected.
type ShapeError struct {
	Want string
	Got  Value
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("value: expected %s, got %s %s", e.Want, e.Got.kind, e.Got)
}
