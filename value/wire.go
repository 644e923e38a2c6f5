package value

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire field numbers. A value is one message; block fields are nested
// messages in field 5, in order.
const (
	wireKind   protowire.Number = 1
	wireInt    protowire.Number = 2
	wireFloat  protowire.Number = 3
	wireBytes  protowire.Number = 4
	wireFields protowire.Number = 5
)

// MaxDepth bounds block nesting accepted by Unmarshal.
const MaxDepth = 512

// ErrTooDeep is returned when a message nests deeper than MaxDepth.
var ErrTooDeep = errors.New("value: nesting exceeds maximum depth")

// Marshal encodes v in protobuf wire format.
func Marshal(v Value) []byte {
	return appendValue(nil, v)
}

func appendValue(b []byte, v Value) []byte {
	if v.kind != KindInt {
		b = protowire.AppendTag(b, wireKind, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.kind))
	}
	switch v.kind {
	case KindInt, KindBlock, KindAbstract:
		if v.i != 0 {
			b = protowire.AppendTag(b, wireInt, protowire.VarintType)
			b = protowire.AppendVarint(b, protowire.EncodeZigZag(v.i))
		}
	case KindFloat:
		b = protowire.AppendTag(b, wireFloat, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.f))
	case KindString, KindBytes:
		b = protowire.AppendTag(b, wireBytes, protowire.BytesType)
		b = protowire.AppendString(b, v.s)
	}
	for _, f := range v.fields {
		b = protowire.AppendTag(b, wireFields, protowire.BytesType)
		b = protowire.AppendBytes(b, appendValue(nil, f))
	}
	return b
}

// Unmarshal decodes a value produced by Marshal or by the native side.
func Unmarshal(b []byte) (Value, error) {
	return unmarshal(b, 0)
}

func unmarshal(b []byte, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, ErrTooDeep
	}
	var v Value
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Value{}, fmt.Errorf("value: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == wireKind && typ == protowire.VarintType:
			k, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Value{}, fmt.Errorf("value: bad kind: %w", protowire.ParseError(n))
			}
			if k > uint64(KindAbstract) {
				return Value{}, fmt.Errorf("value: unknown kind %d", k)
			}
			v.kind = Kind(k)
			b = b[n:]
		case num == wireInt && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Value{}, fmt.Errorf("value: bad int: %w", protowire.ParseError(n))
			}
			v.i = protowire.DecodeZigZag(x)
			b = b[n:]
		case num == wireFloat && typ == protowire.Fixed64Type:
			x, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return Value{}, fmt.Errorf("value: bad float: %w", protowire.ParseError(n))
			}
			v.f = math.Float64frombits(x)
			b = b[n:]
		case num == wireBytes && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return Value{}, fmt.Errorf("value: bad bytes: %w", protowire.ParseError(n))
			}
			v.s = s
			b = b[n:]
		case num == wireFields && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Value{}, fmt.Errorf("value: bad field: %w", protowire.ParseError(n))
			}
			f, err := unmarshal(raw, depth+1)
			if err != nil {
				return Value{}, err
			}
			v.fields = append(v.fields, f)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Value{}, fmt.Errorf("value: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if v.kind == KindBlock && (v.i < 0 || v.i > MaxTag) {
		return Value{}, fmt.Errorf("value: block tag %d out of range", v.i)
	}
	if v.kind != KindBlock && len(v.fields) > 0 {
		return Value{}, fmt.Errorf("value: %s value carries fields", v.kind)
	}
	return v, nil
}
