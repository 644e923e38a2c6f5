// Package interop converts between Go values and host values and binds
// native entry points to typed Go functions.
package interop

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/exp/constraints"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/value"
)

// Codec converts one Go type to and from its host representation.
type Codec[T any] interface {
	Name() string
	Encode(e *Encoder, x T) (value.Value, error)
	Decode(d *Decoder, v value.Value) (T, error)
}

// Encoder carries the state of one outgoing call. Owners of encoded handles
// are kept alive and their borrows held until Done.
type Encoder struct {
	keep     []any
	releases []func()
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Keep pins x until Done.
func (e *Encoder) Keep(x any) { e.keep = append(e.keep, x) }

// Defer registers f to run at Done, in reverse order.
func (e *Encoder) Defer(f func()) { e.releases = append(e.releases, f) }

// Done releases borrows taken during encoding.
func (e *Encoder) Done() {
	for i := len(e.releases) - 1; i >= 0; i-- {
		e.releases[i]()
	}
	e.releases = nil
	runtime.KeepAlive(e.keep)
	e.keep = nil
}

// Decoder carries the state of one incoming result.
type Decoder struct {
	brg *bridge.Bridge
}

// NewDecoder returns a decoder that wraps handles against brg.
func NewDecoder(brg *bridge.Bridge) *Decoder { return &Decoder{brg: brg} }

// Bridge returns the bridge new handles belong to.
func (d *Decoder) Bridge() *bridge.Bridge { return d.brg }

type funcCodec[T any] struct {
	name string
	enc  func(*Encoder, T) (value.Value, error)
	dec  func(*Decoder, value.Value) (T, error)
}

func (c funcCodec[T]) Name() string { return c.name }

func (c funcCodec[T]) Encode(e *Encoder, x T) (value.Value, error) { return c.enc(e, x) }

func (c funcCodec[T]) Decode(d *Decoder, v value.Value) (T, error) { return c.dec(d, v) }

// NewCodec assembles a codec from its two directions.
func NewCodec[T any](name string, enc func(*Encoder, T) (value.Value, error), dec func(*Decoder, value.Value) (T, error)) Codec[T] {
	return funcCodec[T]{name: name, enc: enc, dec: dec}
}

// Map derives a codec for T from one for U.
func Map[T, U any](name string, c Codec[U], to func(T) (U, error), from func(U) (T, error)) Codec[T] {
	return NewCodec(name,
		func(e *Encoder, x T) (value.Value, error) {
			u, err := to(x)
			if err != nil {
				return value.Value{}, err
			}
			return c.Encode(e, u)
		},
		func(d *Decoder, v value.Value) (T, error) {
			u, err := c.Decode(d, v)
			if err != nil {
				var zero T
				return zero, err
			}
			return from(u)
		})
}

var (
	// Int is a host int. Values outside 63 bits are rejected.
	Int Codec[int] = NewCodec("int",
		func(_ *Encoder, x int) (value.Value, error) { return value.HostInt(int64(x)) },
		func(_ *Decoder, v value.Value) (int, error) {
			i, err := v.AsInt()
			return int(i), err
		})

	// Int64 is a full 64-bit integer, carried as an immediate int without
	// the host int range check.
	Int64 Codec[int64] = NewCodec("int64",
		func(_ *Encoder, x int64) (value.Value, error) { return value.Int(x), nil },
		func(_ *Decoder, v value.Value) (int64, error) { return v.AsInt() })

	Bool Codec[bool] = NewCodec("bool",
		func(_ *Encoder, x bool) (value.Value, error) { return value.Bool(x), nil },
		func(_ *Decoder, v value.Value) (bool, error) { return v.AsBool() })

	Float Codec[float64] = NewCodec("float",
		func(_ *Encoder, x float64) (value.Value, error) { return value.Float(x), nil },
		func(_ *Decoder, v value.Value) (float64, error) { return v.AsFloat() })

	String Codec[string] = NewCodec("string",
		func(_ *Encoder, x string) (value.Value, error) { return value.String(x), nil },
		func(_ *Decoder, v value.Value) (string, error) { return v.AsString() })

	Bytes Codec[[]byte] = NewCodec("bytes",
		func(_ *Encoder, x []byte) (value.Value, error) { return value.Bytes(x), nil },
		func(_ *Decoder, v value.Value) ([]byte, error) { return v.AsBytes() })

	Unit Codec[struct{}] = NewCodec("unit",
		func(_ *Encoder, _ struct{}) (value.Value, error) { return value.Unit(), nil },
		func(_ *Decoder, v value.Value) (struct{}, error) {
			i, err := v.AsInt()
			if err == nil && i != 0 {
				err = &value.ShapeError{Want: "unit", Got: v}
			}
			return struct{}{}, err
		})

	// Raw passes host values through untouched.
	Raw Codec[value.Value] = NewCodec("value",
		func(_ *Encoder, x value.Value) (value.Value, error) { return x, nil },
		func(_ *Decoder, v value.Value) (value.Value, error) { return v, nil })
)

// Coerced is a host int that the native side receives as T. Encoding fails
// with ErrOutOfRange when the value does not fit.
func Coerced[T constraints.Integer]() Codec[int] {
	return NewCodec("coerce<"+typeName[T]()+">",
		func(_ *Encoder, x int) (value.Value, error) {
			t, err := Coerce[T](x)
			if err != nil {
				return value.Value{}, err
			}
			return value.HostInt(int64(t))
		},
		func(_ *Decoder, v value.Value) (int, error) {
			i, err := v.AsInt()
			if err != nil {
				return 0, err
			}
			return widen[T](i)
		})
}

// CoercedOption is an optional Coerced.
func CoercedOption[T constraints.Integer]() Codec[*int] {
	return Option(Coerced[T]())
}

// Option maps nil to None.
func Option[T any](c Codec[T]) Codec[*T] {
	return NewCodec("option<"+c.Name()+">",
		func(e *Encoder, x *T) (value.Value, error) {
			if x == nil {
				return value.None(), nil
			}
			v, err := c.Encode(e, *x)
			if err != nil {
				return value.Value{}, err
			}
			return value.Some(v), nil
		},
		func(d *Decoder, v value.Value) (*T, error) {
			inner, ok, err := v.AsOption()
			if err != nil || !ok {
				return nil, err
			}
			x, err := c.Decode(d, inner)
			if err != nil {
				return nil, err
			}
			return &x, nil
		})
}

// List preserves order. An empty list decodes to an empty, non-nil slice.
func List[T any](c Codec[T]) Codec[[]T] {
	return NewCodec("list<"+c.Name()+">",
		func(e *Encoder, xs []T) (value.Value, error) {
			vs := make([]value.Value, len(xs))
			for i, x := range xs {
				v, err := c.Encode(e, x)
				if err != nil {
					return value.Value{}, fmt.Errorf("element %d: %w", i, err)
				}
				vs[i] = v
			}
			return value.List(vs...), nil
		},
		func(d *Decoder, v value.Value) ([]T, error) {
			vs, err := v.AsList()
			if err != nil {
				return nil, err
			}
			out := make([]T, len(vs))
			for i, x := range vs {
				if out[i], err = c.Decode(d, x); err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
			}
			return out, nil
		})
}

// Pair is a two-element host tuple.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairOf encodes a Pair as a two-field tuple.
func PairOf[A, B any](ca Codec[A], cb Codec[B]) Codec[Pair[A, B]] {
	return NewCodec("("+ca.Name()+" * "+cb.Name()+")",
		func(e *Encoder, p Pair[A, B]) (value.Value, error) {
			a, err := ca.Encode(e, p.First)
			if err != nil {
				return value.Value{}, err
			}
			b, err := cb.Encode(e, p.Second)
			if err != nil {
				return value.Value{}, err
			}
			return value.Tuple(a, b), nil
		},
		func(d *Decoder, v value.Value) (Pair[A, B], error) {
			var p Pair[A, B]
			fields, err := v.Block(0, 2)
			if err != nil {
				return p, err
			}
			if p.First, err = ca.Decode(d, fields[0]); err != nil {
				return p, err
			}
			p.Second, err = cb.Decode(d, fields[1])
			return p, err
		})
}

// Result decodes the host result type; the failure arm becomes
// *value.ErrResult. Encoding produces the success arm.
func Result[T any](c Codec[T]) Codec[T] {
	return NewCodec("result<"+c.Name()+">",
		func(e *Encoder, x T) (value.Value, error) {
			v, err := c.Encode(e, x)
			if err != nil {
				return value.Value{}, err
			}
			return value.Ok(v), nil
		},
		func(d *Decoder, v value.Value) (T, error) {
			inner, err := v.AsResult()
			if err != nil {
				var zero T
				return zero, err
			}
			return c.Decode(d, inner)
		})
}

// errNilHandle is returned when encoding a nil wrapper.
var errNilHandle = errors.New("nil handle")

// Abstract passes a native handle under a shared borrow. wrap builds the Go
// wrapper around a freshly owned box; unwrap returns the box of a wrapper.
func Abstract[T any](name string, wrap func(*Box) T, unwrap func(T) *Box) Codec[T] {
	return abstractCodec(name, wrap, unwrap, (*Box).Borrow)
}

// AbstractMut passes a native handle under the exclusive borrow, for
// methods that mutate it in place.
func AbstractMut[T any](name string, wrap func(*Box) T, unwrap func(T) *Box) Codec[T] {
	return abstractCodec(name+" mut", wrap, unwrap, (*Box).BorrowMut)
}

func abstractCodec[T any](name string, wrap func(*Box) T, unwrap func(T) *Box, borrow func(*Box) func()) Codec[T] {
	return NewCodec(name,
		func(e *Encoder, x T) (value.Value, error) {
			b := unwrap(x)
			if b == nil {
				return value.Value{}, fmt.Errorf("%s: %w", name, errNilHandle)
			}
			h, err := b.Handle()
			if err != nil {
				return value.Value{}, fmt.Errorf("%s: %w", name, err)
			}
			e.Defer(borrow(b))
			e.Keep(b)
			return value.Abstract(h), nil
		},
		func(d *Decoder, v value.Value) (T, error) {
			h, err := v.AsHandle()
			if err != nil {
				var zero T
				return zero, err
			}
			return wrap(NewBox(d.brg, h)), nil
		})
}
