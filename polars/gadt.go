package polars

import (
	"fmt"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

// Typed is a data type token that also fixes the Go element type of the
// column: Typed[int64] can only describe Int64 columns. It is what makes
// SeriesNew and SeriesToList type safe.
type Typed[T any] struct {
	dt   DataType
	elem interop.Codec[T]
}

// DataType forgets the element type.
func (t Typed[T]) DataType() DataType { return t.dt }

func (t Typed[T]) String() string { return t.dt.String() }

func nativeInt[T constraints.Integer](name string) interop.Codec[T] {
	return interop.NewCodec(name,
		func(_ *interop.Encoder, x T) (value.Value, error) { return value.Int(int64(x)), nil },
		func(_ *interop.Decoder, v value.Value) (T, error) {
			i, err := v.AsInt()
			if err != nil {
				return 0, err
			}
			x := T(i)
			if int64(x) != i {
				return 0, &value.ShapeError{Want: name, Got: v}
			}
			return x, nil
		})
}

var float32Codec = interop.NewCodec("f32",
	func(_ *interop.Encoder, x float32) (value.Value, error) { return value.Float(float64(x)), nil },
	func(_ *interop.Decoder, v value.Value) (float32, error) {
		f, err := v.AsFloat()
		return float32(f), err
	})

var dateCodec = interop.NewCodec("date",
	func(_ *interop.Encoder, t time.Time) (value.Value, error) { return value.Int(dateToDays(t)), nil },
	func(_ *interop.Decoder, v value.Value) (time.Time, error) {
		days, err := v.AsInt()
		if err != nil {
			return time.Time{}, err
		}
		return daysToDate(days), nil
	})

var timeOfDayCodec = interop.NewCodec("time",
	func(_ *interop.Encoder, d time.Duration) (value.Value, error) {
		ns, err := timeOfDayToNanos(d)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(ns), nil
	},
	func(_ *interop.Decoder, v value.Value) (time.Duration, error) {
		ns, err := v.AsInt()
		return time.Duration(ns), err
	})

func datetimeCodec(unit TimeUnit, loc *time.Location) interop.Codec[time.Time] {
	return interop.NewCodec("datetime["+unit.String()+"]",
		func(_ *interop.Encoder, t time.Time) (value.Value, error) { return value.Int(datetimeToInt(t, unit)), nil },
		func(_ *interop.Decoder, v value.Value) (time.Time, error) {
			i, err := v.AsInt()
			if err != nil {
				return time.Time{}, err
			}
			return intToDatetime(i, unit, loc), nil
		})
}

func durationCodec(unit TimeUnit) interop.Codec[time.Duration] {
	return interop.NewCodec("duration["+unit.String()+"]",
		func(_ *interop.Encoder, d time.Duration) (value.Value, error) { return value.Int(durationToInt(d, unit)), nil },
		func(_ *interop.Decoder, v value.Value) (time.Duration, error) {
			i, err := v.AsInt()
			return intToDuration(i, unit), err
		})
}

var (
	TypedBoolean = Typed[bool]{Boolean, interop.Bool}
	TypedUInt8   = Typed[uint8]{UInt8, nativeInt[uint8]("u8")}
	TypedUInt16  = Typed[uint16]{UInt16, nativeInt[uint16]("u16")}
	TypedUInt32  = Typed[uint32]{UInt32, nativeInt[uint32]("u32")}
	TypedUInt64  = Typed[uint64]{UInt64, nativeInt[uint64]("u64")}
	TypedInt8    = Typed[int8]{Int8, nativeInt[int8]("i8")}
	TypedInt16   = Typed[int16]{Int16, nativeInt[int16]("i16")}
	TypedInt32   = Typed[int32]{Int32, nativeInt[int32]("i32")}
	TypedInt64   = Typed[int64]{Int64, interop.Int64}
	TypedFloat32 = Typed[float32]{Float32, float32Codec}
	TypedFloat64 = Typed[float64]{Float64, interop.Float}
	TypedUtf8    = Typed[string]{Utf8, interop.String}
	TypedBinary  = Typed[[]byte]{Binary, interop.Bytes}
	TypedDate    = Typed[time.Time]{Date, dateCodec}
	TypedTime    = Typed[time.Duration]{Time, timeOfDayCodec}
)

// TypedDatetime describes a Datetime column. Values decode in tz, which is
// checked against the local timezone database.
func TypedDatetime(unit TimeUnit, tz *string) (Typed[time.Time], error) {
	loc, err := loadZone(tz)
	if err != nil {
		return Typed[time.Time]{}, err
	}
	return Typed[time.Time]{Datetime(unit, tz), datetimeCodec(unit, loc)}, nil
}

// TypedDuration describes a Duration column.
func TypedDuration(unit TimeUnit) Typed[time.Duration] {
	return Typed[time.Duration]{Duration(unit), durationCodec(unit)}
}

// TypedList describes a List column whose elements are inner.
func TypedList[T any](inner Typed[T]) Typed[[]T] {
	return Typed[[]T]{List(inner.dt), interop.List(inner.elem)}
}

func init() {
	registerTable("Typed", append(constEntries(typeConstNames[:TypeTime+1]),
		"block 0 Datetime(TimeUnit, option<string>)",
		"block 1 Duration(TimeUnit)",
		"block 2 List(Typed)",
	)...)
}

// typedTokenCodec encodes the type token itself. Tags agree with DataType
// for the constructors both share.
var typedTokenCodec = interop.NewCodec("Typed",
	func(_ *interop.Encoder, dt DataType) (value.Value, error) {
		if err := checkTyped(dt); err != nil {
			return value.Value{}, err
		}
		return encodeDataType(dt)
	},
	func(_ *interop.Decoder, v value.Value) (DataType, error) {
		dt, err := decodeDataType(v)
		if err != nil {
			return DataType{}, err
		}
		return dt, checkTyped(dt)
	})

func checkTyped(dt DataType) error {
	switch dt.Kind {
	case TypeNull, TypeUnknown, TypeStruct:
		return fmt.Errorf("%s has no typed token", dt)
	case TypeList:
		return checkTyped(*dt.Inner)
	}
	return nil
}
