package polars

import (
	"fmt"
	"strings"

	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

// TypeKind is the constructor of a DataType.
type TypeKind int

const (
	TypeBoolean TypeKind = iota
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeUtf8
	TypeBinary
	TypeDate
	TypeTime
	TypeNull
	TypeUnknown
	TypeDatetime
	TypeDuration
	TypeList
	TypeStruct
)

var typeConstNames = []string{
	"Boolean", "UInt8", "UInt16", "UInt32", "UInt64", "Int8", "Int16", "Int32", "Int64",
	"Float32", "Float64", "Utf8", "Binary", "Date", "Time", "Null", "Unknown",
}

var typeShortNames = []string{
	"bool", "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64",
	"f32", "f64", "str", "binary", "date", "time", "null", "unknown",
}

// DataType is a column type. Unit and TZ apply to Datetime, Unit to
// Duration, Inner to List and Fields to Struct.
type DataType struct {
	Kind   TypeKind
	Unit   TimeUnit
	TZ     *string
	Inner  *DataType
	Fields []Field
}

// Field is a named DataType, used for struct members and schemas.
type Field struct {
	Name string
	Type DataType
}

var (
	Boolean = DataType{Kind: TypeBoolean}
	UInt8   = DataType{Kind: TypeUInt8}
	UInt16  = DataType{Kind: TypeUInt16}
	UInt32  = DataType{Kind: TypeUInt32}
	UInt64  = DataType{Kind: TypeUInt64}
	Int8    = DataType{Kind: TypeInt8}
	Int16   = DataType{Kind: TypeInt16}
	Int32   = DataType{Kind: TypeInt32}
	Int64   = DataType{Kind: TypeInt64}
	Float32 = DataType{Kind: TypeFloat32}
	Float64 = DataType{Kind: TypeFloat64}
	Utf8    = DataType{Kind: TypeUtf8}
	Binary  = DataType{Kind: TypeBinary}
	Date    = DataType{Kind: TypeDate}
	Time    = DataType{Kind: TypeTime}
	Null    = DataType{Kind: TypeNull}
	Unknown = DataType{Kind: TypeUnknown}
)

// Datetime is a timestamp type. tz nil means naive.
func Datetime(unit TimeUnit, tz *string) DataType {
	return DataType{Kind: TypeDatetime, Unit: unit, TZ: tz}
}

// Duration is a time delta type.
func Duration(unit TimeUnit) DataType {
	return DataType{Kind: TypeDuration, Unit: unit}
}

// List is a variable-length list of inner.
func List(inner DataType) DataType {
	return DataType{Kind: TypeList, Inner: &inner}
}

// Struct is a record of named fields.
func Struct(fields ...Field) DataType {
	if fields == nil {
		fields = []Field{}
	}
	return DataType{Kind: TypeStruct, Fields: fields}
}

// Equal reports structural equality.
func (dt DataType) Equal(o DataType) bool {
	if dt.Kind != o.Kind {
		return false
	}
	switch dt.Kind {
	case TypeDatetime:
		if dt.Unit != o.Unit || (dt.TZ == nil) != (o.TZ == nil) {
			return false
		}
		return dt.TZ == nil || *dt.TZ == *o.TZ
	case TypeDuration:
		return dt.Unit == o.Unit
	case TypeList:
		if dt.Inner == nil || o.Inner == nil {
			return dt.Inner == o.Inner
		}
		return dt.Inner.Equal(*o.Inner)
	case TypeStruct:
		if len(dt.Fields) != len(o.Fields) {
			return false
		}
		for i := range dt.Fields {
			if dt.Fields[i].Name != o.Fields[i].Name || !dt.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
	}
	return true
}

// IsNumeric reports whether dt is an integer or float type.
func (dt DataType) IsNumeric() bool {
	return dt.Kind >= TypeUInt8 && dt.Kind <= TypeFloat64
}

func (dt DataType) String() string {
	switch dt.Kind {
	case TypeDatetime:
		if dt.TZ != nil {
			return fmt.Sprintf("datetime[%s, %s]", dt.Unit, *dt.TZ)
		}
		return fmt.Sprintf("datetime[%s]", dt.Unit)
	case TypeDuration:
		return fmt.Sprintf("duration[%s]", dt.Unit)
	case TypeList:
		return fmt.Sprintf("list[%s]", dt.Inner)
	case TypeStruct:
		parts := make([]string, len(dt.Fields))
		for i, f := range dt.Fields {
			parts[i] = f.Name + ": " + f.Type.String()
		}
		return "struct{" + strings.Join(parts, ", ") + "}"
	}
	return enumString(typeShortNames, int(dt.Kind))
}

func init() {
	registerTable("DataType", append(constEntries(typeConstNames),
		"block 0 Datetime(TimeUnit, option<string>)",
		"block 1 Duration(TimeUnit)",
		"block 2 List(DataType)",
		"block 3 Struct(list<(string * DataType)>)",
	)...)
}

const (
	tagDatetime = 0
	tagDuration = 1
	tagList     = 2
	tagStruct   = 3
)

func encodeDataType(dt DataType) (value.Value, error) {
	switch dt.Kind {
	case TypeDatetime:
		unit, err := timeUnitCodec.Encode(nil, dt.Unit)
		if err != nil {
			return value.Value{}, err
		}
		tz := value.None()
		if dt.TZ != nil {
			tz = value.Some(value.String(*dt.TZ))
		}
		return value.Block(tagDatetime, unit, tz), nil
	case TypeDuration:
		unit, err := timeUnitCodec.Encode(nil, dt.Unit)
		if err != nil {
			return value.Value{}, err
		}
		return value.Block(tagDuration, unit), nil
	case TypeList:
		if dt.Inner == nil {
			return value.Value{}, fmt.Errorf("list data type without inner type")
		}
		inner, err := encodeDataType(*dt.Inner)
		if err != nil {
			return value.Value{}, err
		}
		return value.Block(tagList, inner), nil
	case TypeStruct:
		fields := make([]value.Value, len(dt.Fields))
		for i, f := range dt.Fields {
			t, err := encodeDataType(f.Type)
			if err != nil {
				return value.Value{}, fmt.Errorf("struct field %q: %w", f.Name, err)
			}
			fields[i] = value.Tuple(value.String(f.Name), t)
		}
		return value.Block(tagStruct, value.List(fields...)), nil
	}
	if dt.Kind < 0 || int(dt.Kind) >= len(typeConstNames) {
		return value.Value{}, fmt.Errorf("invalid DataType kind %d", int(dt.Kind))
	}
	return value.Int(int64(dt.Kind)), nil
}

func decodeDataType(v value.Value) (DataType, error) {
	if v.IsInt() {
		i, _ := v.AsInt()
		if i < 0 || i >= int64(len(typeConstNames)) {
			return DataType{}, &value.ShapeError{Want: "DataType", Got: v}
		}
		return DataType{Kind: TypeKind(i)}, nil
	}
	tag, err := v.Tag()
	if err != nil {
		return DataType{}, &value.ShapeError{Want: "DataType", Got: v}
	}
	switch tag {
	case tagDatetime:
		fields, err := v.Block(tagDatetime, 2)
		if err != nil {
			return DataType{}, err
		}
		unit, err := timeUnitCodec.Decode(nil, fields[0])
		if err != nil {
			return DataType{}, err
		}
		tz, err := optString.Decode(nil, fields[1])
		if err != nil {
			return DataType{}, err
		}
		return Datetime(unit, tz), nil
	case tagDuration:
		fields, err := v.Block(tagDuration, 1)
		if err != nil {
			return DataType{}, err
		}
		unit, err := timeUnitCodec.Decode(nil, fields[0])
		if err != nil {
			return DataType{}, err
		}
		return Duration(unit), nil
	case tagList:
		fields, err := v.Block(tagList, 1)
		if err != nil {
			return DataType{}, err
		}
		inner, err := decodeDataType(fields[0])
		if err != nil {
			return DataType{}, err
		}
		return List(inner), nil
	case tagStruct:
		fields, err := v.Block(tagStruct, 1)
		if err != nil {
			return DataType{}, err
		}
		items, err := fields[0].AsList()
		if err != nil {
			return DataType{}, err
		}
		out := make([]Field, len(items))
		for i, it := range items {
			if out[i], err = decodeField(it); err != nil {
				return DataType{}, err
			}
		}
		return Struct(out...), nil
	}
	return DataType{}, &value.ShapeError{Want: "DataType", Got: v}
}

func decodeField(v value.Value) (Field, error) {
	pair, err := v.Block(0, 2)
	if err != nil {
		return Field{}, err
	}
	name, err := pair[0].AsString()
	if err != nil {
		return Field{}, err
	}
	dt, err := decodeDataType(pair[1])
	if err != nil {
		return Field{}, err
	}
	return Field{Name: name, Type: dt}, nil
}

var dataTypeCodec = interop.NewCodec("DataType",
	func(_ *interop.Encoder, dt DataType) (value.Value, error) { return encodeDataType(dt) },
	func(_ *interop.Decoder, v value.Value) (DataType, error) { return decodeDataType(v) })

// Schema is an ordered list of column names and types.
type Schema []Field

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the type of the named column.
func (s Schema) Lookup(name string) (DataType, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Type, true
		}
	}
	return DataType{}, false
}

func (s Schema) String() string {
	var sb strings.Builder
	for i, f := range s {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s", f.Name, f.Type)
	}
	return sb.String()
}

var schemaCodec = interop.NewCodec("Schema",
	func(_ *interop.Encoder, s Schema) (value.Value, error) {
		fields := make([]value.Value, len(s))
		for i, f := range s {
			t, err := encodeDataType(f.Type)
			if err != nil {
				return value.Value{}, fmt.Errorf("column %q: %w", f.Name, err)
			}
			fields[i] = value.Tuple(value.String(f.Name), t)
		}
		return value.List(fields...), nil
	},
	func(_ *interop.Decoder, v value.Value) (Schema, error) {
		items, err := v.AsList()
		if err != nil {
			return nil, err
		}
		out := make(Schema, len(items))
		for i, it := range items {
			if out[i], err = decodeField(it); err != nil {
				return nil, err
			}
		}
		return out, nil
	})
