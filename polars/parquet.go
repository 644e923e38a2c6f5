package polars

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

// ParquetInfo is what InspectParquet reads from a file footer.
type ParquetInfo struct {
	Schema    Schema
	NumRows   int64
	RowGroups int
}

// InspectParquet reads the footer of a Parquet file without the engine and
// maps its columns onto the types ReadParquet would produce.
func InspectParquet(path string) (ParquetInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParquetInfo{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return ParquetInfo{}, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return ParquetInfo{}, fmt.Errorf("failed to open parquet file: %w", err)
	}

	fields := pf.Schema().Fields()
	schema := make(Schema, len(fields))
	for i, field := range fields {
		dt, err := parquetFieldType(field)
		if err != nil {
			return ParquetInfo{}, fmt.Errorf("column %q: %w", field.Name(), err)
		}
		schema[i] = Field{Name: field.Name(), Type: dt}
	}
	return ParquetInfo{
		Schema:    schema,
		NumRows:   pf.NumRows(),
		RowGroups: len(pf.RowGroups()),
	}, nil
}

func parquetFieldType(field parquet.Field) (DataType, error) {
	if field.Leaf() {
		dt, err := parquetLeafType(field.Type())
		if err != nil {
			return DataType{}, err
		}
		if field.Repeated() {
			return List(dt), nil
		}
		return dt, nil
	}

	if lt := field.Type().LogicalType(); lt != nil && lt.List != nil {
		// LIST -> repeated group "list" -> "element"
		inner := field.Fields()
		if len(inner) != 1 {
			return DataType{}, fmt.Errorf("malformed list group")
		}
		elem := inner[0]
		if !elem.Leaf() && len(elem.Fields()) == 1 {
			elem = elem.Fields()[0]
		}
		dt, err := parquetFieldType(elem)
		if err != nil {
			return DataType{}, err
		}
		return List(dt), nil
	}

	children := field.Fields()
	out := make([]Field, len(children))
	for i, c := range children {
		dt, err := parquetFieldType(c)
		if err != nil {
			return DataType{}, fmt.Errorf("field %q: %w", c.Name(), err)
		}
		out[i] = Field{Name: c.Name(), Type: dt}
	}
	dt := Struct(out...)
	if field.Repeated() {
		return List(dt), nil
	}
	return dt, nil
}

func parquetLeafType(t parquet.Type) (DataType, error) {
	if lt := t.LogicalType(); lt != nil {
		switch {
		case lt.UTF8 != nil, lt.Enum != nil, lt.Json != nil:
			return Utf8, nil
		case lt.Date != nil:
			return Date, nil
		case lt.Time != nil:
			return Time, nil
		case lt.Timestamp != nil:
			var tz *string
			if lt.Timestamp.IsAdjustedToUTC {
				utc := "UTC"
				tz = &utc
			}
			return Datetime(parquetTimeUnit(lt.Timestamp.Unit), tz), nil
		case lt.Integer != nil:
			return parquetIntType(lt.Integer), nil
		}
	}

	switch t.Kind() {
	case parquet.Boolean:
		return Boolean, nil
	case parquet.Int32:
		return Int32, nil
	case parquet.Int64:
		return Int64, nil
	case parquet.Int96:
		return Datetime(Nanoseconds, nil), nil
	case parquet.Float:
		return Float32, nil
	case parquet.Double:
		return Float64, nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return Binary, nil
	}
	return DataType{}, fmt.Errorf("unsupported parquet type %s", t)
}

func parquetTimeUnit(u format.TimeUnit) TimeUnit {
	switch {
	case u.Millis != nil:
		return Milliseconds
	case u.Micros != nil:
		return Microseconds
	}
	return Nanoseconds
}

func parquetIntType(it *format.IntType) DataType {
	if it.IsSigned {
		switch it.BitWidth {
		case 8:
			return Int8
		case 16:
			return Int16
		case 32:
			return Int32
		}
		return Int64
	}
	switch it.BitWidth {
	case 8:
		return UInt8
	case 16:
		return UInt16
	case 32:
		return UInt32
	}
	return UInt64
}
