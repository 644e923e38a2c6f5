package polars

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/isesword/polars-go-interop/bridge"
)

func arrowTimeUnit(u TimeUnit) arrow.TimeUnit {
	switch u {
	case Microseconds:
		return arrow.Microsecond
	case Milliseconds:
		return arrow.Millisecond
	}
	return arrow.Nanosecond
}

func fromArrowTimeUnit(u arrow.TimeUnit) (TimeUnit, error) {
	switch u {
	case arrow.Nanosecond:
		return Nanoseconds, nil
	case arrow.Microsecond:
		return Microseconds, nil
	case arrow.Millisecond:
		return Milliseconds, nil
	}
	return 0, fmt.Errorf("unsupported arrow time unit %s", u)
}

// ToArrow maps dt to the Arrow type the engine exports it as.
func (dt DataType) ToArrow() (arrow.DataType, error) {
	switch dt.Kind {
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case TypeUInt8:
		return arrow.PrimitiveTypes.Uint8, nil
	case TypeUInt16:
		return arrow.PrimitiveTypes.Uint16, nil
	case TypeUInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case TypeUInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case TypeInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case TypeInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case TypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case TypeFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case TypeUtf8:
		return arrow.BinaryTypes.LargeString, nil
	case TypeBinary:
		return arrow.BinaryTypes.LargeBinary, nil
	case TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	case TypeTime:
		return arrow.FixedWidthTypes.Time64ns, nil
	case TypeNull:
		return arrow.Null, nil
	case TypeDatetime:
		tz := ""
		if dt.TZ != nil {
			tz = *dt.TZ
		}
		return &arrow.TimestampType{Unit: arrowTimeUnit(dt.Unit), TimeZone: tz}, nil
	case TypeDuration:
		return &arrow.DurationType{Unit: arrowTimeUnit(dt.Unit)}, nil
	case TypeList:
		inner, err := dt.Inner.ToArrow()
		if err != nil {
			return nil, err
		}
		return arrow.LargeListOf(inner), nil
	case TypeStruct:
		fields := make([]arrow.Field, len(dt.Fields))
		for i, f := range dt.Fields {
			t, err := f.Type.ToArrow()
			if err != nil {
				return nil, fmt.Errorf("struct field %q: %w", f.Name, err)
			}
			fields[i] = arrow.Field{Name: f.Name, Type: t, Nullable: true}
		}
		return arrow.StructOf(fields...), nil
	}
	return nil, fmt.Errorf("%s has no arrow representation", dt)
}

// DataTypeFromArrow maps an Arrow type to the engine type it imports as.
func DataTypeFromArrow(t arrow.DataType) (DataType, error) {
	switch t.ID() {
	case arrow.BOOL:
		return Boolean, nil
	case arrow.UINT8:
		return UInt8, nil
	case arrow.UINT16:
		return UInt16, nil
	case arrow.UINT32:
		return UInt32, nil
	case arrow.UINT64:
		return UInt64, nil
	case arrow.INT8:
		return Int8, nil
	case arrow.INT16:
		return Int16, nil
	case arrow.INT32:
		return Int32, nil
	case arrow.INT64:
		return Int64, nil
	case arrow.FLOAT32:
		return Float32, nil
	case arrow.FLOAT64:
		return Float64, nil
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return Utf8, nil
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.BINARY_VIEW:
		return Binary, nil
	case arrow.DATE32, arrow.DATE64:
		return Date, nil
	case arrow.TIME32, arrow.TIME64:
		return Time, nil
	case arrow.NULL:
		return Null, nil
	case arrow.TIMESTAMP:
		ts := t.(*arrow.TimestampType)
		unit, err := fromArrowTimeUnit(ts.Unit)
		if err != nil {
			return DataType{}, err
		}
		var tz *string
		if ts.TimeZone != "" {
			z := ts.TimeZone
			tz = &z
		}
		return Datetime(unit, tz), nil
	case arrow.DURATION:
		unit, err := fromArrowTimeUnit(t.(*arrow.DurationType).Unit)
		if err != nil {
			return DataType{}, err
		}
		return Duration(unit), nil
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		inner, err := DataTypeFromArrow(t.(arrow.ListLikeType).Elem())
		if err != nil {
			return DataType{}, err
		}
		return List(inner), nil
	case arrow.STRUCT:
		st := t.(*arrow.StructType)
		fields := make([]Field, st.NumFields())
		for i := range fields {
			f := st.Field(i)
			ft, err := DataTypeFromArrow(f.Type)
			if err != nil {
				return DataType{}, fmt.Errorf("struct field %q: %w", f.Name, err)
			}
			fields[i] = Field{Name: f.Name, Type: ft}
		}
		return Struct(fields...), nil
	}
	return DataType{}, fmt.Errorf("unsupported arrow type %s", t)
}

// ToArrow converts the schema to an Arrow schema with nullable fields.
func (s Schema) ToArrow() (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(s))
	for i, f := range s {
		t, err := f.Type.ToArrow()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		fields[i] = arrow.Field{Name: f.Name, Type: t, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

// SchemaFromArrow converts an Arrow schema.
func SchemaFromArrow(s *arrow.Schema) (Schema, error) {
	out := make(Schema, s.NumFields())
	for i, f := range s.Fields() {
		t, err := DataTypeFromArrow(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		out[i] = Field{Name: f.Name, Type: t}
	}
	return out, nil
}

// Records exports the frame as Arrow record batches via IPC. The caller
// releases each batch.
func (df *DataFrame) Records() ([]arrow.RecordBatch, error) {
	ipcBytes, err := dataFrameToIPC(df.bridge(), df)
	if err != nil {
		return nil, err
	}
	reader, err := ipc.NewReader(bytes.NewReader(ipcBytes), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("open arrow reader: %w", err)
	}
	defer reader.Release()

	var out []arrow.RecordBatch
	for reader.Next() {
		rec := reader.RecordBatch()
		rec.Retain()
		out = append(out, rec)
	}
	if err := reader.Err(); err != nil {
		for _, r := range out {
			r.Release()
		}
		return nil, fmt.Errorf("read arrow records: %w", err)
	}
	return out, nil
}

// DataFrameFromRecords imports record batches sharing one schema.
func DataFrameFromRecords(brg *bridge.Bridge, recs ...arrow.RecordBatch) (*DataFrame, error) {
	if len(recs) == 0 {
		return nil, ErrNoData
	}
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(recs[0].Schema()), ipc.WithAllocator(memory.NewGoAllocator()))
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			w.Close()
			return nil, fmt.Errorf("write arrow record: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close arrow writer: %w", err)
	}
	return dataFrameFromIPC(brg, buf.Bytes())
}

// parseArrowIPC converts an Arrow IPC stream into row maps. Empty input
// gives an empty, non-nil slice.
func parseArrowIPC(data []byte) ([]map[string]interface{}, error) {
	rows := []map[string]interface{}{}
	if len(data) == 0 {
		return rows, nil
	}

	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("open arrow reader: %w", err)
	}
	defer reader.Release()

	for reader.Next() {
		rec := reader.RecordBatch()
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make(map[string]interface{}, int(rec.NumCols()))
			for j := 0; j < int(rec.NumCols()); j++ {
				row[rec.ColumnName(j)] = arrowValue(rec.Column(j), i)
			}
			rows = append(rows, row)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read arrow records: %w", err)
	}
	return rows, nil
}

// arrowValue extracts one cell. Nulls are nil; temporal values become
// time.Time or time.Duration.
func arrowValue(col arrow.Array, i int) interface{} {
	if col.IsNull(i) {
		return nil
	}
	switch c := col.(type) {
	case *array.Boolean:
		return c.Value(i)
	case *array.Int8:
		return c.Value(i)
	case *array.Int16:
		return c.Value(i)
	case *array.Int32:
		return c.Value(i)
	case *array.Int64:
		return c.Value(i)
	case *array.Uint8:
		return c.Value(i)
	case *array.Uint16:
		return c.Value(i)
	case *array.Uint32:
		return c.Value(i)
	case *array.Uint64:
		return c.Value(i)
	case *array.Float32:
		return c.Value(i)
	case *array.Float64:
		return c.Value(i)
	case *array.String:
		return c.Value(i)
	case *array.LargeString:
		return c.Value(i)
	case *array.StringView:
		return c.Value(i)
	case *array.Binary:
		return append([]byte(nil), c.Value(i)...)
	case *array.LargeBinary:
		return append([]byte(nil), c.Value(i)...)
	case *array.Date32:
		return c.Value(i).ToTime()
	case *array.Date64:
		return c.Value(i).ToTime()
	case *array.Time64:
		return time.Duration(c.Value(i)) * c.DataType().(*arrow.Time64Type).Unit.Multiplier()
	case *array.Timestamp:
		return c.Value(i).ToTime(c.DataType().(*arrow.TimestampType).Unit).UTC()
	case *array.Duration:
		return time.Duration(c.Value(i)) * c.DataType().(*arrow.DurationType).Unit.Multiplier()
	case *array.List:
		start, end := c.ValueOffsets(i)
		return listValues(c.ListValues(), start, end)
	case *array.LargeList:
		start, end := c.ValueOffsets(i)
		return listValues(c.ListValues(), start, end)
	case *array.Struct:
		st := c.DataType().(*arrow.StructType)
		m := make(map[string]interface{}, c.NumField())
		for j := 0; j < c.NumField(); j++ {
			m[st.Field(j).Name] = arrowValue(c.Field(j), i)
		}
		return m
	}
	return col.ValueStr(i)
}

func listValues(values arrow.Array, start, end int64) []interface{} {
	out := make([]interface{}, 0, end-start)
	for k := start; k < end; k++ {
		out = append(out, arrowValue(values, int(k)))
	}
	return out
}
