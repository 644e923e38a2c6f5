package polars

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/isesword/polars-go-interop/bridge"
)

// NewDataFrameFromMap 从 map 创建 DataFrame（类似 py-polars 的 DataFrame(dict) 方式）
//
// Columns are ordered by name. Slices of a supported element type are
// sent typed; anything else ([]interface{}, pointer slices) goes through
// JSON and the engine infers the type, with nil as null.
//
//	data := map[string]interface{}{
//		"col1": []int64{1, 2, 3},
//		"col2": []string{"a", "b", "c"},
//		"col3": []interface{}{1, nil, 3},
//	}
func NewDataFrameFromMap(brg *bridge.Bridge, data map[string]interface{}) (*DataFrame, error) {
	if len(data) == 0 {
		return nil, ErrNoData
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]*Series, 0, len(names))
	defer func() {
		for _, s := range columns {
			s.Free()
		}
	}()
	for _, name := range names {
		s, err := newColumn(brg, name, data[name])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		columns = append(columns, s)
	}
	return NewDataFrame(brg, columns...)
}

// NewSeriesFromJSON builds a series from a JSON array, inferring its type.
func NewSeriesFromJSON(brg *bridge.Bridge, name string, values []byte) (*Series, error) {
	return seriesFromJSON(brg, name, values)
}

func newColumn(brg *bridge.Bridge, name string, col interface{}) (*Series, error) {
	switch v := col.(type) {
	case []bool:
		return SeriesNew(brg, TypedBoolean, name, v)
	case []int8:
		return SeriesNew(brg, TypedInt8, name, v)
	case []int16:
		return SeriesNew(brg, TypedInt16, name, v)
	case []int32:
		return SeriesNew(brg, TypedInt32, name, v)
	case []int64:
		return SeriesNew(brg, TypedInt64, name, v)
	case []uint8:
		return SeriesNew(brg, TypedUInt8, name, v)
	case []uint16:
		return SeriesNew(brg, TypedUInt16, name, v)
	case []uint32:
		return SeriesNew(brg, TypedUInt32, name, v)
	case []uint64:
		return SeriesNew(brg, TypedUInt64, name, v)
	case []float32:
		return SeriesNew(brg, TypedFloat32, name, v)
	case []float64:
		return SeriesNew(brg, TypedFloat64, name, v)
	case []string:
		return SeriesNew(brg, TypedUtf8, name, v)
	case []*int64:
		return SeriesNewOption(brg, TypedInt64, name, v)
	case []*float64:
		return SeriesNewOption(brg, TypedFloat64, name, v)
	case []*string:
		return SeriesNewOption(brg, TypedUtf8, name, v)
	case []*bool:
		return SeriesNewOption(brg, TypedBoolean, name, v)
	case []time.Time:
		typed, err := TypedDatetime(Microseconds, nil)
		if err != nil {
			return nil, err
		}
		return SeriesNew(brg, typed, name, v)
	}

	values, err := convertColumnValues(col)
	if err != nil {
		return nil, err
	}
	raw, err := encodeColumnJSON(values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return seriesFromJSON(brg, name, raw)
}

// convertColumnValues 转换列数据为 []interface{}
func convertColumnValues(colValues interface{}) ([]interface{}, error) {
	if slice, ok := colValues.([]interface{}); ok {
		return slice, nil
	}

	v := reflect.ValueOf(colValues)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("column data must be a slice, got %T", colValues)
	}

	result := make([]interface{}, v.Len())
	for i := range result {
		val := v.Index(i)
		// nil 指针即 null
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				continue
			}
			val = val.Elem()
		}
		result[i] = val.Interface()
	}
	return result, nil
}
