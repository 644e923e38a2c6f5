package polars

import (
	"bytes"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIPC(t *testing.T, rec arrow.RecordBatch) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParseArrowIPC(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.LargeString, Nullable: true},
		{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Millisecond}},
		{Name: "tags", Type: arrow.LargeListOf(arrow.PrimitiveTypes.Int32)},
		{Name: "pt", Type: arrow.StructOf(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Float64})},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	names := b.Field(0).(*array.LargeStringBuilder)
	names.Append("alice")
	names.AppendNull()

	b.Field(1).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{1000, 2000}, nil)

	tags := b.Field(2).(*array.LargeListBuilder)
	tagValues := tags.ValueBuilder().(*array.Int32Builder)
	tags.Append(true)
	tagValues.AppendValues([]int32{1, 2}, nil)
	tags.Append(true)

	pt := b.Field(3).(*array.StructBuilder)
	x := pt.FieldBuilder(0).(*array.Float64Builder)
	pt.Append(true)
	x.Append(0.5)
	pt.AppendNull()

	rec := b.NewRecord()
	defer rec.Release()

	rows, err := parseArrowIPC(writeIPC(t, rec))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "alice", rows[0]["name"])
	assert.Nil(t, rows[1]["name"])
	assert.Equal(t, time.UnixMilli(1000).UTC(), rows[0]["ts"])
	assert.Equal(t, []interface{}{int32(1), int32(2)}, rows[0]["tags"])
	assert.Equal(t, []interface{}{}, rows[1]["tags"])
	assert.Equal(t, map[string]interface{}{"x": 0.5}, rows[0]["pt"])
	assert.Nil(t, rows[1]["pt"])
}

func TestParseArrowIPCEmpty(t *testing.T) {
	rows, err := parseArrowIPC(nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	_, err = parseArrowIPC([]byte("not arrow"))
	assert.Error(t, err)
}

func TestParseNDJSON(t *testing.T) {
	rows, err := parseNDJSON("{\"a\":1,\"b\":\"x\"}\n\n{\"a\":9007199254740993,\"b\":null}\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, json.Number("1"), rows[0]["a"])
	assert.Equal(t, "x", rows[0]["b"])
	assert.Equal(t, json.Number("9007199254740993"), rows[1]["a"])
	assert.Nil(t, rows[1]["b"])

	_, err = parseNDJSON("{\"a\":1}\n{oops}\n")
	assert.ErrorContains(t, err, "line 2")
}

func TestConvertColumnValues(t *testing.T) {
	one, three := int64(1), int64(3)
	got, err := convertColumnValues([]*int64{&one, nil, &three})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), nil, int64(3)}, got)

	raw, err := encodeColumnJSON(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[1, null, 3]`, string(raw))

	_, err = convertColumnValues(42)
	assert.Error(t, err)
}
