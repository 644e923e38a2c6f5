package polars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parquetPerson struct {
	Name  string   `parquet:"name"`
	Age   int64    `parquet:"age"`
	Score *float64 `parquet:"score,optional"`
	Tags  []string `parquet:"tags,list"`
	Born  int32    `parquet:"born,date"`
}

func TestInspectParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.parquet")
	score := 1.5
	err := parquet.WriteFile(path, []parquetPerson{
		{Name: "alice", Age: 34, Score: &score, Tags: []string{"x"}, Born: 1},
		{Name: "bob", Age: 21},
	})
	require.NoError(t, err)

	info, err := InspectParquet(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, info.NumRows)
	assert.Equal(t, 1, info.RowGroups)

	want := map[string]DataType{
		"name":  Utf8,
		"age":   Int64,
		"score": Float64,
		"tags":  List(Utf8),
		"born":  Date,
	}
	require.Len(t, info.Schema, len(want))
	for _, field := range info.Schema {
		dt, ok := want[field.Name]
		require.True(t, ok, field.Name)
		assert.True(t, dt.Equal(field.Type), "%s: got %s want %s", field.Name, field.Type, dt)
	}
}

func TestInspectParquetMissingFile(t *testing.T) {
	_, err := InspectParquet(filepath.Join(t.TempDir(), "none.parquet"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspectParquetNotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.parquet")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nalice,34\n"), 0o644))
	_, err := InspectParquet(path)
	assert.Error(t, err)
}
