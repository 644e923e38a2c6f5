package polars_test

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/bridge/bridgetest"
	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/polars"
	"github.com/isesword/polars-go-interop/value"
)

// fakeSeries and fakeFrame model the engine's objects inside the fake
// library: int64 columns only.
type fakeSeries struct {
	name string
	vals []int64
}

type fakeFrame []fakeSeries

func cloneFrame(v any) any {
	f := v.(fakeFrame)
	out := make(fakeFrame, len(f))
	for i, s := range f {
		out[i] = fakeSeries{name: s.name, vals: append([]int64(nil), s.vals...)}
	}
	return out
}

func (f fakeFrame) height() int {
	if len(f) == 0 {
		return 0
	}
	return len(f[0].vals)
}

func (f fakeFrame) take(idx []int) fakeFrame {
	out := make(fakeFrame, len(f))
	for i, s := range f {
		vals := make([]int64, len(idx))
		for j, k := range idx {
			vals[j] = s.vals[k]
		}
		out[i] = fakeSeries{name: s.name, vals: vals}
	}
	return out
}

func (f fakeFrame) ipc() ([]byte, error) {
	fields := make([]arrow.Field, len(f))
	cols := make([]arrow.Array, len(f))
	for i, s := range f {
		b := array.NewInt64Builder(memory.DefaultAllocator)
		b.AppendValues(s.vals, nil)
		cols[i] = b.NewArray()
		b.Release()
		fields[i] = arrow.Field{Name: s.name, Type: arrow.PrimitiveTypes.Int64}
	}
	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecordBatch(schema, cols, int64(f.height()))
	defer rec.Release()
	for _, c := range cols {
		c.Release()
	}

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	if err := w.Write(rec); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type frameFake struct {
	*bridgetest.Fake
	t *testing.T
}

func (f frameFake) handle(args value.Value, i int) uint64 {
	v, err := args.Field(i)
	require.NoError(f.t, err)
	h, err := v.AsHandle()
	require.NoError(f.t, err)
	return h
}

func (f frameFake) frame(args value.Value, i int) fakeFrame {
	v, ok := f.Get(f.handle(args, i))
	require.True(f.t, ok)
	return v.(fakeFrame)
}

func (f frameFake) put(fr fakeFrame) value.Value {
	return value.Abstract(f.Put(fr, cloneFrame))
}

func stringsOf(t *testing.T, v value.Value) []string {
	items, err := v.AsList()
	require.NoError(t, err)
	out := make([]string, len(items))
	for i, it := range items {
		out[i], err = it.AsString()
		require.NoError(t, err)
	}
	return out
}

func newFrameFake(t *testing.T) (frameFake, *bridge.Bridge) {
	t.Helper()
	f := frameFake{Fake: bridgetest.New(), t: t}

	f.Handle("rust_series_new", func(args value.Value) (value.Value, error) {
		name, _ := args.Fields()[1].AsString()
		items, err := args.Fields()[2].AsList()
		if err != nil {
			return value.Value{}, err
		}
		vals := make([]int64, len(items))
		for i, it := range items {
			vals[i], _ = it.AsInt()
		}
		return value.Ok(value.Abstract(f.Put(fakeSeries{name, vals}, nil))), nil
	})
	f.Handle("rust_series_from_json", func(args value.Value) (value.Value, error) {
		name, _ := args.Fields()[0].AsString()
		raw, _ := args.Fields()[1].AsBytes()
		var items []*int64
		if err := json.Unmarshal(raw, &items); err != nil {
			return value.Err(err.Error()), nil
		}
		vals := make([]int64, len(items))
		for i, it := range items {
			if it != nil {
				vals[i] = *it
			}
		}
		return value.Ok(value.Abstract(f.Put(fakeSeries{name, vals}, nil))), nil
	})
	f.Handle("rust_data_frame_new", func(args value.Value) (value.Value, error) {
		items, _ := args.Fields()[0].AsList()
		var fr fakeFrame
		for _, it := range items {
			h, _ := it.AsHandle()
			s, _ := f.Get(h)
			fr = append(fr, s.(fakeSeries))
		}
		for _, s := range fr[1:] {
			if len(s.vals) != fr.height() {
				return value.Err("lengths don't match"), nil
			}
		}
		return value.Ok(f.put(fr)), nil
	})
	f.Handle("rust_data_frame_sort", func(args value.Value) (value.Value, error) {
		fr := f.frame(args, 0)
		by := stringsOf(t, args.Fields()[1])
		desc, _ := args.Fields()[2].AsList()
		descending, _ := desc[0].AsBool()
		var key []int64
		for _, s := range fr {
			if s.name == by[0] {
				key = s.vals
			}
		}
		if key == nil {
			return value.Err(fmt.Sprintf("not found: %s", by[0])), nil
		}
		idx := make([]int, fr.height())
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			if descending {
				return key[idx[a]] > key[idx[b]]
			}
			return key[idx[a]] < key[idx[b]]
		})
		return value.Ok(f.put(fr.take(idx))), nil
	})
	f.Handle("rust_data_frame_head", func(args value.Value) (value.Value, error) {
		fr := f.frame(args, 0)
		n := 10
		if inner, ok, _ := args.Fields()[1].AsOption(); ok {
			i, _ := inner.AsInt()
			n = int(i)
		}
		n = min(n, fr.height())
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return f.put(fr.take(idx)), nil
	})
	f.Handle("rust_data_frame_height", func(args value.Value) (value.Value, error) {
		return value.Int(int64(f.frame(args, 0).height())), nil
	})
	f.Handle("rust_data_frame_get_column_names", func(args value.Value) (value.Value, error) {
		var names []value.Value
		for _, s := range f.frame(args, 0) {
			names = append(names, value.String(s.name))
		}
		return value.List(names...), nil
	})
	f.Handle("rust_data_frame_vstack_mut", func(args value.Value) (value.Value, error) {
		h := f.handle(args, 0)
		fr := cloneFrame(f.frame(args, 0)).(fakeFrame)
		other := f.frame(args, 1)
		if len(fr) != len(other) {
			return value.Err("cannot vstack: width mismatch"), nil
		}
		for i := range fr {
			fr[i].vals = append(fr[i].vals, other[i].vals...)
		}
		return value.Ok(value.Unit()), f.Set(h, fr)
	})
	f.Handle("rust_data_frame_vertical_concat", func(args value.Value) (value.Value, error) {
		items, err := args.Fields()[0].AsList()
		if err != nil {
			return value.Value{}, err
		}
		var out fakeFrame
		for i, it := range items {
			h, _ := it.AsHandle()
			v, ok := f.Get(h)
			require.True(t, ok)
			fr := v.(fakeFrame)
			if i == 0 {
				out = cloneFrame(fr).(fakeFrame)
				continue
			}
			if len(fr) != len(out) {
				return value.Err("cannot concat: width mismatch"), nil
			}
			for j := range out {
				out[j].vals = append(out[j].vals, fr[j].vals...)
			}
		}
		return value.Ok(f.put(out)), nil
	})
	f.Handle("rust_data_frame_to_ipc", func(args value.Value) (value.Value, error) {
		b, err := f.frame(args, 0).ipc()
		if err != nil {
			return value.Value{}, err
		}
		return value.Ok(value.Bytes(b)), nil
	})
	f.Handle("rust_data_frame_from_ipc", func(args value.Value) (value.Value, error) {
		raw, _ := args.Fields()[0].AsBytes()
		r, err := ipc.NewReader(bytes.NewReader(raw))
		if err != nil {
			return value.Err(err.Error()), nil
		}
		defer r.Release()
		var fr fakeFrame
		for r.Next() {
			rec := r.RecordBatch()
			for j := 0; j < int(rec.NumCols()); j++ {
				vals := rec.Column(j).(*array.Int64).Int64Values()
				if len(fr) <= j {
					fr = append(fr, fakeSeries{name: rec.ColumnName(j)})
				}
				fr[j].vals = append(fr[j].vals, vals...)
			}
		}
		return value.Ok(f.put(fr)), nil
	})
	f.Handle("rust_data_frame_lazy", func(args value.Value) (value.Value, error) {
		return f.put(cloneFrame(f.frame(args, 0)).(fakeFrame)), nil
	})
	f.Handle("rust_lazy_frame_limit", func(args value.Value) (value.Value, error) {
		fr := f.frame(args, 0)
		n, _ := args.Fields()[1].AsInt()
		idx := make([]int, min(int(n), fr.height()))
		for i := range idx {
			idx[i] = i
		}
		return f.put(fr.take(idx)), nil
	})
	f.Handle("rust_lazy_frame_collect", func(args value.Value) (value.Value, error) {
		return value.Ok(f.put(cloneFrame(f.frame(args, 0)).(fakeFrame))), nil
	})

	brg, err := f.Bridge()
	require.NoError(t, err)
	return f, brg
}

func newFrame(t *testing.T, brg *bridge.Bridge, cols map[string][]int64) *polars.DataFrame {
	t.Helper()
	names := make([]string, 0, len(cols))
	for n := range cols {
		names = append(names, n)
	}
	sort.Strings(names)
	series := make([]*polars.Series, len(names))
	for i, n := range names {
		s, err := polars.SeriesNew(brg, polars.TypedInt64, n, cols[n])
		require.NoError(t, err)
		series[i] = s
	}
	df, err := polars.NewDataFrame(brg, series...)
	require.NoError(t, err)
	for _, s := range series {
		s.Free()
	}
	return df
}

func TestDataFrameSortHead(t *testing.T) {
	f, brg := newFrameFake(t)

	df := newFrame(t, brg, map[string][]int64{"a": {3, 1, 2}, "b": {30, 10, 20}})
	defer df.Free()

	sorted, err := df.Sort([]string{"a"}, []bool{true}, false)
	require.NoError(t, err)
	defer sorted.Free()

	two := 2
	head, err := sorted.Head(&two)
	require.NoError(t, err)
	defer head.Free()

	rows, err := head.Rows()
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"a": int64(3), "b": int64(30)},
		{"a": int64(2), "b": int64(20)},
	}, rows)

	names, err := head.ColumnNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = df.Sort([]string{"missing"}, []bool{false}, false)
	var be *bridge.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridge.ErrException, be.Code)
	assert.Equal(t, "not found: missing", be.Message)

	assert.Contains(t, f.Calls(), "rust_data_frame_to_ipc")
}

func TestDataFrameRecordsRoundTrip(t *testing.T) {
	_, brg := newFrameFake(t)
	df := newFrame(t, brg, map[string][]int64{"a": {1, 2}, "b": {3, 4}})

	recs, err := df.Records()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	defer recs[0].Release()
	assert.EqualValues(t, 2, recs[0].NumRows())
	assert.Equal(t, "b", recs[0].ColumnName(1))

	back, err := polars.DataFrameFromRecords(brg, recs...)
	require.NoError(t, err)
	rows, err := back.Rows()
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"a": int64(1), "b": int64(3)},
		{"a": int64(2), "b": int64(4)},
	}, rows)

	_, err = polars.DataFrameFromRecords(brg)
	assert.ErrorIs(t, err, polars.ErrNoData)
}

func TestNewDataFrameFromMap(t *testing.T) {
	f, brg := newFrameFake(t)
	before := len(f.Calls())

	df, err := polars.NewDataFrameFromMap(brg, map[string]interface{}{
		"b": []interface{}{1, nil, 3},
		"a": []int64{7, 8, 9},
	})
	require.NoError(t, err)

	names, err := df.ColumnNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, []string{
		"rust_series_new",
		"rust_series_from_json",
		"rust_data_frame_new",
	}, f.Calls()[before:before+3])

	_, err = polars.NewDataFrameFromMap(brg, map[string]interface{}{"x": 5})
	assert.ErrorContains(t, err, "column x")

	_, err = polars.NewDataFrameFromMap(brg, nil)
	assert.ErrorIs(t, err, polars.ErrNoData)
}

func TestDataFrameHeadRejectsNegativeLength(t *testing.T) {
	f, brg := newFrameFake(t)
	df := newFrame(t, brg, map[string][]int64{"a": {1}})
	before := len(f.Calls())

	n := -1
	_, err := df.Head(&n)
	assert.ErrorIs(t, err, interop.ErrOutOfRange)
	assert.Len(t, f.Calls(), before, "no native call is made")
}

func TestNewDataFrameLengthMismatch(t *testing.T) {
	_, brg := newFrameFake(t)
	a, err := polars.SeriesNew(brg, polars.TypedInt64, "a", []int64{1, 2})
	require.NoError(t, err)
	b, err := polars.SeriesNew(brg, polars.TypedInt64, "b", []int64{1})
	require.NoError(t, err)

	_, err = polars.NewDataFrame(brg, a, b)
	assert.ErrorContains(t, err, "lengths don't match")
}

func TestConcatWithoutFrames(t *testing.T) {
	_, err := polars.VerticalConcat()
	assert.ErrorIs(t, err, polars.ErrNoData)
	_, err = polars.HorizontalConcat()
	assert.ErrorIs(t, err, polars.ErrNoData)
	_, err = polars.DiagonalConcat()
	assert.ErrorIs(t, err, polars.ErrNoData)

	dfs, err := polars.CollectAll()
	require.NoError(t, err)
	assert.Empty(t, dfs)
}

func TestVerticalConcat(t *testing.T) {
	f, brg := newFrameFake(t)
	a := newFrame(t, brg, map[string][]int64{"x": {1, 2}})
	b := newFrame(t, brg, map[string][]int64{"x": {3}})
	c := newFrame(t, brg, map[string][]int64{"x": {4, 5}})

	t.Run("single frame", func(t *testing.T) {
		one, err := polars.VerticalConcat(a)
		require.NoError(t, err)
		defer one.Free()

		rows, err := one.Rows()
		require.NoError(t, err)
		want, err := a.Rows()
		require.NoError(t, err)
		assert.Equal(t, want, rows)
	})

	t.Run("row order across inputs", func(t *testing.T) {
		all, err := polars.VerticalConcat(a, b, c)
		require.NoError(t, err)
		defer all.Free()

		rows, err := all.Rows()
		require.NoError(t, err)
		var got []int64
		for _, r := range rows {
			got = append(got, r["x"].(int64))
		}
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)
	})

	t.Run("width mismatch", func(t *testing.T) {
		wide := newFrame(t, brg, map[string][]int64{"x": {6}, "y": {7}})
		_, err := polars.VerticalConcat(a, wide)
		assert.ErrorContains(t, err, "width mismatch")
	})

	assert.Contains(t, f.Calls(), "rust_data_frame_vertical_concat")
}

func TestVstackMut(t *testing.T) {
	_, brg := newFrameFake(t)
	df := newFrame(t, brg, map[string][]int64{"a": {1, 2}})
	other := newFrame(t, brg, map[string][]int64{"a": {3}})
	alias, err := df.Clone()
	require.NoError(t, err)

	require.NoError(t, df.VstackMut(other))

	h, err := df.Height()
	require.NoError(t, err)
	assert.Equal(t, 3, h)

	// a clone is a separate value
	h, err = alias.Height()
	require.NoError(t, err)
	assert.Equal(t, 2, h)

	wide := newFrame(t, brg, map[string][]int64{"a": {1}, "b": {2}})
	err = df.VstackMut(wide)
	var be *bridge.Error
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Message, "width mismatch")
}

func TestVstackMutWithItselfPanics(t *testing.T) {
	_, brg := newFrameFake(t)
	df := newFrame(t, brg, map[string][]int64{"a": {1}})

	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			var be *interop.BorrowError
			require.True(t, errors.As(r.(error), &be))
			assert.False(t, be.Mutable)
		}()
		_ = df.VstackMut(df)
	}()

	// the failed call released its borrows
	h, err := df.Height()
	require.NoError(t, err)
	assert.Equal(t, 1, h)
}

func TestFreedFrame(t *testing.T) {
	f, brg := newFrameFake(t)
	df := newFrame(t, brg, map[string][]int64{"a": {1}})
	live := f.Live()

	df.Free()
	df.Free()
	assert.Equal(t, live-1, f.Live())

	_, err := df.Height()
	assert.ErrorIs(t, err, interop.ErrFreed)
}

func TestLazyFrameDeferredError(t *testing.T) {
	f, brg := newFrameFake(t)
	df := newFrame(t, brg, map[string][]int64{"a": {1, 2, 3}})
	before := len(f.Calls())

	lf := df.Filter(polars.Lit(struct{}{})).Limit(1)
	require.Error(t, lf.Err())
	assert.ErrorContains(t, lf.Err(), "unsupported literal")

	_, err := lf.Collect()
	assert.Equal(t, lf.Err(), err, "collect reports the first failure")
	assert.Equal(t, []string{"rust_data_frame_lazy"}, f.Calls()[before:])
}

func TestLazyFrameCollectRows(t *testing.T) {
	_, brg := newFrameFake(t)
	df := newFrame(t, brg, map[string][]int64{"a": {5, 6, 7}})

	rows, err := df.Lazy().Limit(2).CollectRows()
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"a": int64(5)}, {"a": int64(6)}}, rows)
}

func TestNilBridge(t *testing.T) {
	_, err := polars.SeriesNew[int64](nil, polars.TypedInt64, "a", nil)
	assert.ErrorIs(t, err, bridge.ErrNilBridge)

	var df *polars.DataFrame
	_, err = df.Height()
	assert.ErrorIs(t, err, bridge.ErrNilBridge)
}
