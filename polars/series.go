package polars

import (
	"fmt"
	"time"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

// Series is a named column held by the engine.
type Series struct {
	box *interop.Box
}

func wrapSeries(b *interop.Box) *Series { return &Series{box: b} }

func (s *Series) boxOf() *interop.Box {
	if s == nil {
		return nil
	}
	return s.box
}

func (s *Series) bridge() *bridge.Bridge {
	if s == nil || s.box == nil {
		return nil
	}
	return s.box.Bridge()
}

var (
	seriesCodec    = interop.Abstract("Series", wrapSeries, (*Series).boxOf)
	seriesMutCodec = interop.AbstractMut("Series", wrapSeries, (*Series).boxOf)
	seriesList     = interop.List(seriesCodec)
)

var (
	seriesNew       = interop.Fn3("rust_series_new", typedTokenCodec, interop.String, interop.Raw, seriesCodec, interop.Fallible())
	seriesNewOption = interop.Fn3("rust_series_new_option", typedTokenCodec, interop.String, interop.Raw, seriesCodec, interop.Fallible())
	seriesFromJSON  = interop.Fn2("rust_series_from_json", interop.String, interop.Bytes, seriesCodec, interop.Fallible())
	seriesToList    = interop.Fn2("rust_series_to_list", seriesCodec, typedTokenCodec, interop.Raw, interop.Fallible())
	seriesGet       = interop.Fn3("rust_series_get", seriesCodec, typedTokenCodec, interop.Int, interop.Raw, interop.Fallible())
	seriesDateRange = interop.Fn5("rust_series_date_range", interop.String, interop.Int64, interop.Int64, interop.String, closedWindowCodec, seriesCodec, interop.Fallible())

	seriesName          = interop.Fn1("rust_series_name", seriesCodec, interop.String)
	seriesRename        = interop.Fn2("rust_series_rename", seriesMutCodec, interop.String, interop.Unit)
	seriesDataType      = interop.Fn1("rust_series_dtype", seriesCodec, dataTypeCodec)
	seriesLen           = interop.Fn1("rust_series_len", seriesCodec, interop.Int)
	seriesHead          = interop.Fn2("rust_series_head", seriesCodec, lengthOption, seriesCodec)
	seriesTail          = interop.Fn2("rust_series_tail", seriesCodec, lengthOption, seriesCodec)
	seriesSort          = interop.Fn3("rust_series_sort", seriesCodec, interop.Bool, interop.Bool, seriesCodec)
	seriesCast          = interop.Fn3("rust_series_cast", seriesCodec, dataTypeCodec, interop.Bool, seriesCodec, interop.Fallible())
	seriesFillNull      = interop.Fn2("rust_series_fill_null_with_strategy", seriesCodec, fillNullStrategyCodec, seriesCodec, interop.Fallible())
	seriesIsSorted      = interop.Fn1("rust_series_is_sorted_flag", seriesCodec, isSortedCodec)
	seriesSetSortedFlag = interop.Fn2("rust_series_set_sorted_flag", seriesCodec, isSortedCodec, seriesCodec)
	seriesToString      = interop.Fn1("rust_series_to_string", seriesCodec, interop.String)
)

// SeriesNew builds a series of values. typed fixes both the column type and
// the Go element type.
func SeriesNew[T any](brg *bridge.Bridge, typed Typed[T], name string, values []T) (*Series, error) {
	vs, err := interop.List(typed.elem).Encode(interop.NewEncoder(), values)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", name, err)
	}
	return seriesNew(brg, typed.dt, name, vs)
}

// SeriesNewOption builds a series where nil elements are null.
func SeriesNewOption[T any](brg *bridge.Bridge, typed Typed[T], name string, values []*T) (*Series, error) {
	vs, err := interop.List(interop.Option(typed.elem)).Encode(interop.NewEncoder(), values)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", name, err)
	}
	return seriesNewOption(brg, typed.dt, name, vs)
}

// SeriesToList copies the values out. Nulls are reported as an error by the
// engine; the series must have exactly typed's data type.
func SeriesToList[T any](s *Series, typed Typed[T]) ([]T, error) {
	raw, err := seriesToList(s.bridge(), s, typed.dt)
	if err != nil {
		return nil, err
	}
	return interop.List(typed.elem).Decode(interop.NewDecoder(s.bridge()), raw)
}

// SeriesGet returns the value at index, nil for null.
func SeriesGet[T any](s *Series, typed Typed[T], index int) (*T, error) {
	raw, err := seriesGet(s.bridge(), s, typed.dt, index)
	if err != nil {
		return nil, err
	}
	return interop.Option(typed.elem).Decode(interop.NewDecoder(s.bridge()), raw)
}

// DateRange builds a datetime series from start to end stepping by every,
// e.g. "1d" or "2h".
func DateRange(brg *bridge.Bridge, name string, start, end time.Time, every string, closed ClosedWindow) (*Series, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("date range end %s before start %s", end, start)
	}
	return seriesDateRange(brg, name, start.UnixNano(), end.UnixNano(), every, closed)
}

// Free releases the series.
func (s *Series) Free() { s.boxOf().Free() }

// Clone returns an independent copy.
func (s *Series) Clone() (*Series, error) {
	b, err := s.boxOf().Clone()
	if err != nil {
		return nil, err
	}
	return wrapSeries(b), nil
}

func (s *Series) Name() (string, error) { return seriesName(s.bridge(), s) }

// Rename renames the series in place.
func (s *Series) Rename(name string) error {
	_, err := seriesRename(s.bridge(), s, name)
	return err
}

func (s *Series) DataType() (DataType, error) { return seriesDataType(s.bridge(), s) }

func (s *Series) Len() (int, error) { return seriesLen(s.bridge(), s) }

func (s *Series) Head(length *int) (*Series, error) { return seriesHead(s.bridge(), s, length) }

func (s *Series) Tail(length *int) (*Series, error) { return seriesTail(s.bridge(), s, length) }

func (s *Series) Sort(descending, nullsLast bool) (*Series, error) {
	return seriesSort(s.bridge(), s, descending, nullsLast)
}

func (s *Series) Cast(dataType DataType, strict bool) (*Series, error) {
	return seriesCast(s.bridge(), s, dataType, strict)
}

func (s *Series) FillNullWithStrategy(strategy FillNullStrategy) (*Series, error) {
	return seriesFillNull(s.bridge(), s, strategy)
}

// IsSorted reports the sortedness flag; it does not scan the data.
func (s *Series) IsSorted() (IsSorted, error) { return seriesIsSorted(s.bridge(), s) }

func (s *Series) SetSortedFlag(sorted IsSorted) (*Series, error) {
	return seriesSetSortedFlag(s.bridge(), s, sorted)
}

func (s *Series) String() string {
	str, err := seriesToString(s.bridge(), s)
	if err != nil {
		return "<series: " + err.Error() + ">"
	}
	return str
}
