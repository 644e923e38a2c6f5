package polars

import (
	"errors"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

// ErrNoData is returned by the concat functions when given no frames.
var ErrNoData = errors.New("no data")

var (
	uintCodec     = interop.Coerced[uint]()
	stringList    = interop.List(interop.String)
	boolList      = interop.List(interop.Bool)
	optSchema     = interop.Option(schemaCodec)
	optFloatList  = interop.Option(interop.List(interop.Float))
	dataFramePair = interop.PairOf(dataFrameCodec, dataFrameCodec)
	shapeCodec    = interop.PairOf(interop.Int, interop.Int)
	fallible      = interop.Fallible()
	releasing     = interop.Releasing()
)

var (
	dataFrameNew        = interop.Fn1("rust_data_frame_new", seriesList, dataFrameCodec, fallible)
	dataFrameReadCSV    = interop.Fn3("rust_data_frame_read_csv", interop.String, optSchema, interop.Bool, dataFrameCodec, fallible)
	dataFrameReadParq   = interop.Fn1("rust_data_frame_read_parquet", interop.String, dataFrameCodec, fallible)
	dataFrameReadJSON   = interop.Fn1("rust_data_frame_read_json", interop.String, dataFrameCodec, fallible)
	dataFrameReadJSONL  = interop.Fn1("rust_data_frame_read_json_lines", interop.String, dataFrameCodec, fallible)
	dataFrameWriteCSV   = interop.Fn2("rust_data_frame_write_csv", dataFrameCodec, interop.String, interop.Unit, fallible)
	dataFrameWriteParq  = interop.Fn2("rust_data_frame_write_parquet", dataFrameCodec, interop.String, interop.Unit, fallible)
	dataFrameWriteJSON  = interop.Fn3("rust_data_frame_write_json", dataFrameCodec, interop.String, jsonFormatCodec, interop.Unit, fallible)
	dataFrameVConcat    = interop.Fn1("rust_data_frame_vertical_concat", dataFrameList, dataFrameCodec, fallible)
	dataFrameHConcat    = interop.Fn1("rust_data_frame_horizontal_concat", dataFrameList, dataFrameCodec, fallible)
	dataFrameDConcat    = interop.Fn1("rust_data_frame_diagonal_concat", dataFrameList, dataFrameCodec, fallible)
	dataFrameVstack     = interop.Fn2("rust_data_frame_vstack", dataFrameCodec, dataFrameCodec, dataFrameCodec, fallible)
	dataFrameVstackMut  = interop.Fn2("rust_data_frame_vstack_mut", dataFrameMutCodec, dataFrameCodec, interop.Unit, fallible)
	dataFrameClear      = interop.Fn1("rust_data_frame_clear", dataFrameMutCodec, interop.Unit)
	dataFrameHead       = interop.Fn2("rust_data_frame_head", dataFrameCodec, lengthOption, dataFrameCodec)
	dataFrameTail       = interop.Fn2("rust_data_frame_tail", dataFrameCodec, lengthOption, dataFrameCodec)
	dataFrameSample     = interop.Fn5("rust_data_frame_sample_n", dataFrameCodec, uintCodec, interop.Bool, interop.Bool, seedOption, dataFrameCodec, fallible)
	dataFrameSort       = interop.Fn4("rust_data_frame_sort", dataFrameCodec, stringList, boolList, interop.Bool, dataFrameCodec, fallible)
	dataFramePivot      = interop.Fn6("rust_data_frame_pivot", dataFrameCodec, stringList, stringList, stringList, interop.Bool, interop.Bool, dataFrameCodec, fallible)
	dataFrameMelt       = interop.Fn3("rust_data_frame_melt", dataFrameCodec, stringList, stringList, dataFrameCodec, fallible)
	dataFramePartition  = interop.Fn3("rust_data_frame_partition_by", dataFrameCodec, stringList, interop.Bool, dataFrameList, fallible)
	dataFrameExplode    = interop.Fn2("rust_data_frame_explode", dataFrameCodec, stringList, dataFrameCodec, fallible)
	dataFrameDescribe   = interop.Fn2("rust_data_frame_describe", dataFrameCodec, optFloatList, dataFrameCodec, fallible)
	dataFrameColumn     = interop.Fn2("rust_data_frame_column", dataFrameCodec, interop.String, seriesCodec, fallible)
	dataFrameColumns    = interop.Fn2("rust_data_frame_columns", dataFrameCodec, stringList, seriesList, fallible)
	dataFrameGetColumns = interop.Fn1("rust_data_frame_get_columns", dataFrameCodec, seriesList)
	dataFrameColNames   = interop.Fn1("rust_data_frame_get_column_names", dataFrameCodec, stringList)
	dataFrameShape      = interop.Fn1("rust_data_frame_shape", dataFrameCodec, shapeCodec)
	dataFrameHeight     = interop.Fn1("rust_data_frame_height", dataFrameCodec, interop.Int)
	dataFrameWidth      = interop.Fn1("rust_data_frame_width", dataFrameCodec, interop.Int)
	dataFrameSchema     = interop.Fn1("rust_data_frame_schema", dataFrameCodec, schemaCodec)
	dataFrameLazy       = interop.Fn1("rust_data_frame_lazy", dataFrameCodec, lazyFrameCodec)
	dataFrameToString   = interop.Fn1("rust_data_frame_to_string", dataFrameCodec, interop.String)
	dataFrameToIPC      = interop.Fn1("rust_data_frame_to_ipc", dataFrameCodec, interop.Bytes, fallible)
	dataFrameFromIPC    = interop.Fn1("rust_data_frame_from_ipc", interop.Bytes, dataFrameCodec, fallible)
	dataFrameToNDJSON   = interop.Fn1("rust_data_frame_to_ndjson", dataFrameCodec, interop.String, fallible)
)

// NewDataFrame builds a frame from columns of equal length.
func NewDataFrame(brg *bridge.Bridge, columns ...*Series) (*DataFrame, error) {
	return dataFrameNew(brg, columns)
}

// CSVOptions tune ReadCSV and ScanCSV. Schema overrides inference for the
// columns it names.
type CSVOptions struct {
	Schema        Schema
	TryParseDates bool
}

func (o CSVOptions) schema() *Schema {
	if o.Schema == nil {
		return nil
	}
	return &o.Schema
}

// ReadCSV reads a CSV file with a header row.
func ReadCSV(brg *bridge.Bridge, path string, opts CSVOptions) (*DataFrame, error) {
	return dataFrameReadCSV(brg, path, opts.schema(), opts.TryParseDates)
}

func ReadParquet(brg *bridge.Bridge, path string) (*DataFrame, error) {
	return dataFrameReadParq(brg, path)
}

// ReadJSON reads a file holding one JSON array of objects.
func ReadJSON(brg *bridge.Bridge, path string) (*DataFrame, error) {
	return dataFrameReadJSON(brg, path)
}

// ReadJSONLines reads newline-delimited JSON.
func ReadJSONLines(brg *bridge.Bridge, path string) (*DataFrame, error) {
	return dataFrameReadJSONL(brg, path)
}

func (df *DataFrame) WriteCSV(path string) error {
	_, err := dataFrameWriteCSV(df.bridge(), df, path)
	return err
}

func (df *DataFrame) WriteParquet(path string) error {
	_, err := dataFrameWriteParq(df.bridge(), df, path)
	return err
}

func (df *DataFrame) WriteJSON(path string, format JSONFormat) error {
	_, err := dataFrameWriteJSON(df.bridge(), df, path, format)
	return err
}

type concatFunc func(*bridge.Bridge, []*DataFrame) (*DataFrame, error)

func concat(fn concatFunc, dfs []*DataFrame) (*DataFrame, error) {
	if len(dfs) == 0 {
		return nil, ErrNoData
	}
	return fn(dfs[0].bridge(), dfs)
}

// VerticalConcat stacks frames with identical schemas, preserving row order.
func VerticalConcat(dfs ...*DataFrame) (*DataFrame, error) { return concat(dataFrameVConcat, dfs) }

// HorizontalConcat places frames side by side.
func HorizontalConcat(dfs ...*DataFrame) (*DataFrame, error) { return concat(dataFrameHConcat, dfs) }

// DiagonalConcat stacks frames, filling columns missing from a frame with nulls.
func DiagonalConcat(dfs ...*DataFrame) (*DataFrame, error) { return concat(dataFrameDConcat, dfs) }

// Vstack returns a new frame with the rows of other appended.
func (df *DataFrame) Vstack(other *DataFrame) (*DataFrame, error) {
	return dataFrameVstack(df.bridge(), df, other)
}

// VstackMut appends the rows of other to df in place. Every holder of df
// observes the change.
func (df *DataFrame) VstackMut(other *DataFrame) error {
	_, err := dataFrameVstackMut(df.bridge(), df, other)
	return err
}

// Clear removes all rows in place, keeping the schema.
func (df *DataFrame) Clear() error {
	_, err := dataFrameClear(df.bridge(), df)
	return err
}

// Head returns the first length rows; nil means 10.
func (df *DataFrame) Head(length *int) (*DataFrame, error) {
	return dataFrameHead(df.bridge(), df, length)
}

// Tail returns the last length rows; nil means 10.
func (df *DataFrame) Tail(length *int) (*DataFrame, error) {
	return dataFrameTail(df.bridge(), df, length)
}

// Sample draws n rows. seed nil picks a random seed.
func (df *DataFrame) Sample(n int, withReplacement, shuffle bool, seed *int) (*DataFrame, error) {
	return dataFrameSample(df.bridge(), df, n, withReplacement, shuffle, seed)
}

// Sort sorts by the named columns. descending holds one flag per column.
func (df *DataFrame) Sort(by []string, descending []bool, maintainOrder bool) (*DataFrame, error) {
	return dataFrameSort(df.bridge(), df, by, descending, maintainOrder)
}

// Pivot spreads columns into new columns, aggregating values by first.
func (df *DataFrame) Pivot(values, index, columns []string, sortColumns, stable bool) (*DataFrame, error) {
	return dataFramePivot(df.bridge(), df, values, index, columns, sortColumns, stable)
}

// Melt unpivots valueVars into variable/value rows.
func (df *DataFrame) Melt(idVars, valueVars []string) (*DataFrame, error) {
	return dataFrameMelt(df.bridge(), df, idVars, valueVars)
}

// PartitionBy splits the frame into one frame per group of by.
func (df *DataFrame) PartitionBy(by []string, stable bool) ([]*DataFrame, error) {
	return dataFramePartition(df.bridge(), df, by, stable)
}

func (df *DataFrame) Explode(columns []string) (*DataFrame, error) {
	return dataFrameExplode(df.bridge(), df, columns)
}

// Describe computes summary statistics. nil percentiles uses 25/50/75.
func (df *DataFrame) Describe(percentiles []float64) (*DataFrame, error) {
	var p *[]float64
	if percentiles != nil {
		p = &percentiles
	}
	return dataFrameDescribe(df.bridge(), df, p)
}

func (df *DataFrame) Column(name string) (*Series, error) {
	return dataFrameColumn(df.bridge(), df, name)
}

func (df *DataFrame) Columns(names []string) ([]*Series, error) {
	return dataFrameColumns(df.bridge(), df, names)
}

func (df *DataFrame) GetColumns() ([]*Series, error) {
	return dataFrameGetColumns(df.bridge(), df)
}

func (df *DataFrame) ColumnNames() ([]string, error) {
	return dataFrameColNames(df.bridge(), df)
}

// Shape returns (height, width).
func (df *DataFrame) Shape() (int, int, error) {
	p, err := dataFrameShape(df.bridge(), df)
	return p.First, p.Second, err
}

func (df *DataFrame) Height() (int, error) { return dataFrameHeight(df.bridge(), df) }

func (df *DataFrame) Width() (int, error) { return dataFrameWidth(df.bridge(), df) }

func (df *DataFrame) Schema() (Schema, error) { return dataFrameSchema(df.bridge(), df) }
