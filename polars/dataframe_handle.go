package polars

import (
	"fmt"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

// DataFrame represents an eager Polars DataFrame held by the Rust engine.
type DataFrame struct {
	box *interop.Box
}

func wrapDataFrame(b *interop.Box) *DataFrame { return &DataFrame{box: b} }

func (df *DataFrame) boxOf() *interop.Box {
	if df == nil {
		return nil
	}
	return df.box
}

func (df *DataFrame) bridge() *bridge.Bridge {
	if df == nil || df.box == nil {
		return nil
	}
	return df.box.Bridge()
}

var (
	dataFrameCodec    = interop.Abstract("DataFrame", wrapDataFrame, (*DataFrame).boxOf)
	dataFrameMutCodec = interop.AbstractMut("DataFrame", wrapDataFrame, (*DataFrame).boxOf)
	dataFrameList     = interop.List(dataFrameCodec)
)

// Free releases the Rust-side DataFrame handle.
func (df *DataFrame) Free() { df.boxOf().Free() }

// Clone returns an independent copy; later in-place changes to either frame
// do not affect the other.
func (df *DataFrame) Clone() (*DataFrame, error) {
	b, err := df.boxOf().Clone()
	if err != nil {
		return nil, err
	}
	return wrapDataFrame(b), nil
}

// Rows exports the DataFrame to Arrow IPC and parses it into rows.
func (df *DataFrame) Rows() ([]map[string]interface{}, error) {
	ipcBytes, err := dataFrameToIPC(df.bridge(), df)
	if err != nil {
		return nil, fmt.Errorf("failed to export dataframe: %w", err)
	}
	return parseArrowIPC(ipcBytes)
}

// JSONRows exports the DataFrame as NDJSON and parses each line.
func (df *DataFrame) JSONRows() ([]map[string]interface{}, error) {
	out, err := dataFrameToNDJSON(df.bridge(), df)
	if err != nil {
		return nil, fmt.Errorf("failed to export dataframe: %w", err)
	}
	return parseNDJSON(out)
}

// String renders the frame with Polars' Display implementation.
func (df *DataFrame) String() string {
	s, err := dataFrameToString(df.bridge(), df)
	if err != nil {
		return "<dataframe: " + err.Error() + ">"
	}
	return s
}

// Print outputs the DataFrame using Polars' Display implementation.
func (df *DataFrame) Print() error {
	s, err := dataFrameToString(df.bridge(), df)
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}

// Lazy converts the DataFrame into a LazyFrame for further operations.
func (df *DataFrame) Lazy() *LazyFrame {
	lf, err := dataFrameLazy(df.bridge(), df)
	if err != nil {
		return &LazyFrame{err: err}
	}
	return lf
}

// Filter applies a filter operation and returns a LazyFrame for further chaining.
func (df *DataFrame) Filter(predicate Expr) *LazyFrame {
	return df.Lazy().Filter(predicate)
}

// Select selects columns and returns a LazyFrame for further chaining.
func (df *DataFrame) Select(exprs ...Expr) *LazyFrame {
	return df.Lazy().Select(exprs...)
}

// WithColumns adds or modifies columns and returns a LazyFrame for further chaining.
func (df *DataFrame) WithColumns(exprs ...Expr) *LazyFrame {
	return df.Lazy().WithColumns(exprs...)
}

// Limit limits the number of rows and returns a LazyFrame for further chaining.
func (df *DataFrame) Limit(n int) *LazyFrame {
	return df.Lazy().Limit(n)
}
