package polars

import (
	"fmt"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

// LazyFrame 惰性数据框架（延迟执行）
//
// Every method returns a new LazyFrame. The first failure is kept and
// returned by Collect and the other terminal methods; later steps are
// skipped.
type LazyFrame struct {
	box *interop.Box
	err error
}

func wrapLazyFrame(b *interop.Box) *LazyFrame { return &LazyFrame{box: b} }

func (lf *LazyFrame) boxOf() *interop.Box {
	if lf == nil {
		return nil
	}
	return lf.box
}

func (lf *LazyFrame) bridge() *bridge.Bridge {
	if lf == nil || lf.box == nil {
		return nil
	}
	return lf.box.Bridge()
}

var (
	lazyFrameCodec = interop.Abstract("LazyFrame", wrapLazyFrame, (*LazyFrame).boxOf)
	lazyFrameList  = interop.List(lazyFrameCodec)
)

// DynamicOptions configure GroupByDynamic. Durations use the engine's
// string language, e.g. "1h", "3d12h" or "1mo".
type DynamicOptions struct {
	Every             string
	Period            string
	Offset            string
	IncludeBoundaries bool
	Closed            ClosedWindow
	StartBy           StartBy
}

var dynamicLayout = value.NewLayout("DynamicGroupOptions", 0,
	"every", "period", "offset", "include_boundaries", "closed_window", "start_by")

var dynamicOptionsCodec = interop.NewCodec("DynamicGroupOptions",
	func(e *interop.Encoder, o DynamicOptions) (value.Value, error) {
		if o.Period == "" {
			o.Period = o.Every
		}
		if o.Offset == "" {
			o.Offset = "0ns"
		}
		closed, err := closedWindowCodec.Encode(e, o.Closed)
		if err != nil {
			return value.Value{}, err
		}
		startBy, err := startByCodec.Encode(e, o.StartBy)
		if err != nil {
			return value.Value{}, err
		}
		return dynamicLayout.Make(map[string]value.Value{
			"every":              value.String(o.Every),
			"period":             value.String(o.Period),
			"offset":             value.String(o.Offset),
			"include_boundaries": value.Bool(o.IncludeBoundaries),
			"closed_window":      closed,
			"start_by":           startBy,
		})
	},
	func(d *interop.Decoder, v value.Value) (DynamicOptions, error) {
		var o DynamicOptions
		rec, err := dynamicLayout.Open(v)
		if err != nil {
			return o, err
		}
		if o.Every, err = rec.Get("every").AsString(); err != nil {
			return o, err
		}
		if o.Period, err = rec.Get("period").AsString(); err != nil {
			return o, err
		}
		if o.Offset, err = rec.Get("offset").AsString(); err != nil {
			return o, err
		}
		if o.IncludeBoundaries, err = rec.Get("include_boundaries").AsBool(); err != nil {
			return o, err
		}
		if o.Closed, err = closedWindowCodec.Decode(d, rec.Get("closed_window")); err != nil {
			return o, err
		}
		o.StartBy, err = startByCodec.Decode(d, rec.Get("start_by"))
		return o, err
	})

var (
	lazyScanCSV        = interop.Fn3("rust_lazy_frame_scan_csv", interop.String, optSchema, interop.Bool, lazyFrameCodec, fallible)
	lazyScanParquet    = interop.Fn1("rust_lazy_frame_scan_parquet", interop.String, lazyFrameCodec, fallible)
	lazyScanNDJSON     = interop.Fn1("rust_lazy_frame_scan_ndjson", interop.String, lazyFrameCodec, fallible)
	lazyFilter         = interop.Fn2("rust_lazy_frame_filter", lazyFrameCodec, exprCodec, lazyFrameCodec, fallible)
	lazySelect         = interop.Fn2("rust_lazy_frame_select", lazyFrameCodec, exprList, lazyFrameCodec, fallible)
	lazyWithColumns    = interop.Fn2("rust_lazy_frame_with_columns", lazyFrameCodec, exprList, lazyFrameCodec, fallible)
	lazyGroupBy        = interop.Fn3("rust_lazy_frame_group_by", lazyFrameCodec, exprList, interop.Bool, lazyGroupByCodec, fallible)
	lazyGroupByDynamic = interop.Fn4("rust_lazy_frame_group_by_dynamic", lazyFrameCodec, exprCodec, exprList, dynamicOptionsCodec, lazyGroupByCodec, fallible)
	lazyJoin           = interop.Fn5("rust_lazy_frame_join", lazyFrameCodec, lazyFrameCodec, exprList, exprList, joinTypeCodec, lazyFrameCodec, fallible)
	lazySort           = interop.Fn5("rust_lazy_frame_sort", lazyFrameCodec, stringList, boolList, interop.Bool, interop.Bool, lazyFrameCodec, fallible)
	lazyLimit          = interop.Fn2("rust_lazy_frame_limit", lazyFrameCodec, interop.Coerced[uint32](), lazyFrameCodec)
	lazyTail           = interop.Fn2("rust_lazy_frame_tail", lazyFrameCodec, interop.Coerced[uint32](), lazyFrameCodec)
	lazyUnique         = interop.Fn4("rust_lazy_frame_unique", lazyFrameCodec, optStringList, uniqueKeepCodec, interop.Bool, lazyFrameCodec)
	lazyExplode        = interop.Fn2("rust_lazy_frame_explode", lazyFrameCodec, exprList, lazyFrameCodec, fallible)
	lazyRename         = interop.Fn3("rust_lazy_frame_rename", lazyFrameCodec, stringList, stringList, lazyFrameCodec)
	lazyDrop           = interop.Fn2("rust_lazy_frame_drop", lazyFrameCodec, stringList, lazyFrameCodec)
	lazyMelt           = interop.Fn3("rust_lazy_frame_melt", lazyFrameCodec, stringList, stringList, lazyFrameCodec)
	lazyWithRowCount   = interop.Fn3("rust_lazy_frame_with_row_count", lazyFrameCodec, interop.String, interop.CoercedOption[uint32](), lazyFrameCodec)
	lazyCache          = interop.Fn1("rust_lazy_frame_cache", lazyFrameCodec, lazyFrameCodec)
	lazySchema         = interop.Fn1("rust_lazy_frame_schema", lazyFrameCodec, schemaCodec, fallible)
	lazyExplain        = interop.Fn2("rust_lazy_frame_explain", lazyFrameCodec, interop.Bool, interop.String, fallible)
	lazyCollect        = interop.Fn1("rust_lazy_frame_collect", lazyFrameCodec, dataFrameCodec, fallible, releasing)
	lazyCollectAll     = interop.Fn1("rust_lazy_frame_collect_all", lazyFrameList, dataFrameList, fallible, releasing)
	lazyFetch          = interop.Fn2("rust_lazy_frame_fetch", lazyFrameCodec, uintCodec, dataFrameCodec, fallible, releasing)
	lazyProfile        = interop.Fn1("rust_lazy_frame_profile", lazyFrameCodec, dataFramePair, fallible, releasing)
)

func (lf *LazyFrame) then(step func(brg *bridge.Bridge) (*LazyFrame, error)) *LazyFrame {
	if lf == nil {
		return &LazyFrame{err: bridge.ErrNilBridge}
	}
	if lf.err != nil {
		return lf
	}
	next, err := step(lf.bridge())
	if err != nil {
		return &LazyFrame{err: err}
	}
	return next
}

// Err returns the deferred error, if any.
func (lf *LazyFrame) Err() error {
	if lf == nil {
		return bridge.ErrNilBridge
	}
	return lf.err
}

// Free releases the plan handle.
func (lf *LazyFrame) Free() { lf.boxOf().Free() }

func lazyResult(lf *LazyFrame, err error) *LazyFrame {
	if err != nil {
		return &LazyFrame{err: err}
	}
	return lf
}

// ScanCSV lazily reads a CSV file.
func ScanCSV(brg *bridge.Bridge, path string, opts CSVOptions) *LazyFrame {
	return lazyResult(lazyScanCSV(brg, path, opts.schema(), opts.TryParseDates))
}

// ScanParquet lazily reads a Parquet file.
func ScanParquet(brg *bridge.Bridge, path string) *LazyFrame {
	return lazyResult(lazyScanParquet(brg, path))
}

// ScanJSONLines lazily reads newline-delimited JSON.
func ScanJSONLines(brg *bridge.Bridge, path string) *LazyFrame {
	return lazyResult(lazyScanNDJSON(brg, path))
}

// Filter 过滤行
func (lf *LazyFrame) Filter(predicate Expr) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyFilter(brg, lf, predicate) })
}

// Select 选择列
func (lf *LazyFrame) Select(exprs ...Expr) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazySelect(brg, lf, exprs) })
}

// WithColumns 添加或修改列
func (lf *LazyFrame) WithColumns(exprs ...Expr) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyWithColumns(brg, lf, exprs) })
}

// GroupBy groups by the given keys. stable keeps groups in order of first
// appearance.
func (lf *LazyFrame) GroupBy(by []Expr, stable bool) *LazyGroupBy {
	if err := lf.Err(); err != nil {
		return &LazyGroupBy{err: err}
	}
	return groupByResult(lazyGroupBy(lf.bridge(), lf, by, stable))
}

// GroupByDynamic groups rows into time windows over index.
func (lf *LazyFrame) GroupByDynamic(index Expr, by []Expr, opts DynamicOptions) *LazyGroupBy {
	if err := lf.Err(); err != nil {
		return &LazyGroupBy{err: err}
	}
	return groupByResult(lazyGroupByDynamic(lf.bridge(), lf, index, by, opts))
}

// Join joins other on the given key expressions.
func (lf *LazyFrame) Join(other *LazyFrame, leftOn, rightOn []Expr, how JoinType) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) {
		if err := other.Err(); err != nil {
			return nil, err
		}
		return lazyJoin(brg, lf, other, leftOn, rightOn, how)
	})
}

// Sort sorts by the named columns. descending holds one flag per column.
func (lf *LazyFrame) Sort(by []string, descending []bool, nullsLast, maintainOrder bool) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) {
		return lazySort(brg, lf, by, descending, nullsLast, maintainOrder)
	})
}

// Limit 限制行数
func (lf *LazyFrame) Limit(n int) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyLimit(brg, lf, n) })
}

func (lf *LazyFrame) Tail(n int) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyTail(brg, lf, n) })
}

// Unique drops duplicate rows. A nil subset considers all columns.
func (lf *LazyFrame) Unique(subset []string, keep UniqueKeep, maintainOrder bool) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyUnique(brg, lf, subset, keep, maintainOrder) })
}

func (lf *LazyFrame) Explode(columns ...Expr) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyExplode(brg, lf, columns) })
}

// Rename renames existing[i] to names[i].
func (lf *LazyFrame) Rename(existing, names []string) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) {
		if len(existing) != len(names) {
			return nil, fmt.Errorf("rename: %d existing names but %d new names", len(existing), len(names))
		}
		return lazyRename(brg, lf, existing, names)
	})
}

func (lf *LazyFrame) Drop(columns ...string) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyDrop(brg, lf, columns) })
}

func (lf *LazyFrame) Melt(idVars, valueVars []string) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyMelt(brg, lf, idVars, valueVars) })
}

// WithRowCount prepends a row number column starting at offset (nil is 0).
func (lf *LazyFrame) WithRowCount(name string, offset *int) *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyWithRowCount(brg, lf, name, offset) })
}

// Cache caches the result of this plan when it is used more than once.
func (lf *LazyFrame) Cache() *LazyFrame {
	return lf.then(func(brg *bridge.Bridge) (*LazyFrame, error) { return lazyCache(brg, lf) })
}

// Schema resolves the output schema without running the plan.
func (lf *LazyFrame) Schema() (Schema, error) {
	if err := lf.Err(); err != nil {
		return nil, err
	}
	return lazySchema(lf.bridge(), lf)
}

// Explain returns the plan, optimized or as written.
func (lf *LazyFrame) Explain(optimized bool) (string, error) {
	if err := lf.Err(); err != nil {
		return "", err
	}
	return lazyExplain(lf.bridge(), lf, optimized)
}

// Collect 执行查询并收集结果
//
// The engine runs without the bridge lock, so other goroutines can keep
// using the bridge meanwhile.
func (lf *LazyFrame) Collect() (*DataFrame, error) {
	if err := lf.Err(); err != nil {
		return nil, err
	}
	return lazyCollect(lf.bridge(), lf)
}

// CollectAll runs several plans in parallel.
func CollectAll(lfs ...*LazyFrame) ([]*DataFrame, error) {
	if len(lfs) == 0 {
		return []*DataFrame{}, nil
	}
	for _, lf := range lfs {
		if err := lf.Err(); err != nil {
			return nil, err
		}
	}
	return lazyCollectAll(lfs[0].bridge(), lfs)
}

// Fetch runs the plan on the first n rows of each source, for debugging.
func (lf *LazyFrame) Fetch(n int) (*DataFrame, error) {
	if err := lf.Err(); err != nil {
		return nil, err
	}
	return lazyFetch(lf.bridge(), lf, n)
}

// Profile runs the plan and returns the result and a timing frame.
func (lf *LazyFrame) Profile() (*DataFrame, *DataFrame, error) {
	if err := lf.Err(); err != nil {
		return nil, nil, err
	}
	p, err := lazyProfile(lf.bridge(), lf)
	return p.First, p.Second, err
}

// CollectRows collects and converts the result into rows.
func (lf *LazyFrame) CollectRows() ([]map[string]interface{}, error) {
	df, err := lf.Collect()
	if err != nil {
		return nil, err
	}
	defer df.Free()
	return df.Rows()
}
