package polars

import (
	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

// LazyGroupBy is a grouped LazyFrame waiting for its aggregation.
type LazyGroupBy struct {
	box *interop.Box
	err error
}

func wrapLazyGroupBy(b *interop.Box) *LazyGroupBy { return &LazyGroupBy{box: b} }

func (gb *LazyGroupBy) boxOf() *interop.Box {
	if gb == nil {
		return nil
	}
	return gb.box
}

func (gb *LazyGroupBy) bridge() *bridge.Bridge {
	if gb == nil || gb.box == nil {
		return nil
	}
	return gb.box.Bridge()
}

var lazyGroupByCodec = interop.Abstract("LazyGroupBy", wrapLazyGroupBy, (*LazyGroupBy).boxOf)

var (
	groupByAgg  = interop.Fn2("rust_lazy_group_by_agg", lazyGroupByCodec, exprList, lazyFrameCodec, fallible)
	groupByHead = interop.Fn2("rust_lazy_group_by_head", lazyGroupByCodec, lengthOption, lazyFrameCodec)
	groupByTail = interop.Fn2("rust_lazy_group_by_tail", lazyGroupByCodec, lengthOption, lazyFrameCodec)
)

func groupByResult(gb *LazyGroupBy, err error) *LazyGroupBy {
	if err != nil {
		return &LazyGroupBy{err: err}
	}
	return gb
}

// Err returns the deferred error, if any.
func (gb *LazyGroupBy) Err() error {
	if gb == nil {
		return bridge.ErrNilBridge
	}
	return gb.err
}

// Free releases the group-by handle.
func (gb *LazyGroupBy) Free() { gb.boxOf().Free() }

// Agg aggregates each group with exprs.
func (gb *LazyGroupBy) Agg(exprs ...Expr) *LazyFrame {
	if err := gb.Err(); err != nil {
		return &LazyFrame{err: err}
	}
	return lazyResult(groupByAgg(gb.bridge(), gb, exprs))
}

// Head keeps the first n rows of each group; nil means 10.
func (gb *LazyGroupBy) Head(n *int) *LazyFrame {
	if err := gb.Err(); err != nil {
		return &LazyFrame{err: err}
	}
	return lazyResult(groupByHead(gb.bridge(), gb, n))
}

// Tail keeps the last n rows of each group; nil means 10.
func (gb *LazyGroupBy) Tail(n *int) *LazyFrame {
	if err := gb.Err(); err != nil {
		return &LazyFrame{err: err}
	}
	return lazyResult(groupByTail(gb.bridge(), gb, n))
}
