package polars

import (
	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

func (e Expr) ListLengths() Expr { return e.unary("list_lengths") }
func (e Expr) ListSum() Expr     { return e.unary("list_sum") }
func (e Expr) ListMean() Expr    { return e.unary("list_mean") }
func (e Expr) ListMin() Expr     { return e.unary("list_min") }
func (e Expr) ListMax() Expr     { return e.unary("list_max") }
func (e Expr) ListFirst() Expr   { return e.unary("list_first") }
func (e Expr) ListLast() Expr    { return e.unary("list_last") }
func (e Expr) ListReverse() Expr { return e.unary("list_reverse") }
func (e Expr) ListUnique() Expr  { return e.unary("list_unique") }

// ListGet takes the element at index; negative indexes count from the end.
func (e Expr) ListGet(index int) Expr {
	return e.unary("list_get", value.Int(int64(index)))
}

// ListContains tests each list for item.
func (e Expr) ListContains(item Expr) Expr {
	return node("list_contains", []Expr{e, item}, e.node, item.node)
}

// ListJoin joins string lists with sep.
func (e Expr) ListJoin(sep string) Expr {
	return e.unary("list_join", value.String(sep))
}

// ListSort sorts within each list.
func (e Expr) ListSort(descending bool) Expr {
	return e.unary("list_sort", value.Bool(descending))
}

var listLengthOption = interop.CoercedOption[uint]()

// ListSlice takes length elements from offset; nil length runs to the end.
func (e Expr) ListSlice(offset int, length *int) Expr {
	return e.unaryErr("list_slice", enc(interop.Int64, int64(offset)), enc(listLengthOption, length))
}
