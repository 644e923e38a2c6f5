package polars

import (
	"fmt"
	"math"
	"time"

	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

// Expr 表达式构建器
//
// An Expr is built on the Go side and shipped as a tree of polymorphic
// variant nodes when a frame method runs. Construction errors, such as an
// out-of-range argument, are carried on the Expr and reported by the first
// method that receives it.
type Expr struct {
	node value.Value
	err  error
	ok   bool
}

func leaf(op string) Expr {
	return Expr{node: value.Variant(op), ok: true}
}

func node(op string, deps []Expr, args ...value.Value) Expr {
	for _, d := range deps {
		if err := d.check(); err != nil {
			return Expr{err: err}
		}
	}
	return Expr{node: value.VariantWith(op, value.Tuple(args...)), ok: true}
}

func errExpr(format string, args ...any) Expr {
	return Expr{err: fmt.Errorf(format, args...)}
}

func (e Expr) check() error {
	if e.err != nil {
		return e.err
	}
	if !e.ok {
		return fmt.Errorf("empty expression")
	}
	return nil
}

// unary applies op to e with extra arguments.
func (e Expr) unary(op string, args ...value.Value) Expr {
	return node(op, []Expr{e}, append([]value.Value{e.node}, args...)...)
}

// unaryErr is unary for arguments whose encoding can fail.
func (e Expr) unaryErr(op string, args ...func() (value.Value, error)) Expr {
	vs := make([]value.Value, len(args))
	for i, a := range args {
		v, err := a()
		if err != nil {
			return Expr{err: fmt.Errorf("%s: %w", op, err)}
		}
		vs[i] = v
	}
	return e.unary(op, vs...)
}

func enc[T any](c interop.Codec[T], x T) func() (value.Value, error) {
	return func() (value.Value, error) { return c.Encode(interop.NewEncoder(), x) }
}

// Err returns the construction error carried by e, if any.
func (e Expr) Err() error { return e.check() }

func (e Expr) String() string {
	if err := e.check(); err != nil {
		return "<invalid expr: " + err.Error() + ">"
	}
	return e.node.String()
}

var exprCodec = interop.NewCodec("Expr",
	func(_ *interop.Encoder, e Expr) (value.Value, error) {
		if err := e.check(); err != nil {
			return value.Value{}, err
		}
		return e.node, nil
	},
	func(_ *interop.Decoder, v value.Value) (Expr, error) {
		return Expr{node: v, ok: true}, nil
	})

var exprList = interop.List(exprCodec)

func exprValues(exprs []Expr) ([]value.Value, error) {
	out := make([]value.Value, len(exprs))
	for i, e := range exprs {
		if err := e.check(); err != nil {
			return nil, err
		}
		out[i] = e.node
	}
	return out, nil
}

// Col 创建列引用表达式
func Col(name string) Expr {
	return node("col", nil, value.String(name))
}

// Cols 创建多列引用表达式（表达式展开）
func Cols(names ...string) []Expr {
	exprs := make([]Expr, len(names))
	for i, name := range names {
		exprs[i] = Col(name)
	}
	return exprs
}

// All 选择所有列（表达式展开）
func All() Expr {
	return leaf("all")
}

// Exclude selects every column except names.
func Exclude(names ...string) Expr {
	vs := make([]value.Value, len(names))
	for i, n := range names {
		vs[i] = value.String(n)
	}
	return node("exclude", nil, value.List(vs...))
}

// Lit 创建字面量表达式
//
// Supported: signed and unsigned integers, floats, bool, string, []byte,
// nil, time.Time (datetime in ns, UTC) and time.Duration (ns).
func Lit(v any) Expr {
	lit, err := literal(v)
	if err != nil {
		return Expr{err: err}
	}
	return node("lit", nil, lit)
}

func literal(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.Variant("Null"), nil
	case bool:
		return value.VariantWith("Boolean", value.Bool(x)), nil
	case int:
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case int8:
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case int16:
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case int32:
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case int64:
		return value.VariantWith("Int64", value.Int(x)), nil
	case uint8:
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case uint16:
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case uint32:
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return value.VariantWith("UInt64", value.Int(int64(x))), nil
		}
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case uint64:
		if x > math.MaxInt64 {
			return value.VariantWith("UInt64", value.Int(int64(x))), nil
		}
		return value.VariantWith("Int64", value.Int(int64(x))), nil
	case float32:
		return value.VariantWith("Float64", value.Float(float64(x))), nil
	case float64:
		return value.VariantWith("Float64", value.Float(x)), nil
	case string:
		return value.VariantWith("Utf8", value.String(x)), nil
	case []byte:
		return value.VariantWith("Binary", value.Bytes(x)), nil
	case time.Time:
		return value.VariantWith("Datetime", value.Int(x.UnixNano())), nil
	case time.Duration:
		return value.VariantWith("Duration", value.Int(int64(x))), nil
	}
	return value.Value{}, fmt.Errorf("unsupported literal type %T", v)
}

// 二元操作符辅助函数
func (e Expr) binaryOp(op string, other Expr) Expr {
	return node("binary", []Expr{e, other}, e.node, value.Variant(op), other.node)
}

// Eq 等于
func (e Expr) Eq(other Expr) Expr { return e.binaryOp("Eq", other) }

// Ne 不等于
func (e Expr) Ne(other Expr) Expr { return e.binaryOp("NotEq", other) }

// Lt 小于
func (e Expr) Lt(other Expr) Expr { return e.binaryOp("Lt", other) }

// Le 小于等于
func (e Expr) Le(other Expr) Expr { return e.binaryOp("LtEq", other) }

// Gt 大于
func (e Expr) Gt(other Expr) Expr { return e.binaryOp("Gt", other) }

// Ge 大于等于
func (e Expr) Ge(other Expr) Expr { return e.binaryOp("GtEq", other) }

// Add 加法
func (e Expr) Add(other Expr) Expr { return e.binaryOp("Plus", other) }

// Sub 减法
func (e Expr) Sub(other Expr) Expr { return e.binaryOp("Minus", other) }

// Mul 乘法
func (e Expr) Mul(other Expr) Expr { return e.binaryOp("Multiply", other) }

// Div 除法
func (e Expr) Div(other Expr) Expr { return e.binaryOp("TrueDivide", other) }

// Mod 取模运算 (%)
func (e Expr) Mod(other Expr) Expr { return e.binaryOp("Modulus", other) }

// And 逻辑与
func (e Expr) And(other Expr) Expr { return e.binaryOp("And", other) }

// Or 逻辑或
func (e Expr) Or(other Expr) Expr { return e.binaryOp("Or", other) }

// Xor 异或运算 (^)
func (e Expr) Xor(other Expr) Expr { return e.binaryOp("Xor", other) }

// Pow 幂运算 (**)
func (e Expr) Pow(exponent Expr) Expr {
	return node("pow", []Expr{e, exponent}, e.node, exponent.node)
}

// Alias 设置别名
func (e Expr) Alias(name string) Expr { return e.unary("alias", value.String(name)) }

// Not 逻辑取反 (~)
func (e Expr) Not() Expr { return e.unary("not") }

// IsNull 检查是否为空
func (e Expr) IsNull() Expr { return e.unary("is_null") }

// IsNotNull 检查是否非空
func (e Expr) IsNotNull() Expr { return e.unary("is_not_null") }

// Cast 类型转换
// 示例: Col("age").Cast(Int32, true)
func (e Expr) Cast(dataType DataType, strict bool) Expr {
	return e.unaryErr("cast", enc(dataTypeCodec, dataType), enc(interop.Bool, strict))
}

// StrictCast 严格模式类型转换（转换失败报错）
func (e Expr) StrictCast(dataType DataType) Expr {
	return e.Cast(dataType, true)
}

// FillNull replaces nulls with the value of fill.
func (e Expr) FillNull(fill Expr) Expr {
	return node("fill_null", []Expr{e, fill}, e.node, fill.node)
}

// FillNullWithStrategy replaces nulls according to strategy.
func (e Expr) FillNullWithStrategy(strategy FillNullStrategy) Expr {
	return e.unaryErr("fill_null_with_strategy", enc(fillNullStrategyCodec, strategy))
}

// Sort sorts the values of e.
func (e Expr) Sort(descending, nullsLast bool) Expr {
	return e.unary("sort", value.Bool(descending), value.Bool(nullsLast))
}

// SetSortedFlag marks e as sorted without checking.
func (e Expr) SetSortedFlag(sorted IsSorted) Expr {
	return e.unaryErr("set_sorted_flag", enc(isSortedCodec, sorted))
}

var lengthOption = interop.CoercedOption[uint]()

// Head takes the first length values; nil uses the engine default of 10.
func (e Expr) Head(length *int) Expr {
	return e.unaryErr("head", enc(lengthOption, length))
}

// Tail takes the last length values; nil uses the engine default of 10.
func (e Expr) Tail(length *int) Expr {
	return e.unaryErr("tail", enc(lengthOption, length))
}

func (e Expr) Sum() Expr     { return e.unary("sum") }
func (e Expr) Mean() Expr    { return e.unary("mean") }
func (e Expr) Median() Expr  { return e.unary("median") }
func (e Expr) Min() Expr     { return e.unary("min") }
func (e Expr) Max() Expr     { return e.unary("max") }
func (e Expr) First() Expr   { return e.unary("first") }
func (e Expr) Last() Expr    { return e.unary("last") }
func (e Expr) Count() Expr   { return e.unary("count") }
func (e Expr) NUnique() Expr { return e.unary("n_unique") }
func (e Expr) Reverse() Expr { return e.unary("reverse") }

var ddofCodec = interop.Coerced[uint8]()

// Std is the standard deviation with ddof delta degrees of freedom.
func (e Expr) Std(ddof int) Expr { return e.unaryErr("std", enc(ddofCodec, ddof)) }

// Var is the variance with ddof delta degrees of freedom.
func (e Expr) Var(ddof int) Expr { return e.unaryErr("var", enc(ddofCodec, ddof)) }

// Quantile computes the q-th quantile with nearest interpolation.
func (e Expr) Quantile(q float64) Expr {
	if err := e.check(); err != nil {
		return Expr{err: err}
	}
	if q < 0 || q > 1 {
		return errExpr("quantile %v outside [0, 1]", q)
	}
	return e.unary("quantile", value.Float(q))
}

var seedOption = interop.CoercedOption[uint64]()

// Rank assigns ranks; seed only matters for RankRandom.
func (e Expr) Rank(method RankMethod, descending bool, seed *int) Expr {
	return e.unaryErr("rank", enc(rankMethodCodec, method), enc(interop.Bool, descending), enc(seedOption, seed))
}

// Over computes e within groups of partitionBy.
func (e Expr) Over(partitionBy []Expr, mapping WindowMapping) Expr {
	if len(partitionBy) == 0 {
		return errExpr("Over() requires at least one partition expression")
	}
	parts, err := exprValues(partitionBy)
	if err != nil {
		return Expr{err: err}
	}
	return e.unaryErr("over", func() (value.Value, error) { return value.List(parts...), nil }, enc(windowMappingCodec, mapping))
}

// Shift moves values by n positions, filling with nulls.
func (e Expr) Shift(n int) Expr { return e.unary("shift", value.Int(int64(n))) }

// CumSum is the cumulative sum.
func (e Expr) CumSum(reverse bool) Expr { return e.unary("cum_sum", value.Bool(reverse)) }

// Unique keeps distinct values in any order.
func (e Expr) Unique() Expr { return e.unary("unique") }

// UniqueStable keeps distinct values in order of first occurrence.
func (e Expr) UniqueStable() Expr { return e.unary("unique_stable") }

// ConcatList concatenates exprs into one list column.
func ConcatList(exprs ...Expr) Expr {
	vs, err := exprValues(exprs)
	if err != nil {
		return Expr{err: err}
	}
	if len(vs) == 0 {
		return errExpr("ConcatList() requires at least one expression")
	}
	return node("concat_list", nil, value.List(vs...))
}

// WhenClause is a condition waiting for its Then.
type WhenClause struct {
	conds []Expr
	thens []Expr
}

// ThenClause is a complete branch list waiting for Otherwise or another When.
type ThenClause struct {
	conds []Expr
	thens []Expr
}

// When starts a conditional expression.
func When(cond Expr) WhenClause {
	return WhenClause{conds: []Expr{cond}}
}

// Then sets the value of the pending condition.
func (w WhenClause) Then(e Expr) ThenClause {
	return ThenClause{conds: w.conds, thens: append(append([]Expr(nil), w.thens...), e)}
}

// When adds another branch.
func (t ThenClause) When(cond Expr) WhenClause {
	return WhenClause{conds: append(append([]Expr(nil), t.conds...), cond), thens: t.thens}
}

// Otherwise finishes the chain with the fallback value.
func (t ThenClause) Otherwise(e Expr) Expr {
	deps := append(append([]Expr{e}, t.conds...), t.thens...)
	for _, d := range deps {
		if err := d.check(); err != nil {
			return Expr{err: err}
		}
	}
	branches := make([]value.Value, len(t.conds))
	for i := range t.conds {
		branches[i] = value.Tuple(t.conds[i].node, t.thens[i].node)
	}
	return node("when_then", nil, value.List(branches...), e.node)
}
