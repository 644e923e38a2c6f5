package polars

import (
	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

// SQLContext runs SQL over registered LazyFrames.
type SQLContext struct {
	box *interop.Box
}

func wrapSQLContext(b *interop.Box) *SQLContext { return &SQLContext{box: b} }

func (c *SQLContext) boxOf() *interop.Box {
	if c == nil {
		return nil
	}
	return c.box
}

func (c *SQLContext) bridge() *bridge.Bridge {
	if c == nil || c.box == nil {
		return nil
	}
	return c.box.Bridge()
}

var (
	sqlContextCodec    = interop.Abstract("SQLContext", wrapSQLContext, (*SQLContext).boxOf)
	sqlContextMutCodec = interop.AbstractMut("SQLContext", wrapSQLContext, (*SQLContext).boxOf)
)

var (
	sqlContextNew        = interop.Fn0("rust_sql_context_new", sqlContextCodec)
	sqlContextRegister   = interop.Fn3("rust_sql_context_register", sqlContextMutCodec, interop.String, lazyFrameCodec, interop.Unit)
	sqlContextUnregister = interop.Fn2("rust_sql_context_unregister", sqlContextMutCodec, interop.String, interop.Unit)
	sqlContextExecute    = interop.Fn2("rust_sql_context_execute", sqlContextMutCodec, interop.String, lazyFrameCodec, fallible)
	sqlContextTables     = interop.Fn1("rust_sql_context_get_tables", sqlContextCodec, stringList)
)

// NewSQLContext returns an empty context.
func NewSQLContext(brg *bridge.Bridge) (*SQLContext, error) {
	return sqlContextNew(brg)
}

// Free releases the context.
func (c *SQLContext) Free() { c.boxOf().Free() }

// Register makes lf queryable as name.
func (c *SQLContext) Register(name string, lf *LazyFrame) error {
	if err := lf.Err(); err != nil {
		return err
	}
	_, err := sqlContextRegister(c.bridge(), c, name, lf)
	return err
}

func (c *SQLContext) Unregister(name string) error {
	_, err := sqlContextUnregister(c.bridge(), c, name)
	return err
}

// Execute plans query; the result is lazy.
func (c *SQLContext) Execute(query string) *LazyFrame {
	return lazyResult(sqlContextExecute(c.bridge(), c, query))
}

// Tables lists the registered names.
func (c *SQLContext) Tables() ([]string, error) {
	return sqlContextTables(c.bridge(), c)
}
