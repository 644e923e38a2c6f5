//go:build cgo

package polars

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/cdata"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

// ZeroCopySupported reports whether frames can cross the boundary through
// the Arrow C Data Interface.
func ZeroCopySupported() bool { return true }

// FromArrowRecord 零拷贝导入 Arrow RecordBatch。
// The engine takes ownership of the exported buffers; rec itself still
// needs its own Release.
func FromArrowRecord(brg *bridge.Bridge, rec arrow.RecordBatch) (*DataFrame, error) {
	if brg == nil {
		return nil, bridge.ErrNilBridge
	}
	var cSchema cdata.CArrowSchema
	var cArray cdata.CArrowArray
	cdata.ExportArrowRecordBatch(rec, &cArray, &cSchema)

	h, err := brg.ImportArrow(&cSchema, &cArray)
	if err != nil {
		bridge.ReleaseArrowArray(&cArray)
		bridge.ReleaseArrowSchema(&cSchema)
		return nil, err
	}
	return wrapDataFrame(interop.NewBox(brg, h)), nil
}

// ArrowRecord 零拷贝导出为单个 RecordBatch，调用方负责 Release。
func (df *DataFrame) ArrowRecord() (arrow.RecordBatch, error) {
	h, err := df.boxOf().Handle()
	if err != nil {
		return nil, err
	}
	brg := df.bridge()
	schema, arr, err := brg.ExportArrow(h)
	if err != nil {
		return nil, err
	}
	rec, err := cdata.ImportCRecordBatch(arr, schema)
	if err != nil {
		bridge.ReleaseArrowArray(arr)
		bridge.ReleaseArrowSchema(schema)
		return nil, fmt.Errorf("import arrow record: %w", err)
	}
	return rec, nil
}
