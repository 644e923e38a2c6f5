//go:build !cgo

package polars

import (
	"errors"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/isesword/polars-go-interop/bridge"
)

var errNoCgo = errors.New("zero-copy arrow transfer requires cgo")

func ZeroCopySupported() bool { return false }

// FromArrowRecord falls back to an IPC copy without cgo.
func FromArrowRecord(brg *bridge.Bridge, rec arrow.RecordBatch) (*DataFrame, error) {
	if brg == nil {
		return nil, bridge.ErrNilBridge
	}
	return DataFrameFromRecords(brg, rec)
}

// ArrowRecord is unavailable without cgo; use Records.
func (df *DataFrame) ArrowRecord() (arrow.RecordBatch, error) {
	return nil, errNoCgo
}
