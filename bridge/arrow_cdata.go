//go:build cgo

package bridge

import "github.com/apache/arrow-go/v18/arrow/cdata"

const cgoEnabled = true

// ArrowSchema and ArrowArray are the C Data Interface structs, shared with
// arrow-go so records move between the two without copying.
// https://arrow.apache.org/docs/format/CDataInterface.html
type (
	ArrowSchema = cdata.CArrowSchema
	ArrowArray  = cdata.CArrowArray
)

// ReleaseArrowSchema calls the release callback if set.
func ReleaseArrowSchema(schema *ArrowSchema) {
	if schema != nil {
		cdata.ReleaseCArrowSchema(schema)
	}
}

// ReleaseArrowArray calls the release callback if set.
func ReleaseArrowArray(array *ArrowArray) {
	if array != nil {
		cdata.ReleaseCArrowArray(array)
	}
}
