//go:build !cgo

package bridge

const cgoEnabled = false

// 未启用 cgo 时的占位类型；ImportArrow/ExportArrow 返回错误
type (
	ArrowSchema struct{}
	ArrowArray  struct{}
)

func ReleaseArrowSchema(_ *ArrowSchema) {}

func ReleaseArrowArray(_ *ArrowArray) {}
