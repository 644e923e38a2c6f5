package bridge

import "fmt"

// ArrowLibrary is implemented by libraries that can move frames through the
// Arrow C Data Interface without copying.
type ArrowLibrary interface {
	ImportArrow(schema *ArrowSchema, array *ArrowArray) (handle uint64, code ErrorCode, msg []byte)
	ExportArrow(handle uint64, schema *ArrowSchema, array *ArrowArray) (code ErrorCode, msg []byte)
}

func (b *Bridge) arrowLibrary() (ArrowLibrary, error) {
	if !cgoEnabled {
		return nil, fmt.Errorf("arrow C data interface requires cgo (set CGO_ENABLED=1)")
	}
	al, ok := b.lib.(ArrowLibrary)
	if !ok {
		return nil, &Error{Code: ErrUnsupported, Message: "library does not support the arrow C data interface"}
	}
	return al, nil
}

// ImportArrow 通过 Arrow C Data Interface 创建 DataFrame 句柄（零拷贝）。
// 输入的 schema/array 所有权会转移给 Rust，调用方不要再释放它们。
func (b *Bridge) ImportArrow(schema *ArrowSchema, array *ArrowArray) (uint64, error) {
	al, err := b.arrowLibrary()
	if err != nil {
		return 0, err
	}

	release, err := b.acquire(true)
	if err != nil {
		return 0, err
	}
	defer release()
	handle, code, msg := al.ImportArrow(schema, array)
	if code != ErrOK {
		return 0, &Error{Code: code, Symbol: "bridge_df_from_arrow", Message: decodeMessage(msg)}
	}
	return handle, nil
}

// ExportArrow 将 DataFrame 句柄导出为 Arrow C Data 结构。
// 调用方负责在消费完成后释放 outSchema/outArray（ReleaseArrowSchema/ReleaseArrowArray）。
func (b *Bridge) ExportArrow(handle uint64) (*ArrowSchema, *ArrowArray, error) {
	al, err := b.arrowLibrary()
	if err != nil {
		return nil, nil, err
	}

	outSchema := &ArrowSchema{}
	outArray := &ArrowArray{}

	release, err := b.acquire(true)
	if err != nil {
		return nil, nil, err
	}
	defer release()
	if code, msg := al.ExportArrow(handle, outSchema, outArray); code != ErrOK {
		return nil, nil, &Error{Code: code, Symbol: "bridge_df_to_arrow", Message: decodeMessage(msg)}
	}
	return outSchema, outArray, nil
}
