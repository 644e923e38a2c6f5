//go:build !windows
// +build !windows

package bridge

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// entryFunc is the raw signature shared by every wrapper entry point.
type entryFunc func(args *byte, argsLen uintptr, out *uintptr, outLen *uintptr) int32

// dylib Rust FFI 接口
type dylib struct {
	lib           uintptr
	abiVersion    func() uint32
	fingerprint   func() uint64
	engineVersion func(*uintptr, *uintptr) int32
	handleClone   func(uint64) uint64
	handleFree    func(uint64)
	outputFree    func(uintptr, uintptr)
	dfFromArrow   func(*ArrowSchema, *ArrowArray, *uint64, *uintptr, *uintptr) int32
	dfToArrow     func(uint64, *ArrowSchema, *ArrowArray, *uintptr, *uintptr) int32

	mu      sync.RWMutex
	entries map[string]entryFunc
}

func openLibrary(libPath string) (Library, error) {
	lib, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load library %s: %w", libPath, err)
	}

	d := &dylib{lib: lib, entries: make(map[string]entryFunc)}

	// 加载所有函数
	for _, sym := range []struct {
		fptr any
		name string
	}{
		{&d.abiVersion, "bridge_abi_version"},
		{&d.engineVersion, "bridge_engine_version"},
		{&d.handleClone, "bridge_handle_clone"},
		{&d.handleFree, "bridge_handle_free"},
		{&d.outputFree, "bridge_output_free"},
	} {
		addr, err := purego.Dlsym(lib, sym.name)
		if err != nil {
			purego.Dlclose(lib)
			return nil, fmt.Errorf("failed to find %s: %w", sym.name, err)
		}
		purego.RegisterFunc(sym.fptr, addr)
	}

	// optional symbols
	if addr, err := purego.Dlsym(lib, "bridge_codec_fingerprint"); err == nil {
		purego.RegisterFunc(&d.fingerprint, addr)
	}
	if addr, err := purego.Dlsym(lib, "bridge_df_from_arrow"); err == nil {
		purego.RegisterFunc(&d.dfFromArrow, addr)
	}
	if addr, err := purego.Dlsym(lib, "bridge_df_to_arrow"); err == nil {
		purego.RegisterFunc(&d.dfToArrow, addr)
	}

	return d, nil
}

func (d *dylib) AbiVersion() uint32 {
	return d.abiVersion()
}

func (d *dylib) Fingerprint() uint64 {
	if d.fingerprint == nil {
		return 0
	}
	return d.fingerprint()
}

func (d *dylib) EngineVersion() (string, error) {
	var ptr uintptr
	var length uintptr
	if ret := d.engineVersion(&ptr, &length); ret != 0 {
		return "", &Error{Code: ErrorCode(ret), Symbol: "bridge_engine_version", Message: "failed to get engine version"}
	}
	return ptrToString(ptr, int(length)), nil
}

func (d *dylib) entry(symbol string) (entryFunc, error) {
	d.mu.RLock()
	fn, ok := d.entries[symbol]
	d.mu.RUnlock()
	if ok {
		return fn, nil
	}

	addr, err := purego.Dlsym(d.lib, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", symbol, err)
	}
	purego.RegisterFunc(&fn, addr)

	d.mu.Lock()
	d.entries[symbol] = fn
	d.mu.Unlock()
	return fn, nil
}

func (d *dylib) Call(symbol string, args []byte) (ErrorCode, []byte, error) {
	fn, err := d.entry(symbol)
	if err != nil {
		return ErrUnsupported, nil, err
	}

	var argsPtr *byte
	if len(args) > 0 {
		argsPtr = &args[0]
	}
	var outputPtr uintptr
	var outputLen uintptr

	ret := fn(argsPtr, uintptr(len(args)), &outputPtr, &outputLen)
	runtime.KeepAlive(args) // 确保在 FFI 调用期间 args 不被 GC

	return ErrorCode(ret), d.takeOutput(outputPtr, outputLen), nil
}

// takeOutput 把二进制数据拷贝到 Go 的 slice 并释放 Rust 侧缓冲区
func (d *dylib) takeOutput(ptr, length uintptr) []byte {
	if ptr == 0 {
		return nil
	}
	output := make([]byte, length)
	copy(output, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length))
	d.outputFree(ptr, length)
	return output
}

func (d *dylib) CloneHandle(handle uint64) uint64 {
	return d.handleClone(handle)
}

func (d *dylib) FreeHandle(handle uint64) {
	d.handleFree(handle)
}

func (d *dylib) Close() error {
	return purego.Dlclose(d.lib)
}

func (d *dylib) ImportArrow(schema *ArrowSchema, array *ArrowArray) (uint64, ErrorCode, []byte) {
	if d.dfFromArrow == nil {
		return 0, ErrUnsupported, nil
	}
	var handle uint64
	var errPtr, errLen uintptr
	ret := d.dfFromArrow(schema, array, &handle, &errPtr, &errLen)
	return handle, ErrorCode(ret), d.takeOutput(errPtr, errLen)
}

func (d *dylib) ExportArrow(handle uint64, schema *ArrowSchema, array *ArrowArray) (ErrorCode, []byte) {
	if d.dfToArrow == nil {
		return ErrUnsupported, nil
	}
	var errPtr, errLen uintptr
	ret := d.dfToArrow(handle, schema, array, &errPtr, &errLen)
	return ErrorCode(ret), d.takeOutput(errPtr, errLen)
}

func ptrToString(ptr uintptr, length int) string {
	if ptr == 0 || length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length))
}
