//go:build windows
// +build windows

package bridge

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

// dylib Rust FFI 接口
type dylib struct {
	lib           *syscall.DLL
	abiVersion    *syscall.Proc
	fingerprint   *syscall.Proc
	engineVersion *syscall.Proc
	handleClone   *syscall.Proc
	handleFree    *syscall.Proc
	outputFree    *syscall.Proc
	dfFromArrow   *syscall.Proc
	dfToArrow     *syscall.Proc

	mu      sync.RWMutex
	entries map[string]*syscall.Proc
}

func openLibrary(libPath string) (Library, error) {
	lib, err := syscall.LoadDLL(libPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load library %s: %w", libPath, err)
	}

	d := &dylib{lib: lib, entries: make(map[string]*syscall.Proc)}

	// 加载所有函数
	for _, sym := range []struct {
		proc **syscall.Proc
		name string
	}{
		{&d.abiVersion, "bridge_abi_version"},
		{&d.engineVersion, "bridge_engine_version"},
		{&d.handleClone, "bridge_handle_clone"},
		{&d.handleFree, "bridge_handle_free"},
		{&d.outputFree, "bridge_output_free"},
	} {
		if *sym.proc, err = lib.FindProc(sym.name); err != nil {
			lib.Release()
			return nil, fmt.Errorf("failed to find %s: %w", sym.name, err)
		}
	}

	// optional symbols
	d.fingerprint, _ = lib.FindProc("bridge_codec_fingerprint")
	d.dfFromArrow, _ = lib.FindProc("bridge_df_from_arrow")
	d.dfToArrow, _ = lib.FindProc("bridge_df_to_arrow")

	return d, nil
}

func (d *dylib) AbiVersion() uint32 {
	ret, _, _ := d.abiVersion.Call()
	return uint32(ret)
}

func (d *dylib) Fingerprint() uint64 {
	if d.fingerprint == nil {
		return 0
	}
	ret, _, _ := d.fingerprint.Call()
	return uint64(ret)
}

func (d *dylib) EngineVersion() (string, error) {
	var ptr uintptr
	var length uintptr
	ret, _, _ := d.engineVersion.Call(uintptr(unsafe.Pointer(&ptr)), uintptr(unsafe.Pointer(&length)))
	if int32(ret) != 0 {
		return "", &Error{Code: ErrorCode(int32(ret)), Symbol: "bridge_engine_version", Message: "failed to get engine version"}
	}
	return ptrToString(ptr, int(length)), nil
}

func (d *dylib) entry(symbol string) (*syscall.Proc, error) {
	d.mu.RLock()
	proc, ok := d.entries[symbol]
	d.mu.RUnlock()
	if ok {
		return proc, nil
	}

	proc, err := d.lib.FindProc(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", symbol, err)
	}

	d.mu.Lock()
	d.entries[symbol] = proc
	d.mu.Unlock()
	return proc, nil
}

func (d *dylib) Call(symbol string, args []byte) (ErrorCode, []byte, error) {
	proc, err := d.entry(symbol)
	if err != nil {
		return ErrUnsupported, nil, err
	}

	var argsPtr uintptr
	if len(args) > 0 {
		argsPtr = uintptr(unsafe.Pointer(&args[0]))
	}
	var outputPtr uintptr
	var outputLen uintptr

	ret, _, _ := proc.Call(
		argsPtr,
		uintptr(len(args)),
		uintptr(unsafe.Pointer(&outputPtr)),
		uintptr(unsafe.Pointer(&outputLen)),
	)
	runtime.KeepAlive(args)

	return ErrorCode(int32(ret)), d.takeOutput(outputPtr, outputLen), nil
}

func (d *dylib) takeOutput(ptr, length uintptr) []byte {
	if ptr == 0 {
		return nil
	}
	output := make([]byte, length)
	copy(output, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length))
	d.outputFree.Call(ptr, length)
	return output
}

func (d *dylib) CloneHandle(handle uint64) uint64 {
	ret, _, _ := d.handleClone.Call(uintptr(handle))
	return uint64(ret)
}

func (d *dylib) FreeHandle(handle uint64) {
	d.handleFree.Call(uintptr(handle))
}

func (d *dylib) Close() error {
	return d.lib.Release()
}

func (d *dylib) ImportArrow(schema *ArrowSchema, array *ArrowArray) (uint64, ErrorCode, []byte) {
	if d.dfFromArrow == nil {
		return 0, ErrUnsupported, nil
	}
	var handle uint64
	var errPtr, errLen uintptr
	ret, _, _ := d.dfFromArrow.Call(
		uintptr(unsafe.Pointer(schema)),
		uintptr(unsafe.Pointer(array)),
		uintptr(unsafe.Pointer(&handle)),
		uintptr(unsafe.Pointer(&errPtr)),
		uintptr(unsafe.Pointer(&errLen)),
	)
	return handle, ErrorCode(int32(ret)), d.takeOutput(errPtr, errLen)
}

func (d *dylib) ExportArrow(handle uint64, schema *ArrowSchema, array *ArrowArray) (ErrorCode, []byte) {
	if d.dfToArrow == nil {
		return ErrUnsupported, nil
	}
	var errPtr, errLen uintptr
	ret, _, _ := d.dfToArrow.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(schema)),
		uintptr(unsafe.Pointer(array)),
		uintptr(unsafe.Pointer(&errPtr)),
		uintptr(unsafe.Pointer(&errLen)),
	)
	return ErrorCode(int32(ret)), d.takeOutput(errPtr, errLen)
}

func ptrToString(ptr uintptr, length int) string {
	if ptr == 0 || length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length))
}
