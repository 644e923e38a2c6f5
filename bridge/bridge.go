package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/isesword/polars-go-interop/value"
)

// Library is the raw surface of a loaded native binding. Entry points take
// and return wire-encoded values.
type Library interface {
	AbiVersion() uint32
	Fingerprint() uint64
	EngineVersion() (string, error)
	// Call invokes an entry point. err is only set when the symbol cannot
	// be resolved; native failures are reported through the code.
	Call(symbol string, args []byte) (code ErrorCode, out []byte, err error)
	CloneHandle(handle uint64) uint64
	FreeHandle(handle uint64)
	Close() error
}

// CallOptions tune a single native call.
type CallOptions struct {
	// Releasing runs the call without holding the runtime lock, so other
	// goroutines can use the bridge while a long computation runs natively.
	Releasing bool
}

// Bridge serializes access to a native binding. Calls hold the runtime lock
// unless they are releasing; handles are single-threaded on the native side
// and rely on that lock.
//
// Every call, releasing or not, holds life for reading while native code
// runs. Close takes it for writing, so the library is never unloaded under
// a running call.
type Bridge struct {
	lib    Library
	life   sync.RWMutex
	mu     sync.Mutex
	logger *slog.Logger
	closed bool // guarded by life
}

// New wraps an already opened library, checking its ABI version and, when
// requested, its codec fingerprint.
func New(lib Library, opts ...Option) (*Bridge, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	b := &Bridge{lib: lib, logger: o.logger}

	// 验证 ABI 版本
	if v := lib.AbiVersion(); v != AbiVersion {
		return nil, &Error{
			Code:    ErrAbiMismatch,
			Message: fmt.Sprintf("ABI version mismatch: expected %d, got %d", AbiVersion, v),
		}
	}

	native := lib.Fingerprint()
	switch {
	case o.fingerprint == 0:
	case native == 0 && o.strict:
		return nil, &Error{Code: ErrCodecMismatch, Message: "library reports no codec fingerprint"}
	case native == 0:
		b.logger.Warn("native library is unversioned; skipping codec fingerprint check",
			"expected", fmt.Sprintf("%016x", o.fingerprint))
	case native != o.fingerprint:
		return nil, &Error{
			Code:    ErrCodecMismatch,
			Message: fmt.Sprintf("codec fingerprint mismatch: host %016x, native %016x", o.fingerprint, native),
		}
	}
	return b, nil
}

// LoadBridge 加载动态库
func LoadBridge(libPath string, opts ...Option) (*Bridge, error) {
	libPath, err := resolveLibPath(libPath)
	if err != nil {
		return nil, err
	}

	lib, err := openLibrary(libPath)
	if err != nil {
		return nil, err
	}

	b, err := New(lib, opts...)
	if err != nil {
		lib.Close()
		return nil, err
	}
	b.logger.Info("polars bridge loaded", "path", libPath, "abi", AbiVersion)
	return b, nil
}

func resolveLibPath(libPath string) (string, error) {
	if libPath == "" {
		// 优先级：环境变量 > 可执行文件目录
		libPath = os.Getenv(LibraryEnv)
		if libPath == "" {
			exePath, err := os.Executable()
			if err != nil {
				return "", fmt.Errorf("failed to get executable path: %w", err)
			}
			libPath = filepath.Join(filepath.Dir(exePath), getLibName())
		}
	}

	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return "", fmt.Errorf("library not found: %s", libPath)
	}
	return libPath, nil
}

func getLibName() string {
	switch runtime.GOOS {
	case "windows":
		return "polars_bridge.dll"
	case "darwin":
		return "libpolars_bridge.dylib"
	default:
		return "libpolars_bridge.so"
	}
}

// Library returns the underlying library.
func (b *Bridge) Library() Library { return b.lib }

// Logger returns the bridge logger.
func (b *Bridge) Logger() *slog.Logger { return b.logger }

// AbiVersion 获取 ABI 版本
func (b *Bridge) AbiVersion() uint32 {
	return b.lib.AbiVersion()
}

// Fingerprint returns the codec fingerprint the library was built with.
func (b *Bridge) Fingerprint() uint64 {
	return b.lib.Fingerprint()
}

// EngineVersion 获取引擎版本
func (b *Bridge) EngineVersion() (string, error) {
	release, err := b.acquire(true)
	if err != nil {
		return "", err
	}
	defer release()
	return b.lib.EngineVersion()
}

// Call invokes a native entry point with an encoded argument tuple.
func (b *Bridge) Call(symbol string, args value.Value, opts CallOptions) (value.Value, error) {
	raw := value.Marshal(args)
	start := time.Now()

	code, out, err := b.invoke(symbol, raw, opts.Releasing)

	b.logger.Debug("native call",
		"symbol", symbol,
		"releasing", opts.Releasing,
		"code", code,
		"elapsed", time.Since(start),
	)

	if errors.Is(err, ErrClosed) {
		return value.Value{}, fmt.Errorf("%s: %w", symbol, err)
	}
	if err != nil {
		return value.Value{}, &Error{Code: ErrUnsupported, Symbol: symbol, Message: err.Error()}
	}
	if code != ErrOK {
		return value.Value{}, &Error{Code: code, Symbol: symbol, Message: decodeMessage(out)}
	}

	v, err := value.Unmarshal(out)
	if err != nil {
		return value.Value{}, &Error{Code: ErrDecode, Symbol: symbol, Message: err.Error()}
	}
	return v, nil
}

// acquire pins the library for one native call. locked also takes the
// runtime lock. Lock order is life, then mu.
func (b *Bridge) acquire(locked bool) (release func(), err error) {
	b.life.RLock()
	if b.closed {
		b.life.RUnlock()
		return nil, ErrClosed
	}
	if !locked {
		return b.life.RUnlock, nil
	}
	b.mu.Lock()
	return func() {
		b.mu.Unlock()
		b.life.RUnlock()
	}, nil
}

func (b *Bridge) invoke(symbol string, raw []byte, releasing bool) (ErrorCode, []byte, error) {
	release, err := b.acquire(!releasing)
	if err != nil {
		return ErrUnknown, nil, err
	}
	defer release()
	return b.lib.Call(symbol, raw)
}

// decodeMessage extracts the message of a failed call. Libraries that write
// raw text instead of an encoded string are tolerated.
func decodeMessage(out []byte) string {
	if len(out) == 0 {
		return "unknown error"
	}
	v, err := value.Unmarshal(out)
	if err != nil {
		return string(out)
	}
	msg, err := v.AsString()
	if err != nil {
		return v.String()
	}
	return msg
}

// CloneHandle asks the native side for an independent copy of a handle.
func (b *Bridge) CloneHandle(handle uint64) (uint64, error) {
	release, err := b.acquire(true)
	if err != nil {
		return 0, err
	}
	defer release()
	h := b.lib.CloneHandle(handle)
	if h == 0 {
		return 0, &Error{Code: ErrInvalidArgument, Message: fmt.Sprintf("cannot clone handle %d", handle)}
	}
	return h, nil
}

// FreeHandle releases a native handle.
func (b *Bridge) FreeHandle(handle uint64) {
	if handle == 0 {
		return
	}
	release, err := b.acquire(true)
	if err != nil {
		return
	}
	defer release()
	b.lib.FreeHandle(handle)
}

// Close waits for running calls, releasing ones included, then unloads the
// library. Handles still alive afterwards are leaked.
func (b *Bridge) Close() error {
	b.life.Lock()
	defer b.life.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.lib.Close()
}
