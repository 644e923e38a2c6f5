package bridge

import (
	"errors"
	"fmt"
)

// ErrNilBridge is returned when a call is made without a loaded bridge.
var ErrNilBridge = errors.New("bridge: not loaded")

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("bridge: closed")

// AbiVersion is the native ABI revision this package speaks.
const AbiVersion uint32 = 1

// ErrorCode 错误码
//
// Every entry point returns one of these. For anything but ErrOK the output
// buffer holds the message as an encoded string value.
type ErrorCode int32

const (
	ErrOK              ErrorCode = 0
	ErrUnknown         ErrorCode = 1
	ErrInvalidArgument ErrorCode = 2
	ErrAbiMismatch     ErrorCode = 3
	ErrCodecMismatch   ErrorCode = 4
	ErrDecode          ErrorCode = 5
	ErrException       ErrorCode = 6
	ErrPanic           ErrorCode = 7
	ErrArrowImport     ErrorCode = 8
	ErrArrowExport     ErrorCode = 9
	ErrUnsupported     ErrorCode = 10
	ErrOom             ErrorCode = 11
)

var errorCodeNames = map[ErrorCode]string{
	ErrOK:              "ok",
	ErrUnknown:         "unknown",
	ErrInvalidArgument: "invalid argument",
	ErrAbiMismatch:     "abi mismatch",
	ErrCodecMismatch:   "codec mismatch",
	ErrDecode:          "decode",
	ErrException:       "exception",
	ErrPanic:           "panic",
	ErrArrowImport:     "arrow import",
	ErrArrowExport:     "arrow export",
	ErrUnsupported:     "unsupported",
	ErrOom:             "out of memory",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int32(c))
}

// Error is a failure reported by the native side, or by the bridge while
// talking to it. Library errors only carry their message; no finer category
// crosses the boundary.
type Error struct {
	Code    ErrorCode
	Symbol  string
	Message string
}

func (e *Error) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("polars %s in %s: %s", e.Code, e.Symbol, e.Message)
	}
	return fmt.Sprintf("polars %s: %s", e.Code, e.Message)
}

// Is matches errors carrying the same code, so callers can test
// errors.Is(err, &bridge.Error{Code: bridge.ErrException}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Symbol == "" || t.Symbol == e.Symbol)
}
