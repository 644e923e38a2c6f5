// Package bridgetest provides an in-memory bridge.Library for tests that
// exercise the marshalling layer without a native Polars build.
package bridgetest

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/value"
)

// Handler serves one entry point. Returning a *bridge.Error reports its
// code; any other error is raised as an exception.
type Handler func(args value.Value) (value.Value, error)

type entry struct {
	v     any
	clone func(any) any
}

// Fake is a scripted native library.
type Fake struct {
	Abi     uint32
	FP      uint64
	Version string

	mu       sync.Mutex
	handlers map[string]Handler
	handles  map[uint64]*entry
	next     uint64
	calls    []string
	closed   bool
}

// New returns a fake speaking the current ABI with no fingerprint.
func New() *Fake {
	return &Fake{
		Abi:      bridge.AbiVersion,
		Version:  "0.0.0-fake",
		handlers: make(map[string]Handler),
		handles:  make(map[uint64]*entry),
	}
}

// Bridge wraps the fake in a bridge.Bridge.
func (f *Fake) Bridge(opts ...bridge.Option) (*bridge.Bridge, error) {
	return bridge.New(f, opts...)
}

// Handle registers a handler for symbol.
func (f *Fake) Handle(symbol string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[symbol] = h
}

// Put stores v under a fresh handle. clone is used by CloneHandle; nil
// shares v between clones.
func (f *Fake) Put(v any, clone func(any) any) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.handles[f.next] = &entry{v: v, clone: clone}
	return f.next
}

// Get returns the value stored under handle.
func (f *Fake) Get(handle uint64) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.handles[handle]
	if !ok {
		return nil, false
	}
	return e.v, true
}

// Set replaces the value stored under handle, as an in-place mutation would.
func (f *Fake) Set(handle uint64, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.handles[handle]
	if !ok {
		return fmt.Errorf("bridgetest: unknown handle %d", handle)
	}
	e.v = v
	return nil
}

// Live reports the number of handles not yet freed.
func (f *Fake) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles)
}

// Calls returns the symbols invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Symbols returns the registered symbols, sorted.
func (f *Fake) Symbols() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.handlers))
	for s := range f.handlers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (f *Fake) AbiVersion() uint32  { return f.Abi }
func (f *Fake) Fingerprint() uint64 { return f.FP }

func (f *Fake) EngineVersion() (string, error) { return f.Version, nil }

func (f *Fake) Call(symbol string, args []byte) (bridge.ErrorCode, []byte, error) {
	f.mu.Lock()
	h, ok := f.handlers[symbol]
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	if !ok {
		return bridge.ErrUnsupported, nil, fmt.Errorf("failed to find %s", symbol)
	}

	in, err := value.Unmarshal(args)
	if err != nil {
		return bridge.ErrDecode, value.Marshal(value.String(err.Error())), nil
	}
	out, err := h(in)
	if err != nil {
		code := bridge.ErrException
		var be *bridge.Error
		if errors.As(err, &be) {
			code = be.Code
			err = errors.New(be.Message)
		}
		return code, value.Marshal(value.String(err.Error())), nil
	}
	return bridge.ErrOK, value.Marshal(out), nil
}

func (f *Fake) CloneHandle(handle uint64) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.handles[handle]
	if !ok {
		return 0
	}
	v := e.v
	if e.clone != nil {
		v = e.clone(v)
	}
	f.next++
	f.handles[f.next] = &entry{v: v, clone: e.clone}
	return f.next
}

func (f *Fake) FreeHandle(handle uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handles, handle)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
