package interop

import (
	"errors"
	"fmt"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/value"
)

// Mode selects how a native result is delivered.
type Mode int

const (
	// ModePlain: the output is the return value itself.
	ModePlain Mode = iota
	// ModeFallible: the output is a host result; the failure arm is
	// returned as a *bridge.Error with code ErrException.
	ModeFallible
	// ModeRaiseOnErr: the native side raises instead of returning a result.
	// Failures already arrive as *bridge.Error.
	ModeRaiseOnErr
)

func (m Mode) String() string {
	switch m {
	case ModeFallible:
		return "fallible"
	case ModeRaiseOnErr:
		return "raise"
	}
	return "plain"
}

// BindOption configures a binding.
type BindOption func(*Signature)

// Fallible marks an entry point returning a host result.
func Fallible() BindOption { return func(s *Signature) { s.Mode = ModeFallible } }

// RaiseOnErr marks an entry point that raises on failure.
func RaiseOnErr() BindOption { return func(s *Signature) { s.Mode = ModeRaiseOnErr } }

// Releasing lets the call run without the runtime lock. Only for methods
// that take no borrowed host memory.
func Releasing() BindOption { return func(s *Signature) { s.Releasing = true } }

// ContractError is the panic value raised when the native side returns a
// value of the wrong shape. It indicates a build mismatch, not bad input.
type ContractError struct {
	Symbol string
	Err    error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("interop: %s returned an unexpected value: %v", e.Symbol, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

type argFunc func(*Encoder) (value.Value, error)

func arg[T any](c Codec[T], x T) argFunc {
	return func(e *Encoder) (value.Value, error) { return c.Encode(e, x) }
}

func invoke[R any](brg *bridge.Bridge, sig *Signature, ret Codec[R], args ...argFunc) (R, error) {
	var zero R
	if brg == nil {
		return zero, fmt.Errorf("%s: %w", sig.Symbol, bridge.ErrNilBridge)
	}

	enc := NewEncoder()
	defer enc.Done()
	vs := make([]value.Value, len(args))
	for i, a := range args {
		v, err := a(enc)
		if err != nil {
			return zero, fmt.Errorf("%s: argument %d (%s): %w", sig.Symbol, i, sig.Args[i], err)
		}
		vs[i] = v
	}

	out, err := brg.Call(sig.Symbol, value.Tuple(vs...), bridge.CallOptions{Releasing: sig.Releasing})
	if err != nil {
		return zero, err
	}

	if sig.Mode == ModeFallible {
		inner, err := out.AsResult()
		var re *value.ErrResult
		if errors.As(err, &re) {
			return zero, &bridge.Error{Code: bridge.ErrException, Symbol: sig.Symbol, Message: re.Message}
		}
		if err != nil {
			panic(&ContractError{Symbol: sig.Symbol, Err: err})
		}
		out = inner
	}

	r, err := ret.Decode(NewDecoder(brg), out)
	if err != nil {
		panic(&ContractError{Symbol: sig.Symbol, Err: err})
	}
	return r, nil
}

// Fn0 binds a native entry point taking no arguments.
func Fn0[R any](symbol string, r Codec[R], opts ...BindOption) func(*bridge.Bridge) (R, error) {
	sig := declare(symbol, r.Name(), opts)
	return func(brg *bridge.Bridge) (R, error) {
		return invoke(brg, sig, r)
	}
}

// Fn1 binds a native entry point taking one argument.
func Fn1[A, R any](symbol string, ca Codec[A], r Codec[R], opts ...BindOption) func(*bridge.Bridge, A) (R, error) {
	sig := declare(symbol, r.Name(), opts, ca.Name())
	return func(brg *bridge.Bridge, a A) (R, error) {
		return invoke(brg, sig, r, arg(ca, a))
	}
}

// Fn2 binds a native entry point taking two arguments.
func Fn2[A, B, R any](symbol string, ca Codec[A], cb Codec[B], r Codec[R], opts ...BindOption) func(*bridge.Bridge, A, B) (R, error) {
	sig := declare(symbol, r.Name(), opts, ca.Name(), cb.Name())
	return func(brg *bridge.Bridge, a A, b B) (R, error) {
		return invoke(brg, sig, r, arg(ca, a), arg(cb, b))
	}
}

// Fn3 binds a native entry point taking three arguments.
func Fn3[A, B, C, R any](symbol string, ca Codec[A], cb Codec[B], cc Codec[C], r Codec[R], opts ...BindOption) func(*bridge.Bridge, A, B, C) (R, error) {
	sig := declare(symbol, r.Name(), opts, ca.Name(), cb.Name(), cc.Name())
	return func(brg *bridge.Bridge, a A, b B, c C) (R, error) {
		return invoke(brg, sig, r, arg(ca, a), arg(cb, b), arg(cc, c))
	}
}

// Fn4 binds a native entry point taking four arguments.
func Fn4[A, B, C, D, R any](symbol string, ca Codec[A], cb Codec[B], cc Codec[C], cd Codec[D], r Codec[R], opts ...BindOption) func(*bridge.Bridge, A, B, C, D) (R, error) {
	sig := declare(symbol, r.Name(), opts, ca.Name(), cb.Name(), cc.Name(), cd.Name())
	return func(brg *bridge.Bridge, a A, b B, c C, d D) (R, error) {
		return invoke(brg, sig, r, arg(ca, a), arg(cb, b), arg(cc, c), arg(cd, d))
	}
}

// Fn5 binds a native entry point taking five arguments.
func Fn5[A, B, C, D, E, R any](symbol string, ca Codec[A], cb Codec[B], cc Codec[C], cd Codec[D], ce Codec[E], r Codec[R], opts ...BindOption) func(*bridge.Bridge, A, B, C, D, E) (R, error) {
	sig := declare(symbol, r.Name(), opts, ca.Name(), cb.Name(), cc.Name(), cd.Name(), ce.Name())
	return func(brg *bridge.Bridge, a A, b B, c C, d D, e E) (R, error) {
		return invoke(brg, sig, r, arg(ca, a), arg(cb, b), arg(cc, c), arg(cd, d), arg(ce, e))
	}
}

// Fn6 binds a native entry point taking six arguments.
func Fn6[A, B, C, D, E, F, R any](symbol string, ca Codec[A], cb Codec[B], cc Codec[C], cd Codec[D], ce Codec[E], cf Codec[F], r Codec[R], opts ...BindOption) func(*bridge.Bridge, A, B, C, D, E, F) (R, error) {
	sig := declare(symbol, r.Name(), opts, ca.Name(), cb.Name(), cc.Name(), cd.Name(), ce.Name(), cf.Name())
	return func(brg *bridge.Bridge, a A, b B, c C, d D, e E, f F) (R, error) {
		return invoke(brg, sig, r, arg(ca, a), arg(cb, b), arg(cc, c), arg(cd, d), arg(ce, e), arg(cf, f))
	}
}
