package interop

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/value"
)

// ErrFreed is returned when a freed box is used.
var ErrFreed = errors.New("interop: handle already freed")

// Box owns one native handle. The native value is dropped when the box is
// freed explicitly or when the garbage collector reclaims it.
//
// A box also gates in-place mutation: any number of shared borrows, or one
// exclusive borrow. A conflicting borrow panics with *BorrowError; it can
// only come from reentrant use of the same handle.
type Box struct {
	brg    *bridge.Bridge
	handle atomic.Uint64
	// >0: shared borrows, -1: exclusive borrow
	borrow atomic.Int32
}

// NewBox takes ownership of handle.
func NewBox(brg *bridge.Bridge, handle uint64) *Box {
	b := &Box{brg: brg}
	b.handle.Store(handle)
	runtime.SetFinalizer(b, (*Box).release)
	return b
}

func (b *Box) release() {
	if h := b.handle.Swap(0); h != 0 && b.brg != nil {
		b.brg.FreeHandle(h)
	}
}

// Free releases the native value. It is safe to call more than once.
func (b *Box) Free() {
	if b == nil {
		return
	}
	b.release()
	runtime.SetFinalizer(b, nil)
}

// Bridge returns the bridge owning the handle.
func (b *Box) Bridge() *bridge.Bridge { return b.brg }

// Handle returns the native handle.
func (b *Box) Handle() (uint64, error) {
	if b == nil {
		return 0, ErrFreed
	}
	h := b.handle.Load()
	if h == 0 {
		return 0, ErrFreed
	}
	return h, nil
}

// Clone asks the native side for an independent copy.
func (b *Box) Clone() (*Box, error) {
	h, err := b.Handle()
	if err != nil {
		return nil, err
	}
	c, err := b.brg.CloneHandle(h)
	if err != nil {
		return nil, err
	}
	return NewBox(b.brg, c), nil
}

// BorrowError is the panic value of a conflicting borrow.
type BorrowError struct {
	Handle  uint64
	Mutable bool
}

func (e *BorrowError) Error() string {
	if e.Mutable {
		return fmt.Sprintf("handle %d: already borrowed", e.Handle)
	}
	return fmt.Sprintf("handle %d: already mutably borrowed", e.Handle)
}

// Borrow takes a shared borrow and returns its release.
func (b *Box) Borrow() (release func()) {
	for {
		n := b.borrow.Load()
		if n < 0 {
			panic(&BorrowError{Handle: b.handle.Load()})
		}
		if b.borrow.CompareAndSwap(n, n+1) {
			return func() { b.borrow.Add(-1) }
		}
	}
}

// BorrowMut takes the exclusive borrow and returns its release.
func (b *Box) BorrowMut() (release func()) {
	if !b.borrow.CompareAndSwap(0, -1) {
		panic(&BorrowError{Handle: b.handle.Load(), Mutable: true})
	}
	return func() { b.borrow.Store(0) }
}

// UnwrapAll encodes boxes as a host list of handles, in order. The native
// side clones each value out.
func UnwrapAll(boxes []*Box) (value.Value, error) {
	vs := make([]value.Value, len(boxes))
	for i, b := range boxes {
		h, err := b.Handle()
		if err != nil {
			return value.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		vs[i] = value.Abstract(h)
	}
	return value.List(vs...), nil
}
