package interop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isesword/polars-go-interop/bridge/bridgetest"
	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

func TestBoxLifecycle(t *testing.T) {
	f := bridgetest.New()
	brg, err := f.Bridge()
	require.NoError(t, err)

	b := interop.NewBox(brg, f.Put("df", nil))
	c, err := b.Clone()
	require.NoError(t, err)
	assert.Equal(t, 2, f.Live())

	b.Free()
	b.Free()
	assert.Equal(t, 1, f.Live())

	_, err = b.Handle()
	assert.ErrorIs(t, err, interop.ErrFreed)
	_, err = b.Clone()
	assert.ErrorIs(t, err, interop.ErrFreed)

	h, err := c.Handle()
	require.NoError(t, err)
	v, ok := f.Get(h)
	require.True(t, ok)
	assert.Equal(t, "df", v)
	c.Free()
	assert.Equal(t, 0, f.Live())
}

func TestBorrowGate(t *testing.T) {
	f := bridgetest.New()
	brg, err := f.Bridge()
	require.NoError(t, err)
	b := interop.NewBox(brg, f.Put(0, nil))
	defer b.Free()

	r1 := b.Borrow()
	r2 := b.Borrow()
	assert.PanicsWithError(t, "handle 1: already borrowed", func() { b.BorrowMut() })
	r1()
	r2()

	release := b.BorrowMut()
	assert.Panics(t, func() { b.Borrow() })
	func() {
		defer func() {
			be, ok := recover().(*interop.BorrowError)
			require.True(t, ok)
			assert.True(t, be.Mutable)
		}()
		b.BorrowMut()
	}()
	release()

	b.BorrowMut()()
	b.Borrow()()
}

func TestUnwrapAll(t *testing.T) {
	f := bridgetest.New()
	brg, err := f.Bridge()
	require.NoError(t, err)

	a := interop.NewBox(brg, f.Put("a", nil))
	b := interop.NewBox(brg, f.Put("b", nil))
	v, err := interop.UnwrapAll([]*interop.Box{a, b})
	require.NoError(t, err)
	assert.True(t, v.Equal(value.List(value.Abstract(1), value.Abstract(2))), v.String())

	v, err = interop.UnwrapAll(nil)
	require.NoError(t, err)
	assert.True(t, v.Equal(value.List()))

	b.Free()
	_, err = interop.UnwrapAll([]*interop.Box{a, b})
	assert.ErrorIs(t, err, interop.ErrFreed)
}
