package interop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	n, err := Coerce[uint32](5)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), n)

	_, err = Coerce[uint32](-1)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, "failed to coerce int (-1) to uint32: out of range integral type conversion attempted", err.Error())

	_, err = Coerce[uint32](1 << 33)
	assert.ErrorIs(t, err, ErrOutOfRange)

	i8, err := Coerce[int8](-128)
	require.NoError(t, err)
	assert.Equal(t, int8(-128), i8)
	_, err = Coerce[int8](128)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Coerce[uint64](-5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	u, err := Coerce[uint64](math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt), u)
}

func TestCoerceOption(t *testing.T) {
	got, err := CoerceOption[uint32](nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	v := 7
	got, err = CoerceOption[uint32](&v)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint32(7), *got)

	v = -7
	_, err = CoerceOption[uint32](&v)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestWiden(t *testing.T) {
	n, err := widen[uint32](42)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = widen[uint32](-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
