package polars

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

func roundTrip[T any](t *testing.T, c interop.Codec[T], x T) (value.Value, T) {
	t.Helper()
	v, err := c.Encode(interop.NewEncoder(), x)
	require.NoError(t, err)
	wire, err := value.Unmarshal(value.Marshal(v))
	require.NoError(t, err)
	got, err := c.Decode(interop.NewDecoder(nil), wire)
	require.NoError(t, err)
	return v, got
}

func TestCodecTableGolden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "codec_table", []byte(CodecTable()))
}

func TestConstEnumCodec(t *testing.T) {
	v, got := roundTrip(t, closedWindowCodec, ClosedBoth)
	assert.True(t, v.Equal(value.Int(2)))
	assert.Equal(t, ClosedBoth, got)

	_, err := closedWindowCodec.Encode(interop.NewEncoder(), ClosedWindow(9))
	assert.Error(t, err)

	_, err = closedWindowCodec.Decode(interop.NewDecoder(nil), value.Int(4))
	var se *value.ShapeError
	assert.ErrorAs(t, err, &se)

	assert.Equal(t, "Both", ClosedBoth.String())
	assert.Equal(t, "invalid(9)", ClosedWindow(9).String())
	assert.Equal(t, "us", Microseconds.String())
}

func TestFillNullStrategyCodec(t *testing.T) {
	three := 3
	tests := []struct {
		name     string
		strategy FillNullStrategy
		want     value.Value
		str      string
	}{
		{"backward unlimited", BackwardFill(nil), value.Block(0, value.None()), "Backward"},
		{"forward limited", ForwardFill(&three), value.Block(1, value.Some(value.Int(3))), "Forward(3)"},
		{"mean", FillMean, value.Int(0), "Mean"},
		{"min bound", FillMinBound, value.Int(6), "MinBound"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, got := roundTrip(t, fillNullStrategyCodec, tt.strategy)
			assert.True(t, v.Equal(tt.want), "encoded %s", v)
			assert.Equal(t, tt.strategy, got)
			assert.Equal(t, tt.str, tt.strategy.String())
		})
	}

	t.Run("negative limit", func(t *testing.T) {
		neg := -1
		_, err := fillNullStrategyCodec.Encode(interop.NewEncoder(), ForwardFill(&neg))
		assert.ErrorIs(t, err, interop.ErrOutOfRange)
	})

	t.Run("bad tag", func(t *testing.T) {
		_, err := fillNullStrategyCodec.Decode(interop.NewDecoder(nil), value.Block(2, value.None()))
		assert.Error(t, err)
	})
}

func roundTripConsts[T ~int](t *testing.T, c interop.Codec[T], names []string) {
	t.Helper()
	require.NotEmpty(t, names)
	for i, name := range names {
		x := T(i)
		v, got := roundTrip(t, c, x)
		assert.True(t, v.Equal(value.Int(int64(i))), "%s %s encoded %s", c.Name(), name, v)
		assert.Equal(t, x, got, "%s %s", c.Name(), name)
	}
}

func TestEveryEnumValueRoundTrips(t *testing.T) {
	t.Run("TimeUnit", func(t *testing.T) { roundTripConsts(t, timeUnitCodec, timeUnitNames) })
	t.Run("WindowMapping", func(t *testing.T) { roundTripConsts(t, windowMappingCodec, windowMappingNames) })
	t.Run("RankMethod", func(t *testing.T) { roundTripConsts(t, rankMethodCodec, rankMethodNames) })
	t.Run("ClosedWindow", func(t *testing.T) { roundTripConsts(t, closedWindowCodec, closedWindowNames) })
	t.Run("StartBy", func(t *testing.T) {
		require.Len(t, startByNames, 9)
		roundTripConsts(t, startByCodec, startByNames)
	})
	t.Run("IsSorted", func(t *testing.T) { roundTripConsts(t, isSortedCodec, isSortedNames) })
	t.Run("JsonFormat", func(t *testing.T) { roundTripConsts(t, jsonFormatCodec, jsonFormatNames) })
	t.Run("UniqueKeepStrategy", func(t *testing.T) { roundTripConsts(t, uniqueKeepCodec, uniqueKeepNames) })

	t.Run("AsofStrategy", func(t *testing.T) {
		for i, name := range asOfStrategyNames {
			v, got := roundTrip(t, asOfStrategyCodec, AsOfStrategy(i))
			assert.True(t, v.Equal(value.Variant(name)))
			assert.Equal(t, AsOfStrategy(i), got)
		}
	})

	t.Run("FillNullStrategy", func(t *testing.T) {
		limit := 3
		for kind := FillNullBackward; kind <= FillNullMinBound; kind++ {
			cases := []FillNullStrategy{{Kind: kind}}
			if kind == FillNullBackward || kind == FillNullForward {
				cases = append(cases, FillNullStrategy{Kind: kind, Limit: &limit})
			}
			for _, s := range cases {
				_, got := roundTrip(t, fillNullStrategyCodec, s)
				assert.Equal(t, s, got, "%s", s)
			}
		}
	})

	t.Run("JoinType", func(t *testing.T) {
		for kind := JoinLeft; kind < JoinAsOf; kind++ {
			j := JoinType{Kind: kind}
			v, got := roundTrip(t, joinTypeCodec, j)
			assert.True(t, v.Equal(value.Int(int64(kind))))
			assert.Equal(t, j, got)
		}
		tol := "5m"
		for i := range asOfStrategyNames {
			for _, o := range []AsOfOptions{
				{Strategy: AsOfStrategy(i)},
				{Strategy: AsOfStrategy(i), Tolerance: &tol, LeftBy: []string{"k"}, RightBy: []string{"k"}},
			} {
				j := AsOfJoin(o)
				_, got := roundTrip(t, joinTypeCodec, j)
				assert.Equal(t, j, got)
			}
		}
	})
}

func TestAsOfStrategyUsesVariants(t *testing.T) {
	v, got := roundTrip(t, asOfStrategyCodec, AsOfNearest)
	assert.True(t, v.Equal(value.Variant("Nearest")))
	assert.Equal(t, AsOfNearest, got)

	_, err := asOfStrategyCodec.Decode(interop.NewDecoder(nil), value.Variant("Sideways"))
	assert.ErrorIs(t, err, value.ErrUnknownVariant)
}

func TestJoinTypeCodec(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		v, got := roundTrip(t, joinTypeCodec, SemiJoin)
		assert.True(t, v.Equal(value.Int(4)))
		assert.Equal(t, SemiJoin, got)
	})

	t.Run("as-of without by", func(t *testing.T) {
		tol := "1h"
		j := AsOfJoin(AsOfOptions{Strategy: AsOfForward, Tolerance: &tol})
		v, got := roundTrip(t, joinTypeCodec, j)
		want := value.Block(0,
			value.Variant("Forward"),
			value.Some(value.String("1h")),
			value.None(),
			value.None(),
		)
		assert.True(t, v.Equal(want), "encoded %s", v)
		assert.Equal(t, j, got)
		assert.Nil(t, got.AsOf.LeftBy)
	})

	t.Run("as-of with empty by", func(t *testing.T) {
		j := AsOfJoin(AsOfOptions{LeftBy: []string{"a", "b"}, RightBy: []string{}})
		v, got := roundTrip(t, joinTypeCodec, j)
		fields, err := v.Block(0, 4)
		require.NoError(t, err)
		assert.True(t, fields[2].Equal(value.Some(value.List(value.String("a"), value.String("b")))))
		rec, err := asOfLayout.Open(v)
		require.NoError(t, err)
		assert.True(t, rec.Get("right_by").Equal(value.Some(value.List())))
		assert.Equal(t, []string{"a", "b"}, got.AsOf.LeftBy)
		assert.NotNil(t, got.AsOf.RightBy)
		assert.Empty(t, got.AsOf.RightBy)
	})

	t.Run("as-of without options", func(t *testing.T) {
		_, err := joinTypeCodec.Encode(interop.NewEncoder(), JoinType{Kind: JoinAsOf})
		assert.Error(t, err)
	})
}
