package polars

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

// codecTable documents the tag assignment of one enum codec. The rendered
// tables feed CodecFingerprint, so any change here changes the fingerprint.
type codecTable struct {
	name    string
	entries []string
}

var tables = struct {
	sync.Mutex
	all map[string]codecTable
}{all: make(map[string]codecTable)}

func registerTable(name string, entries ...string) {
	tables.Lock()
	defer tables.Unlock()
	tables.all[name] = codecTable{name: name, entries: entries}
}

func constEntries(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("const %d %s", i, n)
	}
	return out
}

// constEnum builds the codec of an enum without payload constructors.
// Values are numbered in declaration order.
func constEnum[T ~int](name string, names []string) interop.Codec[T] {
	registerTable(name, constEntries(names)...)
	return interop.NewCodec(name,
		func(_ *interop.Encoder, x T) (value.Value, error) {
			if int(x) < 0 || int(x) >= len(names) {
				return value.Value{}, fmt.Errorf("invalid %s %d", name, int(x))
			}
			return value.Int(int64(x)), nil
		},
		func(_ *interop.Decoder, v value.Value) (T, error) {
			i, err := v.AsInt()
			if err != nil {
				return 0, err
			}
			if i < 0 || i >= int64(len(names)) {
				return 0, &value.ShapeError{Want: name, Got: v}
			}
			return T(i), nil
		})
}

func enumString(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("invalid(%d)", i)
	}
	return names[i]
}

// TimeUnit is the resolution of datetime and duration values.
type TimeUnit int

const (
	Nanoseconds TimeUnit = iota
	Microseconds
	Milliseconds
)

var timeUnitNames = []string{"Nanoseconds", "Microseconds", "Milliseconds"}

func (u TimeUnit) String() string {
	switch u {
	case Nanoseconds:
		return "ns"
	case Microseconds:
		return "us"
	case Milliseconds:
		return "ms"
	}
	return enumString(timeUnitNames, int(u))
}

var timeUnitCodec = constEnum[TimeUnit]("TimeUnit", timeUnitNames)

// WindowMapping controls how Over maps group results back to rows.
type WindowMapping int

const (
	GroupsToRows WindowMapping = iota
	Explode
	Join
)

var windowMappingNames = []string{"GroupsToRows", "Explode", "Join"}

func (m WindowMapping) String() string { return enumString(windowMappingNames, int(m)) }

var windowMappingCodec = constEnum[WindowMapping]("WindowMapping", windowMappingNames)

// RankMethod selects how ties are ranked.
type RankMethod int

const (
	RankAverage RankMethod = iota
	RankMin
	RankMax
	RankDense
	RankOrdinal
	RankRandom
)

var rankMethodNames = []string{"Average", "Min", "Max", "Dense", "Ordinal", "Random"}

func (m RankMethod) String() string { return enumString(rankMethodNames, int(m)) }

var rankMethodCodec = constEnum[RankMethod]("RankMethod", rankMethodNames)

// ClosedWindow says which interval bounds are inclusive.
type ClosedWindow int

const (
	ClosedLeft ClosedWindow = iota
	ClosedRight
	ClosedBoth
	ClosedNone
)

var closedWindowNames = []string{"Left", "Right", "Both", "None"}

func (c ClosedWindow) String() string { return enumString(closedWindowNames, int(c)) }

var closedWindowCodec = constEnum[ClosedWindow]("ClosedWindow", closedWindowNames)

// StartBy picks the first window boundary of a dynamic group-by.
type StartBy int

const (
	WindowBound StartBy = iota
	DataPoint
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var startByNames = []string{"WindowBound", "DataPoint", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (s StartBy) String() string { return enumString(startByNames, int(s)) }

var startByCodec = constEnum[StartBy]("StartBy", startByNames)

// IsSorted is the sortedness flag of a column.
type IsSorted int

const (
	SortedAscending IsSorted = iota
	SortedDescending
	NotSorted
)

var isSortedNames = []string{"Ascending", "Descending", "Not"}

func (s IsSorted) String() string { return enumString(isSortedNames, int(s)) }

var isSortedCodec = constEnum[IsSorted]("IsSorted", isSortedNames)

// JSONFormat selects between a JSON array and newline-delimited JSON.
type JSONFormat int

const (
	JSON JSONFormat = iota
	JSONLines
)

var jsonFormatNames = []string{"Json", "JsonLines"}

func (f JSONFormat) String() string { return enumString(jsonFormatNames, int(f)) }

var jsonFormatCodec = constEnum[JSONFormat]("JsonFormat", jsonFormatNames)

// UniqueKeep picks which duplicate row Unique keeps.
type UniqueKeep int

const (
	KeepFirst UniqueKeep = iota
	KeepLast
	KeepAny
	KeepNone
)

var uniqueKeepNames = []string{"First", "Last", "Any", "None"}

func (k UniqueKeep) String() string { return enumString(uniqueKeepNames, int(k)) }

var uniqueKeepCodec = constEnum[UniqueKeep]("UniqueKeepStrategy", uniqueKeepNames)

// FillNullKind enumerates the fill strategies.
type FillNullKind int

const (
	FillNullBackward FillNullKind = iota
	FillNullForward
	FillNullMean
	FillNullMin
	FillNullMax
	FillNullZero
	FillNullOne
	FillNullMaxBound
	FillNullMinBound
)

// FillNullStrategy fills nulls from neighbours or with a computed value.
// Limit only applies to backward and forward fills; nil means unlimited.
type FillNullStrategy struct {
	Kind  FillNullKind
	Limit *int
}

var (
	FillMean     = FillNullStrategy{Kind: FillNullMean}
	FillMin      = FillNullStrategy{Kind: FillNullMin}
	FillMax      = FillNullStrategy{Kind: FillNullMax}
	FillZero     = FillNullStrategy{Kind: FillNullZero}
	FillOne      = FillNullStrategy{Kind: FillNullOne}
	FillMaxBound = FillNullStrategy{Kind: FillNullMaxBound}
	FillMinBound = FillNullStrategy{Kind: FillNullMinBound}
)

// BackwardFill fills each null with the next non-null value.
func BackwardFill(limit *int) FillNullStrategy {
	return FillNullStrategy{Kind: FillNullBackward, Limit: limit}
}

// ForwardFill fills each null with the previous non-null value.
func ForwardFill(limit *int) FillNullStrategy {
	return FillNullStrategy{Kind: FillNullForward, Limit: limit}
}

var fillNullConstNames = []string{"Mean", "Min", "Max", "Zero", "One", "MaxBound", "MinBound"}

func (s FillNullStrategy) String() string {
	switch s.Kind {
	case FillNullBackward, FillNullForward:
		name := "Backward"
		if s.Kind == FillNullForward {
			name = "Forward"
		}
		if s.Limit == nil {
			return name
		}
		return fmt.Sprintf("%s(%d)", name, *s.Limit)
	}
	return enumString(fillNullConstNames, int(s.Kind-FillNullMean))
}

var fillLimitCodec = interop.CoercedOption[uint32]()

func init() {
	registerTable("FillNullStrategy", append([]string{
		"block 0 Backward(" + fillLimitCodec.Name() + ")",
		"block 1 Forward(" + fillLimitCodec.Name() + ")",
	}, constEntries(fillNullConstNames)...)...)
}

var fillNullStrategyCodec = interop.NewCodec("FillNullStrategy",
	func(e *interop.Encoder, s FillNullStrategy) (value.Value, error) {
		switch s.Kind {
		case FillNullBackward, FillNullForward:
			limit, err := fillLimitCodec.Encode(e, s.Limit)
			if err != nil {
				return value.Value{}, err
			}
			return value.Block(int(s.Kind), limit), nil
		}
		i := int(s.Kind - FillNullMean)
		if i < 0 || i >= len(fillNullConstNames) {
			return value.Value{}, fmt.Errorf("invalid FillNullStrategy kind %d", s.Kind)
		}
		return value.Int(int64(i)), nil
	},
	func(d *interop.Decoder, v value.Value) (FillNullStrategy, error) {
		if v.IsInt() {
			i, _ := v.AsInt()
			if i < 0 || i >= int64(len(fillNullConstNames)) {
				return FillNullStrategy{}, &value.ShapeError{Want: "FillNullStrategy", Got: v}
			}
			return FillNullStrategy{Kind: FillNullMean + FillNullKind(i)}, nil
		}
		tag, err := v.Tag()
		if err != nil || tag > 1 || v.Len() != 1 {
			return FillNullStrategy{}, &value.ShapeError{Want: "FillNullStrategy", Got: v}
		}
		limit, err := fillLimitCodec.Decode(d, v.Fields()[0])
		if err != nil {
			return FillNullStrategy{}, err
		}
		return FillNullStrategy{Kind: FillNullKind(tag), Limit: limit}, nil
	})

// AsOfStrategy is the direction an as-of join searches in.
type AsOfStrategy int

const (
	AsOfBackward AsOfStrategy = iota
	AsOfForward
	AsOfNearest
)

var asOfStrategyNames = []string{"Backward", "Forward", "Nearest"}

func (s AsOfStrategy) String() string { return enumString(asOfStrategyNames, int(s)) }

func init() {
	entries := make([]string, len(asOfStrategyNames))
	for i, n := range asOfStrategyNames {
		entries[i] = fmt.Sprintf("variant %d `%s", value.HashVariant(n), n)
	}
	registerTable("AsofStrategy", entries...)
}

// asOfStrategyCodec uses polymorphic variants.
var asOfStrategyCodec = interop.NewCodec("AsofStrategy",
	func(_ *interop.Encoder, s AsOfStrategy) (value.Value, error) {
		if s < 0 || int(s) >= len(asOfStrategyNames) {
			return value.Value{}, fmt.Errorf("invalid AsofStrategy %d", int(s))
		}
		return value.Variant(asOfStrategyNames[s]), nil
	},
	func(_ *interop.Decoder, v value.Value) (AsOfStrategy, error) {
		name, _, hasPayload, err := v.AsVariant(asOfStrategyNames...)
		if err != nil {
			return 0, err
		}
		if hasPayload {
			return 0, &value.ShapeError{Want: "AsofStrategy", Got: v}
		}
		for i, n := range asOfStrategyNames {
			if n == name {
				return AsOfStrategy(i), nil
			}
		}
		return 0, value.ErrUnknownVariant
	})

// AsOfOptions parameterize an as-of join. A nil LeftBy or RightBy is
// absent; an empty, non-nil slice is present but empty.
type AsOfOptions struct {
	Strategy  AsOfStrategy
	Tolerance *string
	LeftBy    []string
	RightBy   []string
}

// asOfLayout is the AsOf constructor of JoinType itself: tag 0, the four
// options inline.
var asOfLayout = value.NewLayout("AsOf", 0, "strategy", "tolerance", "left_by", "right_by")

var (
	optString     = interop.Option(interop.String)
	optStringList = interop.NewCodec("option<list<string>>",
		func(e *interop.Encoder, xs []string) (value.Value, error) {
			if xs == nil {
				return value.None(), nil
			}
			v, err := interop.List(interop.String).Encode(e, xs)
			if err != nil {
				return value.Value{}, err
			}
			return value.Some(v), nil
		},
		func(d *interop.Decoder, v value.Value) ([]string, error) {
			inner, ok, err := v.AsOption()
			if err != nil || !ok {
				return nil, err
			}
			return interop.List(interop.String).Decode(d, inner)
		})
)

var asOfOptionsCodec = interop.NewCodec("AsOfOptions",
	func(e *interop.Encoder, o AsOfOptions) (value.Value, error) {
		strategy, err := asOfStrategyCodec.Encode(e, o.Strategy)
		if err != nil {
			return value.Value{}, err
		}
		tolerance, err := optString.Encode(e, o.Tolerance)
		if err != nil {
			return value.Value{}, err
		}
		leftBy, err := optStringList.Encode(e, o.LeftBy)
		if err != nil {
			return value.Value{}, err
		}
		rightBy, err := optStringList.Encode(e, o.RightBy)
		if err != nil {
			return value.Value{}, err
		}
		return asOfLayout.Make(map[string]value.Value{
			"strategy":  strategy,
			"tolerance": tolerance,
			"left_by":   leftBy,
			"right_by":  rightBy,
		})
	},
	func(d *interop.Decoder, v value.Value) (AsOfOptions, error) {
		var o AsOfOptions
		rec, err := asOfLayout.Open(v)
		if err != nil {
			return o, err
		}
		if o.Strategy, err = asOfStrategyCodec.Decode(d, rec.Get("strategy")); err != nil {
			return o, err
		}
		if o.Tolerance, err = optString.Decode(d, rec.Get("tolerance")); err != nil {
			return o, err
		}
		if o.LeftBy, err = optStringList.Decode(d, rec.Get("left_by")); err != nil {
			return o, err
		}
		o.RightBy, err = optStringList.Decode(d, rec.Get("right_by"))
		return o, err
	})

// JoinKind enumerates the join types.
type JoinKind int

const (
	JoinLeft JoinKind = iota
	JoinInner
	JoinOuter
	JoinCross
	JoinSemi
	JoinAnti
	JoinAsOf
)

var joinKindNames = []string{"Left", "Inner", "Outer", "Cross", "Semi", "Anti"}

// JoinType is a join kind; AsOf is set only for JoinAsOf.
type JoinType struct {
	Kind JoinKind
	AsOf *AsOfOptions
}

var (
	LeftJoin  = JoinType{Kind: JoinLeft}
	InnerJoin = JoinType{Kind: JoinInner}
	OuterJoin = JoinType{Kind: JoinOuter}
	CrossJoin = JoinType{Kind: JoinCross}
	SemiJoin  = JoinType{Kind: JoinSemi}
	AntiJoin  = JoinType{Kind: JoinAnti}
)

// AsOfJoin joins on the nearest key.
func AsOfJoin(opts AsOfOptions) JoinType {
	return JoinType{Kind: JoinAsOf, AsOf: &opts}
}

func (j JoinType) String() string {
	if j.Kind == JoinAsOf {
		return "AsOf"
	}
	return enumString(joinKindNames, int(j.Kind))
}

func init() {
	registerTable("JoinType", append(constEntries(joinKindNames),
		"block 0 AsOf("+strings.Join([]string{
			"strategy: " + asOfStrategyCodec.Name(),
			"tolerance: " + optString.Name(),
			"left_by: " + optStringList.Name(),
			"right_by: " + optStringList.Name(),
		}, ", ")+")")...)
}

var joinTypeCodec = interop.NewCodec("JoinType",
	func(e *interop.Encoder, j JoinType) (value.Value, error) {
		if j.Kind == JoinAsOf {
			if j.AsOf == nil {
				return value.Value{}, fmt.Errorf("as-of join without options")
			}
			return asOfOptionsCodec.Encode(e, *j.AsOf)
		}
		if j.Kind < 0 || int(j.Kind) >= len(joinKindNames) {
			return value.Value{}, fmt.Errorf("invalid JoinType %d", int(j.Kind))
		}
		return value.Int(int64(j.Kind)), nil
	},
	func(d *interop.Decoder, v value.Value) (JoinType, error) {
		if v.IsInt() {
			i, _ := v.AsInt()
			if i < 0 || i >= int64(len(joinKindNames)) {
				return JoinType{}, &value.ShapeError{Want: "JoinType", Got: v}
			}
			return JoinType{Kind: JoinKind(i)}, nil
		}
		opts, err := asOfOptionsCodec.Decode(d, v)
		if err != nil {
			return JoinType{}, err
		}
		return JoinType{Kind: JoinAsOf, AsOf: &opts}, nil
	})

// CodecTable renders the tag assignment of every enum codec.
func CodecTable() string {
	tables.Lock()
	names := make([]string, 0, len(tables.all))
	for n := range tables.all {
		names = append(names, n)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n)
		sb.WriteByte('\n')
		for _, e := range tables.all[n].entries {
			sb.WriteString("  ")
			sb.WriteString(e)
			sb.WriteByte('\n')
		}
	}
	tables.Unlock()
	return sb.String()
}
