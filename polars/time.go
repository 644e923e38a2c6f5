package polars

import (
	"fmt"
	"time"
)

const (
	secondsPerDay = 24 * 60 * 60
	nanosPerDay   = int64(24 * time.Hour)
)

// dateToDays converts the calendar date of t to days since the epoch.
func dateToDays(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

func daysToDate(days int64) time.Time {
	return time.Unix(days*secondsPerDay, 0).UTC()
}

func datetimeToInt(t time.Time, unit TimeUnit) int64 {
	switch unit {
	case Microseconds:
		return t.UnixMicro()
	case Milliseconds:
		return t.UnixMilli()
	}
	return t.UnixNano()
}

func intToDatetime(v int64, unit TimeUnit, loc *time.Location) time.Time {
	var t time.Time
	switch unit {
	case Microseconds:
		t = time.UnixMicro(v)
	case Milliseconds:
		t = time.UnixMilli(v)
	default:
		t = time.Unix(0, v)
	}
	return t.In(loc)
}

func durationToInt(d time.Duration, unit TimeUnit) int64 {
	switch unit {
	case Microseconds:
		return d.Microseconds()
	case Milliseconds:
		return d.Milliseconds()
	}
	return int64(d)
}

func intToDuration(v int64, unit TimeUnit) time.Duration {
	switch unit {
	case Microseconds:
		return time.Duration(v) * time.Microsecond
	case Milliseconds:
		return time.Duration(v) * time.Millisecond
	}
	return time.Duration(v)
}

// TimeOfDay returns the wall-clock offset of t from its midnight, the
// representation of Time columns.
func TimeOfDay(t time.Time) time.Duration {
	y, m, d := t.Date()
	return t.Sub(time.Date(y, m, d, 0, 0, 0, 0, t.Location()))
}

func timeOfDayToNanos(d time.Duration) (int64, error) {
	if d < 0 || int64(d) >= nanosPerDay {
		return 0, fmt.Errorf("time of day %s outside [0, 24h)", d)
	}
	return int64(d), nil
}

// loadZone resolves a timezone name. nil is UTC.
func loadZone(tz *string) (*time.Location, error) {
	if tz == nil {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", *tz, err)
	}
	return loc, nil
}
