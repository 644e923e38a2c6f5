package polars

import (
	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

func (e Expr) DtYear() Expr       { return e.unary("dt_year") }
func (e Expr) DtMonth() Expr      { return e.unary("dt_month") }
func (e Expr) DtDay() Expr        { return e.unary("dt_day") }
func (e Expr) DtHour() Expr       { return e.unary("dt_hour") }
func (e Expr) DtMinute() Expr     { return e.unary("dt_minute") }
func (e Expr) DtSecond() Expr     { return e.unary("dt_second") }
func (e Expr) DtWeekday() Expr    { return e.unary("dt_weekday") }
func (e Expr) DtOrdinalDay() Expr { return e.unary("dt_ordinal_day") }
func (e Expr) DtDate() Expr       { return e.unary("dt_date") }

// DtStrftime formats temporal values as strings.
func (e Expr) DtStrftime(format string) Expr {
	return e.unary("dt_strftime", value.String(format))
}

// DtTruncate rounds down to a multiple of every, e.g. "1h" or "1mo".
func (e Expr) DtTruncate(every string) Expr {
	return e.unary("dt_truncate", value.String(every))
}

// DtEpoch returns the timestamp as an integer in unit.
func (e Expr) DtEpoch(unit TimeUnit) Expr {
	return e.unaryErr("dt_epoch", enc(timeUnitCodec, unit))
}

// DtCastTimeUnit changes the resolution of a datetime or duration.
func (e Expr) DtCastTimeUnit(unit TimeUnit) Expr {
	return e.unaryErr("dt_cast_time_unit", enc(timeUnitCodec, unit))
}

// DtConvertTimeZone moves a zoned datetime to tz.
func (e Expr) DtConvertTimeZone(tz string) Expr {
	if _, err := loadZone(&tz); err != nil {
		return Expr{err: err}
	}
	return e.unary("dt_convert_time_zone", value.String(tz))
}

// DtReplaceTimeZone reinterprets wall-clock values in tz; nil makes them naive.
func (e Expr) DtReplaceTimeZone(tz *string) Expr {
	if _, err := loadZone(tz); err != nil {
		return Expr{err: err}
	}
	return e.unaryErr("dt_replace_time_zone", enc(interop.Option(interop.String), tz))
}
