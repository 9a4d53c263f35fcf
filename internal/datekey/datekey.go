// Package datekey parses and formats local calendar dates.
//
// A bare YYYY-MM-DD key is always read as a date in the caller's location,
// never as UTC midnight, so a key never shifts across a day boundary.
package datekey

import (
	"strings"
	"time"
)

// Layout is the format of a local date key.
const Layout = "2006-01-02"

// Zoned layouts that time.RFC3339Nano does not cover: minute precision and
// offsets written without a colon.
var zonedLayouts = []string{
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
}

// Layouts tried for values that carry a time but no zone. Fractional seconds
// are accepted by time.Parse even when the layout omits them.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Parse is ParseIn with time.Local.
func Parse(s string) (time.Time, bool) {
	return ParseIn(s, time.Local)
}

// ParseIn reads a date key or ISO datetime. Bare keys become midnight in loc;
// zoned datetimes are converted to loc; zoneless datetimes are read as
// wall-clock time in loc. ok is false for anything unparseable.
func ParseIn(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if len(s) == len(Layout) {
		t, err := time.ParseInLocation(Layout, s, loc)
		if err != nil {
			return time.Time{}, false
		}
		return Midnight(t.Year(), t.Month(), t.Day(), loc), true
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Key formats t as YYYY-MM-DD using t's own location fields.
func Key(t time.Time) string {
	return t.Format(Layout)
}

// Midnight returns the first instant of the given calendar day in loc. Where
// a DST gap swallows 00:00 it moves forward to the first existing instant
// of that day instead of falling back into the previous one.
func Midnight(y int, m time.Month, d int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		gy, gm, gd := t.Date()
		if time.Date(gy, gm, gd, 0, 0, 0, 0, time.UTC).Equal(want) {
			return t
		}
		t = t.Add(30 * time.Minute)
	}
	return t
}

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return Midnight(y, m, d, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DaysBetween counts calendar days from a to b (b's day minus a's day),
// independent of DST transitions.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
