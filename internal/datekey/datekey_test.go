package datekey

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func testZones(t *testing.T) []*time.Location {
	t.Helper()
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-10", -10*3600),
		time.FixedZone("UTC+14", 14*3600),
		time.FixedZone("UTC-03:30", -(3*3600 + 1800)),
	}
	for _, name := range []string{"America/Sao_Paulo", "America/Los_Angeles", "Europe/Paris", "Pacific/Auckland"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		zones = append(zones, loc)
	}
	return zones
}

// ============================================================
// ParseIn
// ============================================================

func TestParseBareKeyStaysOnSameDay(t *testing.T) {
	for _, loc := range testZones(t) {
		got, ok := ParseIn("2024-03-01", loc)
		if !ok {
			t.Fatalf("%s: parse failed", loc)
		}
		if y, m, d := got.Date(); y != 2024 || m != time.March || d != 1 {
			t.Fatalf("%s: got %v, want 2024-03-01", loc, got)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Fatalf("%s: expected local midnight, got %v", loc, got)
		}
		if got.Location() != loc {
			t.Fatalf("%s: location not preserved", loc)
		}
	}
}

func TestParseZonedDatetimeConvertsToLocation(t *testing.T) {
	loc := time.FixedZone("UTC-05", -5*3600)
	got, ok := ParseIn("2024-03-15T02:00:00Z", loc)
	if !ok {
		t.Fatal("parse failed")
	}
	if Key(got) != "2024-03-14" || got.Hour() != 21 {
		t.Fatalf("got %v, want 2024-03-14 21:00 local", got)
	}

	tests := []struct {
		in   string
		hour int
	}{
		{"2024-03-15T10:00Z", 5},
		{"2024-03-15T10:00+02:00", 3},
		{"2024-03-15T10:00:00+0000", 5},
		{"2024-03-15T10:00:00.000+0000", 5},
		{"2024-03-15T10:00-0300", 8},
		{"2024-03-15T10:00:00.000Z", 5},
	}
	for _, tt := range tests {
		got, ok := ParseIn(tt.in, loc)
		if !ok {
			t.Fatalf("%q: parse failed", tt.in)
		}
		if got.Location() != loc || Key(got) != "2024-03-15" || got.Hour() != tt.hour {
			t.Fatalf("%q: got %v, want 2024-03-15 %02d:00 local", tt.in, got, tt.hour)
		}
	}
}

func TestParseZonelessDatetimeIsWallClock(t *testing.T) {
	loc := time.FixedZone("UTC+09", 9*3600)
	tests := []string{
		"2024-03-01T23:00:00",
		"2024-03-01T23:00",
		"2024-03-01T23:00:00.000",
		"2024-03-01 23:00:00",
	}
	for _, in := range tests {
		got, ok := ParseIn(in, loc)
		if !ok {
			t.Fatalf("%q: parse failed", in)
		}
		if Key(got) != "2024-03-01" || got.Hour() != 23 {
			t.Fatalf("%q: got %v", in, got)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "not-a-date", "2024-13-01", "2024-02-30", "2024/03/01", "2024-03-01T25:00:00"} {
		if _, ok := ParseIn(in, time.UTC); ok {
			t.Errorf("ParseIn(%q) should fail", in)
		}
	}
}

func TestParseNilLocationUsesLocal(t *testing.T) {
	got, ok := ParseIn("2024-06-10", nil)
	if !ok {
		t.Fatal("parse failed")
	}
	if got.Location() != time.Local {
		t.Fatalf("expected time.Local, got %v", got.Location())
	}
}

// ============================================================
// Day helpers
// ============================================================

func TestStartAndEndOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-03", -3*3600)
	ts := time.Date(2024, 3, 15, 13, 45, 12, 5000, loc)

	start := StartOfDay(ts)
	if !start.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, loc)) {
		t.Fatalf("start = %v", start)
	}
	end := EndOfDay(ts)
	if !end.Equal(time.Date(2024, 3, 15, 23, 59, 59, 999_000_000, loc)) {
		t.Fatalf("end = %v", end)
	}
	if !end.Add(time.Millisecond).Equal(StartOfDay(ts.AddDate(0, 0, 1))) {
		t.Fatal("end + 1ms should be next day's start")
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatal(err)
	}
	a := time.Date(2024, 3, 30, 0, 0, 0, 0, paris)
	b := time.Date(2024, 4, 2, 0, 0, 0, 0, paris)
	if got := DaysBetween(a, b); got != 3 {
		t.Fatalf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(b, a); got != -3 {
		t.Fatalf("DaysBetween reversed = %d, want -3", got)
	}
}

// ============================================================
// Properties
// ============================================================

func TestKeyRoundTrip(t *testing.T) {
	zones := testZones(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("ParseIn(Key(d)) keeps the calendar day of d", prop.ForAll(
		func(unix int64, zoneIdx int) bool {
			loc := zones[zoneIdx]
			d := time.Unix(unix, 0).In(loc)
			back, ok := ParseIn(Key(d), loc)
			if !ok {
				return false
			}
			y1, m1, d1 := d.Date()
			y2, m2, d2 := back.Date()
			return y1 == y2 && m1 == m2 && d1 == d2
		},
		gen.Int64Range(0, 4102444800), // 1970 .. 2100
		gen.IntRange(0, len(zones)-1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
