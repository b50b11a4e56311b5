package dates

import (
	"errors"
	"testing"
	"time"
)

func TestKeyUsesLocalCalendarDay(t *testing.T) {
	zones := []*time.Location{
		time.FixedZone("UTC-8", -8*3600),
		time.FixedZone("UTC+14", 14*3600),
		time.FixedZone("UTC-11", -11*3600),
		time.UTC,
	}
	for _, loc := range zones {
		for _, hour := range []int{0, 1, 12, 23} {
			tm := time.Date(2025, time.March, 9, hour, 59, 0, 0, loc)
			if got := Key(tm); got != "2025-03-09" {
				t.Errorf("Key(%v) = %q, want 2025-03-09", tm, got)
			}
		}
	}
}

func TestShortcuts(t *testing.T) {
	now := time.Date(2025, time.December, 31, 22, 0, 0, 0, time.FixedZone("X", -5*3600))
	if got := Today(now); got != "2025-12-31" {
		t.Errorf("Today = %q", got)
	}
	if got := Tomorrow(now); got != "2026-01-01" {
		t.Errorf("Tomorrow = %q", got)
	}
	if got := NextWeek(now); got != "2026-01-07" {
		t.Errorf("NextWeek = %q", got)
	}
	if got := Yesterday(now); got != "2025-12-30" {
		t.Errorf("Yesterday = %q", got)
	}
}

func TestParse(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	got, err := Parse("2025-03-09", loc)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.March || got.Day() != 9 || got.Hour() != 0 {
		t.Errorf("Parse = %v", got)
	}
	if got.Location() != loc {
		t.Errorf("location = %v, want %v", got.Location(), loc)
	}

	for _, bad := range []string{"", "2025-3-9", "2025/03/09", "2025-13-01", "2025-02-30", "20250309xx"} {
		if _, err := Parse(bad, loc); !errors.Is(err, ErrMalformedKey) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedKey", bad, err)
		}
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-02-28", 1)
	if err != nil || got != "2024-02-29" {
		t.Errorf("AddDays leap = %q, %v", got, err)
	}
	got, err = AddDays("2025-01-01", -1)
	if err != nil || got != "2024-12-31" {
		t.Errorf("AddDays back = %q, %v", got, err)
	}
	if _, err := AddDays("nope", 1); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestResolve(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"today":      "2025-03-10",
		"tomorrow":   "2025-03-11",
		"next-week":  "2025-03-17",
		"2025-04-01": "2025-04-01",
	}
	for in, want := range tests {
		got, err := Resolve(in, now)
		if err != nil || got != want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := Resolve("someday", now); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("Resolve(someday) error = %v", err)
	}
}

func TestRequirePast(t *testing.T) {
	if err := RequirePast("2025-03-09", "2025-03-10"); err != nil {
		t.Errorf("yesterday rejected: %v", err)
	}
	if err := RequirePast("2025-03-10", "2025-03-10"); !errors.Is(err, ErrNotInPast) {
		t.Errorf("today error = %v, want ErrNotInPast", err)
	}
	if err := RequirePast("2025-04-01", "2025-03-10"); !errors.Is(err, ErrNotInPast) {
		t.Errorf("future error = %v, want ErrNotInPast", err)
	}
	if err := RequirePast("bad", "2025-03-10"); !errors.Is(err, ErrMalformedKey) {
		t.Errorf("malformed error = %v", err)
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2025, time.February, time.UTC)
	if Key(start) != "2025-02-01" || Key(end) != "2025-03-01" {
		t.Errorf("MonthBounds = %v, %v", start, end)
	}
	y, m, err := ParseMonth("2025-11")
	if err != nil || y != 2025 || m != time.November {
		t.Errorf("ParseMonth = %d %v %v", y, m, err)
	}
	if _, _, err := ParseMonth("11-2025"); err == nil {
		t.Error("expected error")
	}
}

func TestWeek(t *testing.T) {
	week, err := Week("2025-03-30")
	if err != nil {
		t.Fatal(err)
	}
	if len(week) != 7 || week[0] != "2025-03-30" || week[2] != "2025-04-01" || week[6] != "2025-04-05" {
		t.Errorf("Week = %v", week)
	}
}
