// Package dates converts between calendar days and YYYY-MM-DD keys.
//
// Keys always describe the calendar day of the time's own location. Callers
// pass local times; nothing here converts to UTC first, because doing so moves
// late-evening times onto the next day.
package dates

import (
	"errors"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

var (
	ErrMalformedKey = errors.New("malformed date key")
	ErrNotInPast    = errors.New("date is not in the past")
)

// Key returns the YYYY-MM-DD key for the calendar day t falls on in its own location.
func Key(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

func Today(now time.Time) string     { return Key(now) }
func Tomorrow(now time.Time) string  { return Key(now.AddDate(0, 0, 1)) }
func Yesterday(now time.Time) string { return Key(now.AddDate(0, 0, -1)) }
func NextWeek(now time.Time) string  { return Key(now.AddDate(0, 0, 7)) }

// Parse turns a key into midnight of that day in loc.
func Parse(key string, loc *time.Location) (time.Time, error) {
	if len(key) != len(Layout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	t, err := time.ParseInLocation(Layout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	return t, nil
}

// Valid reports whether key is a well-formed date key.
func Valid(key string) bool {
	_, err := Parse(key, time.UTC)
	return err == nil
}

// AddDays shifts a key by n calendar days.
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key, time.UTC)
	if err != nil {
		return "", err
	}
	return Key(t.AddDate(0, 0, n)), nil
}

// Resolve maps the schedule shortcuts used by task forms onto a key.
// Anything else must already be a date key.
func Resolve(choice string, now time.Time) (string, error) {
	switch choice {
	case "today":
		return Today(now), nil
	case "tomorrow":
		return Tomorrow(now), nil
	case "next-week":
		return NextWeek(now), nil
	}
	if !Valid(choice) {
		return "", fmt.Errorf("%w: %q", ErrMalformedKey, choice)
	}
	return choice, nil
}

// RequirePast rejects keys that are today or later. Used by views that only
// browse history.
func RequirePast(key, today string) error {
	if !Valid(key) {
		return fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	if key >= today {
		return fmt.Errorf("%w: %s", ErrNotInPast, key)
	}
	return nil
}

// MonthBounds returns [first day 00:00, first day of next month 00:00) in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// ParseMonth reads a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed month %q: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// Week returns seven consecutive keys starting at key.
func Week(key string) ([]string, error) {
	start, err := Parse(key, time.UTC)
	if err != nil {
		return nil, err
	}
	out := make([]string, 7)
	for i := range out {
		out[i] = Key(start.AddDate(0, 0, i))
	}
	return out, nil
}
