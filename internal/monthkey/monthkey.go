// Package monthkey defines the canonical calendar-month identifier used to
// bucket transactions. A key has the exact form YYYY-MM with a zero-padded
// month, so plain string comparison of two keys is also chronological
// comparison.
package monthkey

import (
	"errors"
	"fmt"
	"time"
)

// Key identifies a calendar month, e.g. "2024-03".
type Key string

var ErrMalformed = errors.New("malformed month key")

// Current returns the key for the current wall-clock month in the local
// timezone.
func Current() Key {
	return FromTime(time.Now())
}

// FromTime derives the key for the month containing t.
func FromTime(t time.Time) Key {
	return Key(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// ForMonth builds a key from a year and a 1-based month.
func ForMonth(year, month int) Key {
	return Key(fmt.Sprintf("%04d-%02d", year, month))
}

// Parse validates s and returns it as a Key.
func Parse(s string) (Key, error) {
	var year, month int
	if _, err := fmt.Sscanf(s, "%4d-%2d", &year, &month); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if len(s) != 7 || s[4] != '-' || month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return ForMonth(year, month), nil
}

// Time returns midnight local time on the first day of the month, or an
// error for a malformed key.
func (k Key) Time() (time.Time, error) {
	var year, month int
	if _, err := fmt.Sscanf(string(k), "%4d-%2d", &year, &month); err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, k)
	}
	if len(k) != 7 || k[4] != '-' || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, k)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local), nil
}

// Label renders a human-readable "Month Year" label, e.g. "March 2024".
// A malformed key falls back to the raw string rather than failing.
func (k Key) Label() string {
	t, err := k.Time()
	if err != nil {
		return string(k)
	}
	return t.Format("January 2006")
}

// ShortLabel renders the abbreviated month name, e.g. "Mar", used to label
// the 12-month series. Falls back to the raw string for malformed keys.
func (k Key) ShortLabel() string {
	t, err := k.Time()
	if err != nil {
		return string(k)
	}
	return t.Format("Jan")
}

// Year returns the 4-digit year prefix, empty for keys too short to have
// one.
func (k Key) Year() string {
	if len(k) < 4 {
		return ""
	}
	return string(k[:4])
}

// InYear reports whether the key falls within the given calendar year.
func (k Key) InYear(year int) bool {
	return k.Year() == fmt.Sprintf("%04d", year)
}
