// Package zakat computes future Zakat due dates.
//
// A Zakat due date is the annual anniversary, in the Hijri lunar calendar,
// of the day wealth first exceeded the Nisaab threshold. Because the Hijri
// year is ~354-355 days, consecutive due dates drift earlier through the
// Gregorian year.
package zakat

import (
	"errors"
	"fmt"
	"time"

	"github.com/hablullah/go-hijri"
)

// DueDateCount is the number of annual due dates a projection produces.
const DueDateCount = 10

// DateLayout is the wire format for all user-facing dates (ISO 8601).
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when an anchor date cannot be parsed into a
// valid calendar date.
var ErrInvalidDate = errors.New("invalid date")

// HijriDate is a date in the Hijri lunar calendar (Umm al-Qura reckoning).
type HijriDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String renders the date as YYYY-MM-DD in the Hijri calendar.
func (h HijriDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", h.Year, h.Month, h.Day)
}

// ToGregorian converts the Hijri date back to a Gregorian date at UTC
// midnight. Out-of-range days (e.g. day 30 of a 29-day month) are
// normalized by the underlying calendar tables.
func (h HijriDate) ToGregorian() time.Time {
	g := hijri.UmmAlQuraDate{
		Year:  int64(h.Year),
		Month: int64(h.Month),
		Day:   int64(h.Day),
	}.ToGregorian()
	return midnight(g)
}

// ToHijri converts a Gregorian date to its Hijri equivalent.
// Fails only when the date falls outside the Umm al-Qura tables.
func ToHijri(t time.Time) (HijriDate, error) {
	h, err := hijri.CreateUmmAlQuraDate(t)
	if err != nil {
		return HijriDate{}, fmt.Errorf("convert %s to hijri: %w", FormatDate(t), err)
	}
	return HijriDate{
		Year:  int(h.Year),
		Month: int(h.Month),
		Day:   int(h.Day),
	}, nil
}

// ParseDate parses a strict YYYY-MM-DD date string into a UTC midnight time.
// Returns an error wrapping ErrInvalidDate on any malformed or impossible
// date (e.g. "2024-13-40").
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return midnight(t), nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DueDates projects the next DueDateCount annual Zakat due dates from the
// anchor date, as Gregorian dates.
//
// The anchor's Hijri month and day fix the anniversary; the starting Hijri
// year is advanced until the anniversary falls strictly after now's calendar
// day, so the first entry is always in the future even for anchors years in
// the past. For a far-future anchor the starting year is the anchor's own
// Hijri year.
//
// The result has exactly DueDateCount entries, strictly increasing, each one
// lunar year (~354-355 days) after the previous.
func DueDates(anchor, now time.Time) ([]time.Time, error) {
	h, err := ToHijri(anchor)
	if err != nil {
		return nil, err
	}

	today := midnight(now)

	// Advance the Hijri year until the anniversary is strictly in the future.
	// Terminates because Hijri years monotonically pass any fixed date.
	year := h.Year
	for {
		candidate := HijriDate{Year: year, Month: h.Month, Day: h.Day}
		if candidate.ToGregorian().After(today) {
			break
		}
		year++
	}

	dates := make([]time.Time, 0, DueDateCount)
	for i := 0; i < DueDateCount; i++ {
		due := HijriDate{Year: year + i, Month: h.Month, Day: h.Day}
		dates = append(dates, due.ToGregorian())
	}

	return dates, nil
}

// midnight truncates a time to its calendar day at UTC midnight.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
