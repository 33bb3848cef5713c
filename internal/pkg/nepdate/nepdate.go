// Package nepdate converts dates between the Gregorian (AD) and Bikram Sambat
// (BS) calendars. Conversion is table driven and limited to the years in
// monthDays; dates outside that window fail with ErrOutOfRange.
package nepdate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	minYear = 2000
	maxYear = minYear + len(monthDays) - 1

	// Layout is the wire format used for both calendars.
	Layout = "2006/01/02"
)

// epoch is the Gregorian date of BS 2000/01/01.
var epoch = time.Date(1943, time.April, 14, 0, 0, 0, 0, time.UTC)

var (
	ErrMalformed  = errors.New("nepdate: date must match YYYY/MM/DD")
	ErrInvalid    = errors.New("nepdate: no such date")
	ErrOutOfRange = errors.New("nepdate: date outside supported range")
)

var ymdPattern = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})$`)

// Date is a calendar date in Bikram Sambat.
type Date struct {
	Year  int
	Month int // 1 = Baishakh
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// MatchesLayout reports whether s has the exact YYYY/MM/DD shape, without
// checking that it names a real date in either calendar.
func MatchesLayout(s string) bool {
	return ymdPattern.MatchString(s)
}

// ParseBS parses a YYYY/MM/DD Bikram Sambat date. Years outside the table are
// accepted when month and day are plausible; BSToAD rejects them later.
func ParseBS(s string) (Date, error) {
	m := ymdPattern.FindStringSubmatch(s)
	if m == nil {
		return Date{}, ErrMalformed
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 32 {
		return Date{}, ErrInvalid
	}
	return Date{Year: y, Month: mo, Day: d}, nil
}

// ParseAD parses a YYYY/MM/DD Gregorian date in UTC.
func ParseAD(s string) (time.Time, error) {
	if !MatchesLayout(s) {
		return time.Time{}, ErrMalformed
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, ErrInvalid
	}
	return t, nil
}

// FormatAD renders t in the wire layout.
func FormatAD(t time.Time) string {
	return t.Format(Layout)
}

// BSToAD converts a Bikram Sambat date to its Gregorian equivalent (UTC midnight).
func BSToAD(d Date) (time.Time, error) {
	if d.Year < minYear || d.Year > maxYear {
		return time.Time{}, ErrOutOfRange
	}
	if d.Month < 1 || d.Month > 12 {
		return time.Time{}, ErrInvalid
	}
	months := monthDays[d.Year-minYear]
	if d.Day < 1 || d.Day > months[d.Month-1] {
		return time.Time{}, ErrInvalid
	}

	days := 0
	for y := minYear; y < d.Year; y++ {
		days += yearLength(y)
	}
	for m := 0; m < d.Month-1; m++ {
		days += months[m]
	}
	days += d.Day - 1

	return epoch.AddDate(0, 0, days), nil
}

// ADToBS converts a Gregorian date to Bikram Sambat. Only the calendar date
// of t (in its own location) is used.
func ADToBS(t time.Time) (Date, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(epoch) {
		return Date{}, ErrOutOfRange
	}
	remaining := int(day.Sub(epoch).Hours() / 24)

	for y := minYear; y <= maxYear; y++ {
		n := yearLength(y)
		if remaining >= n {
			remaining -= n
			continue
		}
		for m, length := range monthDays[y-minYear] {
			if remaining < length {
				return Date{Year: y, Month: m + 1, Day: remaining + 1}, nil
			}
			remaining -= length
		}
	}
	return Date{}, ErrOutOfRange
}

// Converter exposes the package functions behind a value so callers can
// depend on an interface.
type Converter struct{}

// ADToBS converts a wire-format Gregorian date to a wire-format BS date.
func (Converter) ADToBS(ad string) (string, error) {
	t, err := ParseAD(ad)
	if err != nil {
		return "", err
	}
	d, err := ADToBS(t)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// BSToAD converts a wire-format BS date to a wire-format Gregorian date.
func (Converter) BSToAD(bs string) (string, error) {
	d, err := ParseBS(bs)
	if err != nil {
		return "", err
	}
	t, err := BSToAD(d)
	if err != nil {
		return "", err
	}
	return FormatAD(t), nil
}

func yearLength(y int) int {
	n := 0
	for _, d := range monthDays[y-minYear] {
		n += d
	}
	return n
}
