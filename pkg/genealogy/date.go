package genealogy

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// unixEpochOrdinal is the ordinal of 1970-01-01 (0001-01-01 is day 1).
const unixEpochOrdinal = 719163

// Date is an ordinal day number. Estimated marks dates filled in by an
// [Estimator] rather than read from the source.
type Date struct {
	Ordinal   int  `json:"ordinal"`
	Estimated bool `json:"estimated,omitempty"`
}

// Year returns the calendar year of the date.
func (d Date) Year() int { return OrdinalYear(d.Ordinal) }

// String formats the date as YYYY-MM-DD, prefixed with "~" when estimated.
func (d Date) String() string {
	s := OrdinalTime(d.Ordinal).Format("2006-01-02")
	if d.Estimated {
		return "~" + s
	}
	return s
}

// Ordinal converts a calendar date to its ordinal day number.
func Ordinal(year int, month time.Month, day int) int {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix()/86400) + unixEpochOrdinal
}

// YearOrdinal returns the ordinal of January 1st of year.
func YearOrdinal(year int) int { return Ordinal(year, time.January, 1) }

// OrdinalTime converts an ordinal day number back to a UTC time.
func OrdinalTime(ord int) time.Time {
	return time.Unix(int64(ord-unixEpochOrdinal)*86400, 0).UTC()
}

// OrdinalYear returns the calendar year containing ord.
func OrdinalYear(ord int) int { return OrdinalTime(ord).Year() }

// AddYears moves ord by whole calendar years, keeping month and day. A
// February 29th that lands in a common year becomes March 1st.
func AddYears(ord, years int) int {
	t := OrdinalTime(ord).AddDate(years, 0, 0)
	return int(t.Unix()/86400) + unixEpochOrdinal
}

// qualifiers are GEDCOM date modifiers that are stripped before parsing.
var qualifiers = []string{"ABT", "ABOUT", "EST", "CAL", "BEF", "AFT", "CA", "C."}

// ParseDate parses "YYYY", "YYYY-MM" or "YYYY-MM-DD", optionally preceded by a
// GEDCOM qualifier such as "ABT" or "~". Qualified dates are marked estimated.
// Missing month or day default to the first.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	estimated := false
	if strings.HasPrefix(s, "~") {
		s, estimated = strings.TrimSpace(s[1:]), true
	}
	upper := strings.ToUpper(s)
	for _, q := range qualifiers {
		if strings.HasPrefix(upper, q+" ") {
			s, estimated = strings.TrimSpace(s[len(q):]), true
			break
		}
	}

	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	fields := [3]int{0, 1, 1}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		fields[i] = n
	}
	if fields[1] < 1 || fields[1] > 12 || fields[2] < 1 || fields[2] > 31 {
		return Date{}, fmt.Errorf("invalid date %q: month or day out of range", s)
	}
	return Date{Ordinal: Ordinal(fields[0], time.Month(fields[1]), fields[2]), Estimated: estimated}, nil
}
