package schedule

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DaysOfWeek is a set of weekdays on which a weekly schedule is enabled.
// Values combine with bitwise OR.
type DaysOfWeek uint8

// Single-day flags and the common combinations.
const (
	// None matches no day.
	None DaysOfWeek = 0

	Monday    DaysOfWeek = 0x01
	Tuesday   DaysOfWeek = 0x02
	Wednesday DaysOfWeek = 0x04
	Thursday  DaysOfWeek = 0x08
	Friday    DaysOfWeek = 0x10
	Saturday  DaysOfWeek = 0x20
	Sunday    DaysOfWeek = 0x40

	// Weekdays is Monday through Friday.
	Weekdays = Monday | Tuesday | Wednesday | Thursday | Friday
	// Weekend is Saturday and Sunday.
	Weekend = Saturday | Sunday
	// All is every day of the week.
	All = Weekdays | Weekend
)

// isoOrder lists flags Monday first, which is also the order used by String.
var isoOrder = [7]struct {
	flag  DaysOfWeek
	short string
	long  string
}{
	{Monday, "Mon", "monday"},
	{Tuesday, "Tue", "tuesday"},
	{Wednesday, "Wed", "wednesday"},
	{Thursday, "Thu", "thursday"},
	{Friday, "Fri", "friday"},
	{Saturday, "Sat", "saturday"},
	{Sunday, "Sun", "sunday"},
}

// Union returns the set of days present in d or in any of others.
func (d DaysOfWeek) Union(others ...DaysOfWeek) DaysOfWeek {
	for _, o := range others {
		d |= o
	}
	return d
}

// Has reports whether every day in days is also in d.
// Has(None) is false.
func (d DaysOfWeek) Has(days DaysOfWeek) bool {
	return days != None && d&days == days
}

func (d DaysOfWeek) String() string {
	d &= All
	switch d {
	case None:
		return "None"
	case All:
		return "All"
	}
	parts := make([]string, 0, 7)
	for _, it := range isoOrder {
		if d&it.flag != 0 {
			parts = append(parts, it.short)
		}
	}
	return strings.Join(parts, "|")
}

// FlagOf maps a weekday to its single-day flag. Unknown values map to None.
func FlagOf(day time.Weekday) DaysOfWeek {
	switch day {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	default:
		return None
	}
}

// IsScheduledDayOfWeek reports whether day is one of days.
// Weekday values outside Sunday..Saturday are never scheduled.
func IsScheduledDayOfWeek(day time.Weekday, days DaysOfWeek) bool {
	return days&FlagOf(day) != 0
}

// ParseDaysOfWeek parses a comma or pipe separated list of day names.
//
// Accepted tokens (case-insensitive): full or three-letter day names,
// "all", "none", "weekdays" and "weekend".
func ParseDaysOfWeek(raw string) (DaysOfWeek, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return None, fmt.Errorf("days of week required")
	}
	var out DaysOfWeek
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		switch tok {
		case "":
			continue
		case "all", "daily", "everyday":
			out |= All
			continue
		case "none":
			continue
		case "weekdays", "workdays":
			out |= Weekdays
			continue
		case "weekend", "weekends":
			out |= Weekend
			continue
		}
		flag := None
		for _, it := range isoOrder {
			if tok == it.long || tok == strings.ToLower(it.short) {
				flag = it.flag
				break
			}
		}
		if flag == None {
			return None, fmt.Errorf("unknown day of week %q in %q", tok, raw)
		}
		out |= flag
	}
	return out, nil
}

// Weekly is active on the days of the week present in Days.
type Weekly struct {
	Days DaysOfWeek
}

// NewWeekly returns a schedule active on every day in days.
func NewWeekly(days DaysOfWeek) Weekly {
	return Weekly{Days: days}
}

// StateAt reports whether dt falls on one of w.Days. The time of day is
// ignored. Invalid dates such as Feb 30 are never scheduled.
func (w Weekly) StateAt(dt civil.DateTime) bool {
	if !dt.Date.IsValid() {
		return false
	}
	return IsScheduledDayOfWeek(dt.Date.In(time.UTC).Weekday(), w.Days)
}

func (w Weekly) String() string { return "weekly " + w.Days.String() }
