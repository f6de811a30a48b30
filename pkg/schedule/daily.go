package schedule

import (
	"fmt"
	"regexp"
	"strconv"

	"cloud.google.com/go/civil"
)

// Daily is active during the same time range of every day.
//
// The range is [Start, End). When End is earlier than Start the range
// wraps past midnight: e.g. Start=20:00, End=10:00 is active from 20:00 to
// midnight and from midnight to 10:00. When Start equals End the schedule
// is never active.
type Daily struct {
	Start civil.Time
	End   civil.Time
}

// NewDaily returns a schedule active from start until end on every day.
func NewDaily(start, end civil.Time) Daily {
	return Daily{Start: start, End: end}
}

// StateAt reports whether the time of day of dt lies in [Start, End),
// wrapping past midnight when End is before Start.
func (d Daily) StateAt(dt civil.DateTime) bool {
	t := dt.Time
	if !d.End.Before(d.Start) {
		return !t.Before(d.Start) && t.Before(d.End)
	}
	return !t.Before(d.Start) || t.Before(d.End)
}

func (d Daily) String() string {
	return fmt.Sprintf("daily %s-%s", d.Start, d.End)
}

var reClock = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})(?::(\d{2}))?\s*$`)

// ParseClock parses a 24h time of day written as HH:MM or HH:MM:SS.
func ParseClock(raw string) (civil.Time, error) {
	m := reClock.FindStringSubmatch(raw)
	if m == nil {
		return civil.Time{}, fmt.Errorf("invalid time of day %q (use HH:MM or HH:MM:SS)", raw)
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	t := civil.Time{Hour: hh, Minute: mm, Second: ss}
	if !t.IsValid() {
		return civil.Time{}, fmt.Errorf("time of day %q out of range", raw)
	}
	return t, nil
}
