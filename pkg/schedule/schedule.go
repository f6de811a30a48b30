package schedule

import "cloud.google.com/go/civil"

// Schedule determines an on/off state based on a civil date-time.
//
// StateAt must be deterministic and free of side effects.
type Schedule interface {
	StateAt(dt civil.DateTime) bool
}

// Func adapts an ordinary function to a Schedule.
type Func func(dt civil.DateTime) bool

func (f Func) StateAt(dt civil.DateTime) bool { return f(dt) }

type constantSchedule bool

func (c constantSchedule) StateAt(civil.DateTime) bool { return bool(c) }

func (c constantSchedule) String() string {
	if c {
		return "Always"
	}
	return "Never"
}

var (
	// Always is a Schedule whose state is always true.
	Always Schedule = constantSchedule(true)
	// Never is a Schedule whose state is always false.
	Never Schedule = constantSchedule(false)
)

// Constant returns Always if state is true, Never otherwise.
func Constant(state bool) Schedule {
	if state {
		return Always
	}
	return Never
}
