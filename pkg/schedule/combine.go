package schedule

import (
	"iter"
	"slices"

	"cloud.google.com/go/civil"
)

var (
	pairNames   = []string{"first", "second"}
	tripleNames = []string{"first", "second", "third"}
)

// Intersected reports whether both schedules are active at dt.
func Intersected(dt civil.DateTime, first, second Schedule) (bool, error) {
	if err := checkArgs("Intersected", pairNames, first, second); err != nil {
		return false, err
	}
	return first.StateAt(dt) && second.StateAt(dt), nil
}

// Intersected3 reports whether all three schedules are active at dt.
func Intersected3(dt civil.DateTime, first, second, third Schedule) (bool, error) {
	if err := checkArgs("Intersected3", tripleNames, first, second, third); err != nil {
		return false, err
	}
	return first.StateAt(dt) && second.StateAt(dt) && third.StateAt(dt), nil
}

// IntersectedAll reports whether every schedule is active at dt.
// It returns true when no schedules are given.
func IntersectedAll(dt civil.DateTime, schedules ...Schedule) (bool, error) {
	if err := checkElements("IntersectedAll", "schedules", schedules); err != nil {
		return false, err
	}
	return allOf(dt, schedules), nil
}

// IntersectedSeq is IntersectedAll over a sequence. The sequence is drained
// and validated before any schedule is evaluated.
func IntersectedSeq(dt civil.DateTime, seq iter.Seq[Schedule]) (bool, error) {
	schedules, err := collect("IntersectedSeq", seq)
	if err != nil {
		return false, err
	}
	return allOf(dt, schedules), nil
}

// Combined reports whether at least one of the schedules is active at dt.
func Combined(dt civil.DateTime, first, second Schedule) (bool, error) {
	if err := checkArgs("Combined", pairNames, first, second); err != nil {
		return false, err
	}
	return first.StateAt(dt) || second.StateAt(dt), nil
}

// Combined3 reports whether at least one of three schedules is active at dt.
func Combined3(dt civil.DateTime, first, second, third Schedule) (bool, error) {
	if err := checkArgs("Combined3", tripleNames, first, second, third); err != nil {
		return false, err
	}
	return first.StateAt(dt) || second.StateAt(dt) || third.StateAt(dt), nil
}

// CombinedAll reports whether at least one schedule is active at dt.
// It returns false when no schedules are given.
func CombinedAll(dt civil.DateTime, schedules ...Schedule) (bool, error) {
	if err := checkElements("CombinedAll", "schedules", schedules); err != nil {
		return false, err
	}
	return anyOf(dt, schedules), nil
}

// CombinedSeq is CombinedAll over a sequence. The sequence is drained and
// validated before any schedule is evaluated.
func CombinedSeq(dt civil.DateTime, seq iter.Seq[Schedule]) (bool, error) {
	schedules, err := collect("CombinedSeq", seq)
	if err != nil {
		return false, err
	}
	return anyOf(dt, schedules), nil
}

func collect(op string, seq iter.Seq[Schedule]) ([]Schedule, error) {
	if seq == nil {
		return nil, &ArgumentError{Op: op, Param: "seq", Err: ErrNilCollection}
	}
	schedules := slices.Collect(seq)
	if err := checkElements(op, "seq", schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func allOf(dt civil.DateTime, schedules []Schedule) bool {
	for _, s := range schedules {
		if !s.StateAt(dt) {
			return false
		}
	}
	return true
}

func anyOf(dt civil.DateTime, schedules []Schedule) bool {
	for _, s := range schedules {
		if s.StateAt(dt) {
			return true
		}
	}
	return false
}

type intersection []Schedule

func (s intersection) StateAt(dt civil.DateTime) bool { return allOf(dt, s) }

type union []Schedule

func (s union) StateAt(dt civil.DateTime) bool { return anyOf(dt, s) }

type negation struct{ s Schedule }

func (n negation) StateAt(dt civil.DateTime) bool { return !n.s.StateAt(dt) }

// AllOf returns a Schedule that is active when every one of schedules is.
// The slice is copied; an empty AllOf is always active.
func AllOf(schedules ...Schedule) (Schedule, error) {
	if err := checkElements("AllOf", "schedules", schedules); err != nil {
		return nil, err
	}
	return intersection(slices.Clone(schedules)), nil
}

// AnyOf returns a Schedule that is active when any one of schedules is.
// The slice is copied; an empty AnyOf is never active.
func AnyOf(schedules ...Schedule) (Schedule, error) {
	if err := checkElements("AnyOf", "schedules", schedules); err != nil {
		return nil, err
	}
	return union(slices.Clone(schedules)), nil
}

// Not returns a Schedule that is active exactly when s is not.
func Not(s Schedule) (Schedule, error) {
	if isNil(s) {
		return nil, &ArgumentError{Op: "Not", Param: "schedule", Err: ErrNilSchedule}
	}
	return negation{s: s}, nil
}
