package schedule

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilSchedule is reported when a named schedule argument is nil.
	ErrNilSchedule = errors.New("schedule is nil")
	// ErrNilCollection is reported when a schedule sequence is nil.
	ErrNilCollection = errors.New("schedule collection is nil")
	// ErrNilElement is reported when a collection contains a nil schedule.
	ErrNilElement = errors.New("argument contains one or more nil schedules")
)

// ArgumentError is returned by the combinators when an argument is invalid.
// Param names the offending parameter ("first", "second", "third",
// "schedules" or "seq"); Err is one of the sentinel errors above.
type ArgumentError struct {
	Op    string
	Param string
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("schedule.%s: %s: %v", e.Op, e.Param, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// isNil also catches typed nils such as (*Daily)(nil) or a nil Func.
// Nil slices are left alone: an empty intersection or union is valid.
func isNil(s Schedule) bool {
	if s == nil {
		return true
	}
	switch v := reflect.ValueOf(s); v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func checkArgs(op string, names []string, schedules ...Schedule) error {
	for i, s := range schedules {
		if isNil(s) {
			return &ArgumentError{Op: op, Param: names[i], Err: ErrNilSchedule}
		}
	}
	return nil
}

func checkElements(op, param string, schedules []Schedule) error {
	for _, s := range schedules {
		if isNil(s) {
			return &ArgumentError{Op: op, Param: param, Err: ErrNilElement}
		}
	}
	return nil
}
