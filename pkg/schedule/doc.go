// Package schedule evaluates declarative on/off schedules at a civil
// (zone-less) date-time.
//
// # Overview
//
// A Schedule answers a single question: should the controlled resource be
// active at a given civil.DateTime? The package ships two concrete variants
// and two constants:
//
//   - Daily: active between a start and an end time of day. Start is
//     inclusive, end is exclusive. If End is earlier than Start the window
//     crosses midnight. If they are equal the schedule is never active.
//   - Weekly: active on a set of weekdays (DaysOfWeek flags).
//   - Always / Never: constant true / false. Use Constant to pick one from a
//     bool.
//
// # Combining schedules
//
// Intersected* functions AND schedules together, Combined* functions OR
// them. Each comes in a two-argument, three-argument, variadic and
// iter.Seq form; all forms short-circuit in input order. With no inputs
// Intersected* reports true and Combined* reports false.
//
// Arguments are validated before anything is evaluated. A nil schedule is
// reported as an *ArgumentError naming the offending parameter.
//
// AllOf, AnyOf and Not wrap the same algebra into values that are
// themselves Schedules, so combinations can be nested.
//
// # Concurrency
//
// Every value in this package is immutable after construction. Schedules
// may be evaluated from any number of goroutines without locking.
//
// Time zones are out of scope: callers resolve the wall clock into a
// civil.DateTime (e.g. civil.DateTimeOf(now.In(loc))) before evaluating.
package schedule
