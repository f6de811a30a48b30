// Package sampler is the clock that drives rule evaluation.
//
// Schedules are pure functions of a civil date-time; something has to ask
// them the question repeatedly. The sampler does so on a robfig/cron tick:
// it reads the wall clock in the configured zone, converts it to a
// civil.DateTime, evaluates the rule set and reports every rule whose state
// changed since the previous tick (event bus + journal).
//
// # Schedule formats
//
// The tick spec accepts 5-field cron expressions with optional leading
// seconds ("0 */5 * * * *"), descriptors ("@every 30s", "@hourly") and a
// bare Go duration ("30s"), see NormalizeSpec.
package sampler
