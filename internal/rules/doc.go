// Package rules compiles named schedule definitions from the config file
// into schedule.Schedule values and evaluates them as a set.
//
// A rule is a tree: leaves are daily ranges, weekday sets and constants;
// inner nodes are all (AND), any (OR) and not. Build reports errors with
// the config path of the offending node, e.g. "rules[1].schedule.all[0]".
package rules
