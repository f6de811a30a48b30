// Package storage records rule transitions so the daemon can report
// history and avoid re-announcing unchanged states after a restart.
//
// Schedules themselves are never stored; they always come from the config
// file. Drivers:
//   - "file": JSON Lines journal
//   - "sqlite": SQLite database (modernc.org/sqlite, no cgo)
package storage
