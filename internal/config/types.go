package config

type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Sampler controls the cron tick that re-evaluates rules.
	Sampler SamplerConfig `json:"sampler"`

	// Journal records rule transitions. Omit (or driver "none") to disable.
	Journal *JournalConfig `json:"journal,omitempty"`

	Rules []RuleDef `json:"rules"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SamplerConfig controls how often rules are evaluated.
//
// Spec is a robfig/cron spec (5-field or descriptor such as "@every 30s").
// Timezone is the IANA zone whose wall clock is turned into the civil
// date-time handed to the schedules. Empty means the host's local zone.
type SamplerConfig struct {
	Enabled  bool   `json:"enabled"`
	Spec     string `json:"spec,omitempty"`     // default: "@every 1m"
	Timezone string `json:"timezone,omitempty"` // e.g. "Europe/Rome"
}

// JournalConfig controls transition persistence.
//
// Example:
//
//	"journal": { "driver": "sqlite", "path": "./data/pewsched.db" }
type JournalConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
	RatePerSec  int    `json:"rate_per_sec,omitempty"` // 0 disables throttling
}

// RuleDef names a schedule tree.
type RuleDef struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Schedule    NodeDef `json:"schedule"`
}

// NodeDef is one node of a schedule tree. Exactly one field must be set.
//
//	daily:    { start: "08:00", end: "20:00" }
//	weekly:   "mon,wed" | "weekdays" | "all"
//	always:   true
//	never:    true
//	constant: true|false
//	all:      [ ...nodes ]   (AND, empty list is always active)
//	any:      [ ...nodes ]   (OR, empty list is never active)
//	not:      node
type NodeDef struct {
	Daily    *DailyDef `json:"daily,omitempty"`
	Weekly   string    `json:"weekly,omitempty"`
	Always   bool      `json:"always,omitempty"`
	Never    bool      `json:"never,omitempty"`
	Constant *bool     `json:"constant,omitempty"`
	All      []NodeDef `json:"all,omitempty"`
	Any      []NodeDef `json:"any,omitempty"`
	Not      *NodeDef  `json:"not,omitempty"`
}

type DailyDef struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
