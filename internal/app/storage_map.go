package app

import (
	"fmt"
	"strings"
	"time"

	"pewsched/internal/storage"
)

// mapJournalConfig turns the journal section into a storage config and the
// write rate limit. enabled is false when the journal is off.
func mapJournalConfig(cfg *Config) (sc storage.Config, ratePerSec int, enabled bool, err error) {
	if cfg == nil || cfg.Journal == nil {
		return storage.Config{}, 0, false, nil
	}
	jc := cfg.Journal
	driver := strings.TrimSpace(jc.Driver)
	if driver == "" || strings.EqualFold(driver, "none") {
		return storage.Config{}, 0, false, nil
	}
	if jc.RatePerSec < 0 {
		return storage.Config{}, 0, false, fmt.Errorf("journal.rate_per_sec must be >= 0")
	}
	path := strings.TrimSpace(jc.Path)

	dl := strings.ToLower(driver)
	switch dl {
	case "file":
		return storage.Config{Driver: "file", Path: path}, jc.RatePerSec, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, 0, false, fmt.Errorf("journal.path is required when journal.driver=sqlite")
		}
		busy, err := parseDurationOrDefault("journal.busy_timeout", jc.BusyTimeout, 1*time.Second)
		if err != nil {
			return storage.Config{}, 0, false, err
		}
		return storage.Config{Driver: dl, Path: path, BusyTimeout: busy}, jc.RatePerSec, true, nil
	default:
		return storage.Config{}, 0, false, fmt.Errorf("unknown journal.driver: %s", driver)
	}
}
