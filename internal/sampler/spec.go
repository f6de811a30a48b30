package sampler

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeSpec turns a tick spec into a robfig/cron spec.
//
// Supported forms:
//   - Cron: "*/5 * * * *", "0 */5 * * * *", "@hourly", "@every 30s"
//   - Interval duration: "30s", "5m" (becomes "@every 5m")
//
// Optional prefixes "cron:" and "every:" force either reading. Empty input
// yields DefaultSpec.
func NormalizeSpec(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultSpec, nil
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return "", fmt.Errorf("cron spec required after 'cron:'")
		}
		return expr, nil
	case strings.HasPrefix(low, "every:"):
		return every(strings.TrimSpace(s[len("every:"):]))
	}

	// Whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return s, nil
	}
	if _, err := time.ParseDuration(s); err == nil {
		return every(s)
	}
	return "", fmt.Errorf("invalid spec %q (use cron like '*/5 * * * *' or a duration like '30s')", raw)
}

func every(v string) (string, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return "", fmt.Errorf("invalid interval %q (use a Go duration like '30s' or '5m')", v)
	}
	if d <= 0 {
		return "", fmt.Errorf("interval must be > 0")
	}
	return "@every " + d.String(), nil
}
