package config

import (
	"reflect"
	"sort"
	"strings"

	logx "pewsched/pkg/logx"
)

// SummarizeConfigChange returns the changed top-level sections, structured
// log fields describing the new values, and the names of rules that were
// added, removed or modified.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Sampler.Enabled != newCfg.Sampler.Enabled ||
		strings.TrimSpace(oldCfg.Sampler.Spec) != strings.TrimSpace(newCfg.Sampler.Spec) ||
		strings.TrimSpace(oldCfg.Sampler.Timezone) != strings.TrimSpace(newCfg.Sampler.Timezone) {
		changed = append(changed, "sampler")
		attrs = append(attrs,
			logx.Bool("sampler.enabled", newCfg.Sampler.Enabled),
			logx.String("sampler.spec", strings.TrimSpace(newCfg.Sampler.Spec)),
			logx.String("sampler.timezone", strings.TrimSpace(newCfg.Sampler.Timezone)),
		)
	}

	oldJ, newJ := derefJournal(oldCfg.Journal), derefJournal(newCfg.Journal)
	if oldJ != newJ {
		changed = append(changed, "journal")
		attrs = append(attrs,
			logx.String("journal.driver", newJ.Driver),
			logx.String("journal.path", newJ.Path),
			logx.Int("journal.rate_per_sec", newJ.RatePerSec),
		)
	}

	rules := diffRules(oldCfg.Rules, newCfg.Rules)
	if len(rules) > 0 {
		changed = append(changed, "rules")
		attrs = append(attrs,
			logx.Int("rules.count", len(newCfg.Rules)),
			logx.String("rules.changed", strings.Join(rules, ",")),
		)
	}

	return changed, attrs, rules
}

func derefJournal(j *JournalConfig) JournalConfig {
	if j == nil {
		return JournalConfig{}
	}
	return *j
}

func diffRules(oldRules, newRules []RuleDef) []string {
	oldByName := make(map[string]RuleDef, len(oldRules))
	for _, r := range oldRules {
		oldByName[r.Name] = r
	}
	seen := make(map[string]bool, len(newRules))
	var out []string
	for _, r := range newRules {
		seen[r.Name] = true
		prev, ok := oldByName[r.Name]
		if !ok || !reflect.DeepEqual(prev, r) {
			out = append(out, r.Name)
		}
	}
	for name := range oldByName {
		if !seen[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
