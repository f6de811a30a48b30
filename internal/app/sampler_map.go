package app

import (
	"fmt"
	"strings"
	"time"

	"pewsched/internal/rules"
	"pewsched/internal/sampler"
	logx "pewsched/pkg/logx"
)

func mapSamplerConfig(cfg *Config) (sampler.Config, error) {
	if cfg == nil {
		return sampler.Config{}, nil
	}
	sc := cfg.Sampler
	if err := sampler.ValidateSpec(sc.Spec); err != nil {
		return sampler.Config{}, err
	}
	var loc *time.Location
	if tz := strings.TrimSpace(sc.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return sampler.Config{}, fmt.Errorf("sampler.timezone: invalid %q: %w", tz, err)
		}
		loc = l
	}
	return sampler.Config{Enabled: sc.Enabled, Spec: strings.TrimSpace(sc.Spec), Location: loc}, nil
}

func mapLoggingConfig(cfg *Config) logx.Config {
	if cfg == nil {
		return logx.Config{Level: "INFO", Console: true}
	}
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

// validate rejects a config the app could not apply. It is used at startup
// and before a hot reload is committed.
func validate(cfg *Config) (*rules.Set, sampler.Config, error) {
	set, err := rules.Compile(cfg.Rules)
	if err != nil {
		return nil, sampler.Config{}, err
	}
	sc, err := mapSamplerConfig(cfg)
	if err != nil {
		return nil, sampler.Config{}, err
	}
	if _, _, _, err := mapJournalConfig(cfg); err != nil {
		return nil, sampler.Config{}, err
	}
	return set, sc, nil
}
