package rules

import (
	"errors"
	"fmt"
	"strings"

	"pewsched/internal/config"
	"pewsched/pkg/schedule"
)

var ErrAmbiguousNode = errors.New("exactly one of daily, weekly, always, never, constant, all, any, not must be set")

// Build compiles a single node. path prefixes error messages.
func Build(path string, n config.NodeDef) (schedule.Schedule, error) {
	if kinds := setKinds(n); kinds != 1 {
		return nil, fmt.Errorf("%s: %w (found %d)", path, ErrAmbiguousNode, kinds)
	}

	switch {
	case n.Daily != nil:
		start, err := schedule.ParseClock(n.Daily.Start)
		if err != nil {
			return nil, fmt.Errorf("%s.daily.start: %w", path, err)
		}
		end, err := schedule.ParseClock(n.Daily.End)
		if err != nil {
			return nil, fmt.Errorf("%s.daily.end: %w", path, err)
		}
		return schedule.NewDaily(start, end), nil

	case strings.TrimSpace(n.Weekly) != "":
		days, err := schedule.ParseDaysOfWeek(n.Weekly)
		if err != nil {
			return nil, fmt.Errorf("%s.weekly: %w", path, err)
		}
		return schedule.NewWeekly(days), nil

	case n.Always:
		return schedule.Always, nil
	case n.Never:
		return schedule.Never, nil
	case n.Constant != nil:
		return schedule.Constant(*n.Constant), nil

	case n.All != nil:
		children, err := buildChildren(path+".all", n.All)
		if err != nil {
			return nil, err
		}
		return schedule.AllOf(children...)

	case n.Any != nil:
		children, err := buildChildren(path+".any", n.Any)
		if err != nil {
			return nil, err
		}
		return schedule.AnyOf(children...)

	default: // n.Not != nil
		child, err := Build(path+".not", *n.Not)
		if err != nil {
			return nil, err
		}
		return schedule.Not(child)
	}
}

func buildChildren(path string, nodes []config.NodeDef) ([]schedule.Schedule, error) {
	out := make([]schedule.Schedule, 0, len(nodes))
	for i, child := range nodes {
		s, err := Build(fmt.Sprintf("%s[%d]", path, i), child)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func setKinds(n config.NodeDef) int {
	count := 0
	for _, set := range []bool{
		n.Daily != nil,
		strings.TrimSpace(n.Weekly) != "",
		n.Always,
		n.Never,
		n.Constant != nil,
		n.All != nil,
		n.Any != nil,
		n.Not != nil,
	} {
		if set {
			count++
		}
	}
	return count
}
