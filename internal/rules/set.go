package rules

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"pewsched/internal/config"
	"pewsched/pkg/schedule"
)

// Rule is a compiled, named schedule.
type Rule struct {
	Name        string
	Description string
	Schedule    schedule.Schedule
}

// State is the evaluated state of one rule.
type State struct {
	Rule   string
	Active bool
}

// Set is an immutable, ordered collection of compiled rules.
type Set struct {
	rules []Rule
	index map[string]int
}

// Compile builds every rule. Names must be non-empty and unique.
func Compile(defs []config.RuleDef) (*Set, error) {
	s := &Set{
		rules: make([]Rule, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("rules[%d].name: required", i)
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("rules[%d].name: duplicate rule %q", i, name)
		}
		sched, err := Build(fmt.Sprintf("rules[%d].schedule", i), d.Schedule)
		if err != nil {
			return nil, err
		}
		s.index[name] = len(s.rules)
		s.rules = append(s.rules, Rule{Name: name, Description: d.Description, Schedule: sched})
	}
	return s, nil
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Name
	}
	return out
}

func (s *Set) Get(name string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// Eval evaluates every rule at dt, in definition order.
func (s *Set) Eval(dt civil.DateTime) []State {
	if s == nil {
		return nil
	}
	out := make([]State, len(s.rules))
	for i, r := range s.rules {
		out[i] = State{Rule: r.Name, Active: r.Schedule.StateAt(dt)}
	}
	return out
}
