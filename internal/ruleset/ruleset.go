// Package ruleset loads materialized rule definitions from JSON snapshots.
//
// Rule persistence itself belongs to the rule editor; this package only
// decodes the snapshot the editor exported and lints it against the field
// registry so authoring defects surface before evaluation, not during it.
package ruleset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/calmdesk/calmdesk/internal/match"
	"github.com/calmdesk/calmdesk/internal/types"
)

// NamedRule pairs a rule with its display name.
type NamedRule struct {
	Name string
	Rule types.Rule
}

type fileSpec struct {
	Rules []ruleSpec `json:"rules"`
}

type ruleSpec struct {
	Name       string          `json:"name"`
	Kind       string          `json:"kind"` // "ticket" or "user"
	Conditions []conditionSpec `json:"conditions,omitempty"`
	Groups     []groupSpec     `json:"groups,omitempty"`
}

type groupSpec struct {
	Join           string          `json:"join,omitempty"`
	ConditionsJoin string          `json:"conditions_join,omitempty"`
	Conditions     []conditionSpec `json:"conditions"`
}

type conditionSpec struct {
	Field  string  `json:"field"`
	Verb   string  `json:"verb"`
	Value  string  `json:"value,omitempty"`
	TagIDs []int64 `json:"tag_ids,omitempty"`
	Join   string  `json:"join,omitempty"`
}

// Load reads and parses a rule snapshot file.
func Load(path string) ([]NamedRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a rule snapshot.
func Parse(data []byte) ([]NamedRule, error) {
	var spec fileSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := make([]NamedRule, 0, len(spec.Rules))
	for i, rs := range spec.Rules {
		kind, err := parseKind(rs.Kind)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, rs.Name, err)
		}

		rule := types.Rule{Kind: kind}
		for _, cs := range rs.Conditions {
			rule.Conditions = append(rule.Conditions, cs.condition())
		}
		for _, gs := range rs.Groups {
			group := types.ConditionGroup{
				ConditionsJoinType: parseJoin(gs.ConditionsJoin),
				JoinType:           parseJoin(gs.Join),
			}
			for _, cs := range gs.Conditions {
				group.Conditions = append(group.Conditions, cs.condition())
			}
			rule.Groups = append(rule.Groups, group)
		}

		rules = append(rules, NamedRule{Name: rs.Name, Rule: rule})
	}
	return rules, nil
}

// Lint reports every condition whose field/verb combination the registry
// rejects. Such conditions still evaluate (to never-match); linting makes
// the defect visible at authoring time instead.
func Lint(rule types.Rule) []error {
	var errs []error

	check := func(c types.Condition) {
		if _, err := match.Lookup(rule.Kind, c.Field); err != nil {
			errs = append(errs, err)
			return
		}
		if !match.ValidateVerb(rule.Kind, c.Field, c.Verb) {
			errs = append(errs, fmt.Errorf("%w: %q on field %q", types.ErrVerbNotAllowed, c.Verb, c.Field))
		}
	}

	for _, c := range rule.Conditions {
		check(c)
	}
	for _, g := range rule.Groups {
		for _, c := range g.Conditions {
			check(c)
		}
	}
	return errs
}

func (cs conditionSpec) condition() types.Condition {
	return types.Condition{
		Field:    cs.Field,
		Verb:     cs.Verb,
		Value:    cs.Value,
		TagIDs:   cs.TagIDs,
		JoinType: parseJoin(cs.Join),
	}
}

func parseKind(s string) (types.EntityKind, error) {
	switch s {
	case "ticket", "":
		return types.KindTicket, nil
	case "user":
		return types.KindUser, nil
	default:
		return 0, fmt.Errorf("unknown entity kind %q", s)
	}
}

func parseJoin(s string) types.JoinType {
	if s == string(types.OrOperator) {
		return types.OrOperator
	}
	return types.AndOperator
}
