// internal/types/rules.go
package types

/*
 * Domain types for rule evaluation.
 *
 * Provides Rule, ConditionGroup and Condition structures consumed by
 * internal/match for compilation and evaluation. Instances are authored and
 * persisted by an external collaborator (rule editor); the engine treats
 * them as immutable snapshots and never writes back.
 *
 * Boolean structure: a Rule is either a flat ordered condition list (saved
 * views, outbound campaign targeting) or an ordered list of ConditionGroups
 * (automations). Join types combine an item with its PREDECESSOR via a left
 * fold with no operator precedence; the first item's join type is ignored.
 * This is contractual: existing persisted rules depend on fold order.
 */

// JoinType is the AND/OR connective between an item and the previous one.
type JoinType string

const (
	AndOperator JoinType = "and_operator"
	OrOperator  JoinType = "or_operator"
)

// Condition is a single field/verb/value test.
//
// Value is the raw authored string; sanitation (case folding, "Unassigned"
// to absent, boolean coercion, "||" token splitting) happens at compile
// time. TagIDs is consulted only by tag-set fields.
type Condition struct {
	Field    string
	Verb     string
	Value    string
	TagIDs   []int64
	JoinType JoinType // connective with the previous condition; ignored on the first
}

// ConditionGroup is an ordered condition sequence with its own connectives.
// ConditionsJoinType combines conditions INSIDE the group (applied between
// every adjacent pair); JoinType combines this group with the previous one.
type ConditionGroup struct {
	Conditions         []Condition
	ConditionsJoinType JoinType
	JoinType           JoinType
}

// Rule is a full boolean expression authored by a user. Exactly one of
// Conditions (flat mode) or Groups (grouped mode) is populated; when both
// are present Groups wins.
type Rule struct {
	Kind       EntityKind
	Conditions []Condition
	Groups     []ConditionGroup
}

// Grouped reports whether the rule uses nested-group mode.
func (r *Rule) Grouped() bool { return len(r.Groups) > 0 }
