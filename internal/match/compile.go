// internal/match/compile.go
package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Rule compilation.
 *
 * Compiles a types.Rule into a CompiledRule: one combined predicate, the
 * union of relation preloads the conditions require, and the business-hours
 * schedule ids to resolve.
 *
 * Error policy (uniform across entity kinds and field types):
 *   - Unknown field or illegal verb: the condition compiles to the explicit
 *     never-match predicate. It must not crash evaluation, and it must not
 *     become a silent no-op that widens the match set to "all records".
 *   - Malformed numeric value on an ordering or temporal verb: compilation
 *     returns a caller-visible error. This is an authoring-time defect; the
 *     engine assumes sanitized input at evaluation time.
 *
 * Compilation also threads the acting agent in explicitly: the "me"
 * ownership sentinel on assignee conditions resolves against Options.ActorID
 * rather than any process-wide current-user state.
 */

// Options carries evaluation context fixed at compile time.
type Options struct {
	// ActorID is the acting agent, resolving the "me" ownership sentinel.
	// Zero means no acting agent; "me" conditions then never match.
	ActorID int64
}

// CompiledRule is a rule pre-processed for repeated evaluation. It retains
// no per-evaluation state and is safe for concurrent use.
type CompiledRule struct {
	Kind types.EntityKind

	pred        predicate
	joins       JoinSet
	scheduleIDs []int64
}

// Joins returns the union of relation preloads the rule's conditions need.
func (r *CompiledRule) Joins() JoinSet { return r.joins }

// ScheduleIDs returns the business-hours configuration ids the rule
// references, for preloading before bulk evaluation.
func (r *CompiledRule) ScheduleIDs() []int64 { return r.scheduleIDs }

// Compile validates and pre-processes a rule.
func Compile(rule *types.Rule, opts Options) (*CompiledRule, error) {
	c := &CompiledRule{Kind: rule.Kind}

	if rule.Grouped() {
		groupPreds := make([]predicate, 0, len(rule.Groups))
		groupJoins := make([]types.JoinType, 0, len(rule.Groups))
		for _, g := range rule.Groups {
			preds := make([]predicate, 0, len(g.Conditions))
			for _, cond := range g.Conditions {
				p, err := c.compileCondition(rule.Kind, cond, opts)
				if err != nil {
					return nil, err
				}
				preds = append(preds, p)
			}
			gp := foldUniform(preds, g.ConditionsJoinType)
			if gp == nil {
				// A group without conditions constrains nothing.
				gp = alwaysMatch
			}
			groupPreds = append(groupPreds, gp)
			groupJoins = append(groupJoins, g.JoinType)
		}
		c.pred = foldFlat(groupPreds, groupJoins)
	} else {
		preds := make([]predicate, 0, len(rule.Conditions))
		joins := make([]types.JoinType, 0, len(rule.Conditions))
		for _, cond := range rule.Conditions {
			p, err := c.compileCondition(rule.Kind, cond, opts)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
			joins = append(joins, cond.JoinType)
		}
		c.pred = foldFlat(preds, joins)
	}

	if c.pred == nil {
		// A rule with no conditions filters nothing: a view without filters
		// lists every record. Only INVALID conditions get never-match.
		c.pred = alwaysMatch
	}
	return c, nil
}

// compileCondition turns one condition into a predicate, accumulating the
// rule's join set and schedule ids on the way.
func (c *CompiledRule) compileCondition(kind types.EntityKind, cond types.Condition, opts Options) (predicate, error) {
	d, err := Lookup(kind, cond.Field)
	if err != nil {
		return neverMatch, nil
	}
	verb, err := ParseVerb(cond.Verb)
	if err != nil || !d.Allows(verb) {
		return neverMatch, nil
	}

	val := sanitizeValue(d.Domain, cond.Value)

	// Explicit acting agent replaces the ambient current-user the ownership
	// sentinel used to read.
	if kind == types.KindTicket && cond.Field == "assignee_id" && val.raw == "me" {
		if opts.ActorID == 0 {
			return neverMatch, nil
		}
		val.raw = strconv.FormatInt(opts.ActorID, 10)
		val.absent = false
	}

	c.joins = c.joins.Union(d.Joins)

	switch d.class {
	case classScalar:
		if verb == VerbLessThan || verb == VerbGreaterThan {
			if err := parseConditionInt(&val, cond.Value); err != nil {
				return nil, err
			}
		}
		return scalarPredicate(d, verb, val), nil

	case classTags:
		return tagPredicate(verb, cond.TagIDs), nil

	case classFullText:
		return fulltextPredicate(cond.Field, verb, val), nil

	case classCustomField:
		if verb == VerbLessThan || verb == VerbGreaterThan {
			if err := parseConditionInt(&val, cond.Value); err != nil {
				return nil, err
			}
		}
		return customFieldPredicate(verb, val), nil

	case classFeedback:
		return feedbackPredicate(val), nil

	case classHours:
		if verb == VerbAnyTime {
			return alwaysMatch, nil
		}
		id, err := strconv.ParseInt(val.raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: business hours id %q", types.ErrBadNumericValue, cond.Value)
		}
		c.scheduleIDs = append(c.scheduleIDs, id)
		return hoursPredicate(verb, id), nil

	case classStatusDuration:
		statusName := strings.TrimPrefix(cond.Field, StatusHoursPrefix)
		if err := parseConditionInt(&val, cond.Value); err != nil {
			return nil, err
		}
		return statusDurationPredicate(statusName, verb, val.num), nil

	default:
		return neverMatch, nil
	}
}

func parseConditionInt(val *sanitized, original string) error {
	n, err := strconv.Atoi(val.raw)
	if err != nil {
		return fmt.Errorf("%w: %q", types.ErrBadNumericValue, original)
	}
	val.num = n
	return nil
}
