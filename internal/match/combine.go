// internal/match/combine.go
package match

import "github.com/calmdesk/calmdesk/internal/types"

/*
 * Group/rule combinator.
 *
 * A left fold with NO operator precedence: start with the first item's
 * predicate, then combine the accumulator with each subsequent item using
 * THAT item's join type. The first item's join type is never consulted.
 *
 * Flat rules fold once over all conditions using each condition's own join
 * type. Grouped rules fold conditions inside each group with the group's
 * ConditionsJoinType (the same connective between every adjacent pair), then
 * fold group results using each group's own join type.
 *
 * Precedence-aware boolean algebra would change which records existing
 * persisted rules match, so the naive fold is contractual.
 */

// combine joins the accumulator with the next predicate using jt. Anything
// other than or_operator combines with AND.
func combine(acc, next predicate, jt types.JoinType) predicate {
	if jt == types.OrOperator {
		return func(rec Record, ev *evalState) bool {
			return acc(rec, ev) || next(rec, ev)
		}
	}
	return func(rec Record, ev *evalState) bool {
		return acc(rec, ev) && next(rec, ev)
	}
}

// foldFlat folds predicates using per-item join types. joins[i] belongs to
// preds[i]; joins[0] is ignored. Empty input yields nil.
func foldFlat(preds []predicate, joins []types.JoinType) predicate {
	if len(preds) == 0 {
		return nil
	}
	acc := preds[0]
	for i := 1; i < len(preds); i++ {
		acc = combine(acc, preds[i], joins[i])
	}
	return acc
}

// foldUniform folds predicates using one connective between every adjacent
// pair, as a group's ConditionsJoinType does. Empty input yields nil.
func foldUniform(preds []predicate, jt types.JoinType) predicate {
	if len(preds) == 0 {
		return nil
	}
	acc := preds[0]
	for i := 1; i < len(preds); i++ {
		acc = combine(acc, preds[i], jt)
	}
	return acc
}
