// internal/match/equivalence_test.go
package match

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Property tests for the dual-evaluator equivalence: for any rule and any
 * collection, a record is in MatchingTickets(rule, coll) exactly when
 * MatchesRecord(rule, record) is true. The two paths share one compiled
 * predicate, so this guards against future divergence rather than proving
 * anything deep about today's code.
 */

var propSubjects = []string{
	"refund please",
	"urgent refund request",
	"question about my invoice",
	"chargeback dispute",
	"",
}

var propStatuses = []string{"open", "pending", "waiting_on_customer", "closed"}

// propTicket builds a ticket deterministically from small generated ints.
func propTicket(id int64, subjectIdx, statusIdx, tagMask, ageHours int) *types.Ticket {
	var tags []int64
	for bit := 0; bit < 3; bit++ {
		if tagMask&(1<<bit) != 0 {
			tags = append(tags, int64(bit+1))
		}
	}
	return &types.Ticket{
		ID:        id,
		Status:    propStatuses[statusIdx%len(propStatuses)],
		Priority:  "normal",
		Subject:   propSubjects[subjectIdx%len(propSubjects)],
		TagIDs:    tags,
		CreatedAt: fixedNow.Add(-time.Duration(ageHours) * time.Hour),
	}
}

// propRule builds a two-condition flat rule from generated indices.
func propRule(fieldIdx, verbIdx, valueIdx int, orJoin bool) *types.Rule {
	fields := []string{"subject", "status", "tags", "status.hours.created"}
	verbs := [][]string{
		{"contains", "does_not_contain", "starts_with", "is"},
		{"is", "is_not", "contains_any_of", "contains_none_of"},
		{"contains_any_of", "contains_all_of", "contains_none_of"},
		{"is", "less_than", "greater_than"},
	}
	values := [][]string{
		{"refund", "urgent", "invoice", ""},
		{"open", "pending", "open||closed", "missing"},
		{"", "", ""},
		{"1", "3", "6"},
	}

	f := fieldIdx % len(fields)
	join := types.AndOperator
	if orJoin {
		join = types.OrOperator
	}

	cond := func(shift int) types.Condition {
		v := (verbIdx + shift) % len(verbs[f])
		val := (valueIdx + shift) % len(values[f])
		c := types.Condition{
			Field: fields[f],
			Verb:  verbs[f][v],
			Value: values[f][val],
		}
		if f == 2 {
			c.TagIDs = []int64{int64(val + 1)}
		}
		return c
	}

	first := cond(0)
	second := cond(1)
	second.JoinType = join
	return &types.Rule{Kind: types.KindTicket, Conditions: []types.Condition{first, second}}
}

func TestEvaluatorEquivalence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	ev := testEvaluator(nil)

	properties.Property("collection filtering agrees with per-record matching", prop.ForAll(
		func(fieldIdx, verbIdx, valueIdx int, orJoin bool, seed int) bool {
			rule := propRule(fieldIdx, verbIdx, valueIdx, orJoin)
			compiled, err := Compile(rule, Options{})
			if err != nil {
				// Generated values for numeric fields are always parseable;
				// a compile error here is a real defect.
				t.Errorf("Compile() error = %v, want nil", err)
				return false
			}

			tickets := make([]*types.Ticket, 0, 8)
			for i := 0; i < 8; i++ {
				tickets = append(tickets, propTicket(
					int64(i+1),
					seed+i,
					seed+2*i,
					(seed+i)%8,
					(seed+3*i)%10,
				))
			}

			matched := make(map[int64]bool)
			for _, ticket := range ev.MatchingTickets(compiled, tickets) {
				matched[ticket.ID] = true
			}

			for _, ticket := range tickets {
				if matched[ticket.ID] != ev.MatchesRecord(compiled, ticket) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.Bool(),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestEvaluationNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	ev := testEvaluator(nil)

	properties.Property("arbitrary authored conditions never crash evaluation", prop.ForAll(
		func(field, verb, value string, seed int) bool {
			rule := &types.Rule{
				Kind: types.KindTicket,
				Conditions: []types.Condition{
					{Field: field, Verb: verb, Value: value},
				},
			}
			compiled, err := Compile(rule, Options{})
			if err != nil {
				// Malformed numeric values are rejected at compile time.
				return true
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("evaluation panicked for %q %q %q: %v", field, verb, value, r)
				}
			}()

			ticket := propTicket(1, seed, seed, seed%8, seed%10)
			_ = ev.MatchesRecord(compiled, ticket)
			_ = ev.MatchingTickets(compiled, []*types.Ticket{ticket})
			return true
		},
		gen.OneConstOf("subject", "status", "tags", "business_hours",
			"status.hours.pending", "ticket_field", "feedback", "nonsense"),
		gen.OneConstOf("is", "contains", "contains_any_of", "less_than",
			"during", "any_time", "bogus"),
		gen.OneConstOf("refund", "open||closed", "3", "any", "", "not-a-number"),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
