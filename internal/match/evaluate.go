// internal/match/evaluate.go
package match

import (
	"time"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Dual evaluator.
 *
 * Two entry points that must agree for any rule and record:
 *
 *   MatchesRecord(rule, rec)      one in-memory record, used by inline
 *                                 automation right after a mutation
 *   MatchingTickets/MatchingUsers a whole collection; used by the bulk path
 *                                 after internal/store preloads the joins
 *                                 the rule requires
 *
 * Both run the same compiled predicate, so the equivalence invariant
 * (rec in Matching(rule, coll) iff MatchesRecord(rule, rec)) holds by
 * construction; the property test in equivalence_test.go guards it against
 * future divergence.
 *
 * The evaluator is stateless across calls. Each call captures "now" once so
 * every temporal condition in a rule sees the same instant, and memoizes
 * schedule lookups for the duration of that call only.
 */

// Record is any entity the engine can evaluate.
type Record interface {
	EntityKind() types.EntityKind
}

// HoursSource resolves business-hours configurations by id. Unknown ids
// return ErrScheduleNotFound; the engine turns that into never-match.
type HoursSource interface {
	Schedule(id int64) (*types.Schedule, error)
}

// ScheduleMap is an in-memory HoursSource, used by tests and by the bulk
// path after preloading the schedules a rule references.
type ScheduleMap map[int64]*types.Schedule

// Schedule implements HoursSource.
func (m ScheduleMap) Schedule(id int64) (*types.Schedule, error) {
	s, ok := m[id]
	if !ok {
		return nil, types.ErrScheduleNotFound
	}
	return s, nil
}

// Evaluator evaluates compiled rules against records. Now defaults to
// time.Now; Hours may be nil when no rule uses business hours.
type Evaluator struct {
	Now   func() time.Time
	Hours HoursSource
}

// NewEvaluator creates an evaluator with the given time source and
// business-hours lookup. A nil now falls back to time.Now.
func NewEvaluator(now func() time.Time, hours HoursSource) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{Now: now, Hours: hours}
}

// evalState is the per-call scratch space: the captured evaluation instant
// and memoized schedule lookups. Discarded when the call returns.
type evalState struct {
	now       time.Time
	hours     HoursSource
	schedules map[int64]*types.Schedule
}

func (e *Evaluator) newEval() *evalState {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	return &evalState{
		now:       now,
		hours:     e.Hours,
		schedules: make(map[int64]*types.Schedule),
	}
}

// schedule returns the memoized schedule for id, or nil when the source is
// absent, errors, or does not know the id.
func (ev *evalState) schedule(id int64) *types.Schedule {
	if s, ok := ev.schedules[id]; ok {
		return s
	}
	var s *types.Schedule
	if ev.hours != nil {
		if got, err := ev.hours.Schedule(id); err == nil {
			s = got
		}
	}
	ev.schedules[id] = s
	return s
}

// MatchesRecord evaluates the rule against one record. Records of a
// different entity kind never match.
func (e *Evaluator) MatchesRecord(rule *CompiledRule, rec Record) bool {
	if rule == nil || rec == nil || rec.EntityKind() != rule.Kind {
		return false
	}
	return rule.pred(rec, e.newEval())
}

// MatchingTickets filters a ticket collection, returning a duplicate-free
// result. Order follows the input; callers add their own sort.
func (e *Evaluator) MatchingTickets(rule *CompiledRule, tickets []*types.Ticket) []*types.Ticket {
	if rule == nil || rule.Kind != types.KindTicket {
		return nil
	}
	ev := e.newEval()
	seen := make(map[int64]struct{}, len(tickets))
	var out []*types.Ticket
	for _, t := range tickets {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		if rule.pred(t, ev) {
			out = append(out, t)
		}
	}
	return out
}

// MatchingUsers filters a user collection, returning a duplicate-free result.
func (e *Evaluator) MatchingUsers(rule *CompiledRule, users []*types.User) []*types.User {
	if rule == nil || rule.Kind != types.KindUser {
		return nil
	}
	ev := e.newEval()
	seen := make(map[int64]struct{}, len(users))
	var out []*types.User
	for _, u := range users {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		if rule.pred(u, ev) {
			out = append(out, u)
		}
	}
	return out
}
