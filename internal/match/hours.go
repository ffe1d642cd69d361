// internal/match/hours.go
package match

import "github.com/calmdesk/calmdesk/internal/types"

/*
 * Business-hours resolver.
 *
 * The condition value identifies a Schedule: a weekly set of active
 * (weekday, from, to) windows. Only the creation time-of-day component is
 * compared, never full timestamps.
 *
 *   during:     creation weekday has a window containing the time of day,
 *               OR-folded across every entry.
 *   not_during: creation weekday has no entry at all, OR it has an entry
 *               whose window excludes the time of day.
 *   any_time:   handled at compile time as the unconditional true predicate.
 *
 * An unknown schedule id resolves to never-match for both during and
 * not_during. Schedule lookups are memoized per evaluation call.
 */

// hoursPredicate builds the predicate for a during/not_during condition.
func hoursPredicate(verb Verb, scheduleID int64) predicate {
	return func(rec Record, ev *evalState) bool {
		t, ok := rec.(*types.Ticket)
		if !ok {
			return false
		}

		sched := ev.schedule(scheduleID)
		if sched == nil {
			return false
		}

		day := t.CreatedAt.Weekday()
		tod := types.SecondsOfDay(t.CreatedAt)

		switch verb {
		case VerbDuring:
			for _, e := range sched.Entries {
				if e.Day == day && tod >= e.From && tod < e.To {
					return true
				}
			}
			return false
		case VerbNotDuring:
			scheduled := false
			for _, e := range sched.Entries {
				if e.Day != day {
					continue
				}
				scheduled = true
				if tod < e.From || tod >= e.To {
					return true
				}
			}
			return !scheduled
		default:
			return false
		}
	}
}
