// internal/match/duration.go
package match

import (
	"strings"
	"time"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Status-duration resolver: "ticket has been in <status> for N hours".
 *
 * The field key encodes the target status as status.hours.<status_name>.
 * Evaluation resolves an anchor timestamp T and tests it against now N:
 *
 *   is:           T within the 1-hour window [N - value*h - 1h, N - value*h]
 *   less_than:    T within [N - value*h, N]
 *   greater_than: T earlier than N - value*h
 *
 * Anchor resolution:
 *   new, created                      ticket creation time
 *   assigned_at, last_assigned_at,
 *   last_requester_updated_at         the stored timestamp attribute
 *   updated_at_by_agent_or_requester  the verb window tested independently
 *                                     against last-requester-updated and
 *                                     last-agent-updated, OR-combined; no
 *                                     status-equality check
 *   anything else                     the most recent activity whose action
 *                                     text contains " to <status name>"
 *                                     (case-insensitive, underscores as
 *                                     spaces), ANDed with the ticket's
 *                                     CURRENT status equaling status_name
 */

// attributeAnchors are the status names whose anchor comes from a stored
// attribute and which therefore skip the current-status check.
var attributeAnchors = map[string]struct{}{
	"new":                              {},
	"created":                          {},
	"assigned_at":                      {},
	"last_assigned_at":                 {},
	"last_requester_updated_at":        {},
	"updated_at_by_agent_or_requester": {},
}

// statusDurationPredicate builds the predicate for status.hours.<name>.
func statusDurationPredicate(statusName string, verb Verb, hours int) predicate {
	return func(rec Record, ev *evalState) bool {
		t, ok := rec.(*types.Ticket)
		if !ok {
			return false
		}
		now := ev.now

		switch statusName {
		case "new", "created":
			return anchorInWindow(verb, t.CreatedAt, now, hours)
		case "assigned_at":
			return nullableInWindow(verb, t.AssignedAt, now, hours)
		case "last_assigned_at":
			return nullableInWindow(verb, t.LastAssignedAt, now, hours)
		case "last_requester_updated_at":
			return nullableInWindow(verb, t.LastRequesterUpdatedAt, now, hours)
		case "updated_at_by_agent_or_requester":
			return nullableInWindow(verb, t.LastRequesterUpdatedAt, now, hours) ||
				nullableInWindow(verb, t.LastAgentUpdatedAt, now, hours)
		default:
			if !strings.EqualFold(t.Status, statusName) {
				return false
			}
			anchor, found := lastStatusChange(t, statusName)
			if !found {
				return false
			}
			return anchorInWindow(verb, anchor, now, hours)
		}
	}
}

// lastStatusChange finds the most recent status-change activity into
// statusName. The match target is the human-presentation form of the status
// (underscores to spaces, compared lower-cased), preceded by " to ".
func lastStatusChange(t *types.Ticket, statusName string) (time.Time, bool) {
	needle := " to " + strings.ToLower(strings.ReplaceAll(statusName, "_", " "))

	var best time.Time
	found := false
	for _, a := range t.Activities {
		if !strings.Contains(strings.ToLower(a.Action), needle) {
			continue
		}
		if !found || a.CreatedAt.After(best) {
			best = a.CreatedAt
			found = true
		}
	}
	return best, found
}

func nullableInWindow(verb Verb, anchor *time.Time, now time.Time, hours int) bool {
	if anchor == nil {
		return false
	}
	return anchorInWindow(verb, *anchor, now, hours)
}

// anchorInWindow tests anchor T against now N for the given verb.
func anchorInWindow(verb Verb, anchor, now time.Time, hours int) bool {
	offset := time.Duration(hours) * time.Hour

	switch verb {
	case VerbIs:
		lo := now.Add(-offset - time.Hour)
		hi := now.Add(-offset)
		return !anchor.Before(lo) && !anchor.After(hi)
	case VerbLessThan:
		lo := now.Add(-offset)
		return !anchor.Before(lo) && !anchor.After(now)
	case VerbGreaterThan:
		return anchor.Before(now.Add(-offset))
	default:
		return false
	}
}
