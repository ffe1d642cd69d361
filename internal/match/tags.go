// internal/match/tags.go
package match

import "github.com/calmdesk/calmdesk/internal/types"

/*
 * Tag-set resolver.
 *
 * Records own a set of tag ids via a many-to-many association; the condition
 * carries the wanted ids in Condition.TagIDs.
 *
 *   contains_any_of:  record's tag set intersects the wanted set
 *   contains_all_of:  record holds every wanted id
 *   contains_none_of: record has no taggings at all, OR none of its taggings
 *                     is in the wanted set. This is the complement of
 *                     contains_any_of, NOT of contains_all_of: a ticket
 *                     tagged only with an unrelated id still matches.
 */

// recordTagIDs extracts the tag-id set from either record kind.
func recordTagIDs(rec Record) []int64 {
	switch r := rec.(type) {
	case *types.Ticket:
		return r.TagIDs
	case *types.User:
		return r.TagIDs
	default:
		return nil
	}
}

// tagPredicate builds the predicate for a tag-set condition.
func tagPredicate(verb Verb, want []int64) predicate {
	wanted := make(map[int64]struct{}, len(want))
	for _, id := range want {
		wanted[id] = struct{}{}
	}

	anyOf := func(rec Record) bool {
		for _, id := range recordTagIDs(rec) {
			if _, ok := wanted[id]; ok {
				return true
			}
		}
		return false
	}

	switch verb {
	case VerbContainsAnyOf:
		return func(rec Record, _ *evalState) bool {
			return anyOf(rec)
		}
	case VerbContainsAllOf:
		return func(rec Record, _ *evalState) bool {
			have := make(map[int64]struct{})
			for _, id := range recordTagIDs(rec) {
				if _, ok := wanted[id]; ok {
					have[id] = struct{}{}
				}
			}
			return len(have) == len(wanted)
		}
	case VerbContainsNoneOf:
		return func(rec Record, _ *evalState) bool {
			if len(recordTagIDs(rec)) == 0 {
				return true
			}
			return !anyOf(rec)
		}
	default:
		return neverMatch
	}
}
