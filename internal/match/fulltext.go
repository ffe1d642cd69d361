// internal/match/fulltext.go
package match

import (
	"strings"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Full-text resolver: case-insensitive substring search over ticket subject
 * and/or comment body text.
 *
 * Field variants select which texts are searched:
 *   subject                 the subject line only
 *   description             bodies of description comments only
 *   subject_or_description  subject plus description bodies
 *   comments                every comment body
 *   latest_comment          the most recent comment body
 *
 * Positive verbs fold across the texts with OR: one matching text is enough.
 * Negative verbs (does_not_contain, contains_none_of, is_not) fold with AND:
 * the condition only matches when EVERY searched text passes. The asymmetry
 * is intentional — "subject_or_description does_not_contain refund" must
 * reject a ticket whose subject is clean but whose body mentions a refund.
 *
 * contains_all_of requires each token to appear in at least one of the
 * searched texts; tokens may be satisfied by different texts.
 */

// fulltextTexts gathers the searched texts for a field variant.
func fulltextTexts(field string, t *types.Ticket) []string {
	switch field {
	case "subject":
		return []string{t.Subject}
	case "description":
		var out []string
		for _, c := range t.Comments {
			if c.IsDescription {
				out = append(out, c.Body)
			}
		}
		return out
	case "subject_or_description":
		out := []string{t.Subject}
		for _, c := range t.Comments {
			if c.IsDescription {
				out = append(out, c.Body)
			}
		}
		return out
	case "comments":
		out := make([]string, 0, len(t.Comments))
		for _, c := range t.Comments {
			out = append(out, c.Body)
		}
		return out
	case "latest_comment":
		found := false
		var latest types.Comment
		for _, c := range t.Comments {
			if !found || c.CreatedAt.After(latest.CreatedAt) {
				latest = c
				found = true
			}
		}
		if !found {
			return nil
		}
		return []string{latest.Body}
	default:
		return nil
	}
}

// fulltextPredicate builds the predicate for a full-text condition.
func fulltextPredicate(field string, verb Verb, val sanitized) predicate {
	return func(rec Record, _ *evalState) bool {
		t, ok := rec.(*types.Ticket)
		if !ok {
			return false
		}

		texts := fulltextTexts(field, t)
		for i, s := range texts {
			texts[i] = strings.ToLower(s)
		}

		if verb == VerbContainsAllOf {
			// Each token must appear somewhere; tokens may hit different texts.
			for _, tok := range val.tokens {
				found := false
				for _, s := range texts {
					if strings.Contains(s, tok) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		}

		if verb.Negative() {
			for _, s := range texts {
				if !stringVerbTest(verb, s, val) {
					return false
				}
			}
			return true
		}

		for _, s := range texts {
			if stringVerbTest(verb, s, val) {
				return true
			}
		}
		return false
	}
}
