// internal/match/predicate.go
package match

import (
	"strconv"
	"strings"
)

/*
 * Base predicates: equality, containment and ordering over scalar fields.
 *
 * A predicate is a boolean function over one record plus per-evaluation
 * state. Specialized resolvers (tags, custom fields, full text, feedback,
 * business hours, status duration) build their own predicates in their own
 * files; this file covers direct attribute access.
 *
 * String comparison is case-insensitive throughout: condition values are
 * lower-cased at sanitation time and record values are lower-cased here.
 */

// predicate tests one record. ev carries "now" and memoized lookups for the
// duration of a single evaluation call.
type predicate func(rec Record, ev *evalState) bool

// neverMatch is the uniform fallback for invalid conditions: an unknown
// field or illegal verb must narrow the match set to nothing, never silently
// widen it to everything.
func neverMatch(Record, *evalState) bool { return false }

// alwaysMatch implements the any_time sentinel and the empty rule.
func alwaysMatch(Record, *evalState) bool { return true }

// scalarPredicate builds the predicate for a direct-attribute field.
func scalarPredicate(d FieldDescriptor, verb Verb, val sanitized) predicate {
	get := d.get

	if d.Domain == DomainBool {
		// Boolean fields support equality only; val.flag holds the coerced value.
		return func(rec Record, _ *evalState) bool {
			v, ok := get(rec)
			if !ok {
				return false
			}
			return (v == "true") == val.flag
		}
	}

	switch verb {
	case VerbIs:
		if val.absent {
			return func(rec Record, _ *evalState) bool {
				_, ok := get(rec)
				return !ok
			}
		}
		return func(rec Record, _ *evalState) bool {
			v, ok := get(rec)
			return ok && strings.ToLower(v) == val.raw
		}
	case VerbIsNot:
		if val.absent {
			return func(rec Record, _ *evalState) bool {
				_, ok := get(rec)
				return ok
			}
		}
		return func(rec Record, _ *evalState) bool {
			v, ok := get(rec)
			return !ok || strings.ToLower(v) != val.raw
		}
	case VerbLessThan, VerbGreaterThan:
		return func(rec Record, _ *evalState) bool {
			v, ok := get(rec)
			if !ok {
				return false
			}
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return false
			}
			if verb == VerbLessThan {
				return n < val.num
			}
			return n > val.num
		}
	default:
		return func(rec Record, _ *evalState) bool {
			v, ok := get(rec)
			if !ok {
				return false
			}
			return textVerbTest(d.Domain, verb, strings.ToLower(v), val)
		}
	}
}

// textVerbTest applies a containment-family verb to one lower-cased text.
// Enum domains use whole-value membership for the any/none variants instead
// of substring search ("open" must not match "reopened").
func textVerbTest(domain ValueDomain, verb Verb, text string, val sanitized) bool {
	if domain == DomainEnum {
		switch verb {
		case VerbContainsAnyOf:
			return tokenEqualsAny(text, val.tokens)
		case VerbContainsNoneOf:
			return !tokenEqualsAny(text, val.tokens)
		}
	}
	return stringVerbTest(verb, text, val)
}

func tokenEqualsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if text == tok {
			return true
		}
	}
	return false
}

// stringVerbTest applies a verb to one lower-cased text with substring
// semantics. Shared by scalar string fields, the full-text resolver and the
// custom-field resolver.
func stringVerbTest(verb Verb, text string, val sanitized) bool {
	switch verb {
	case VerbIs:
		return text == val.raw
	case VerbIsNot:
		return text != val.raw
	case VerbContains:
		return strings.Contains(text, val.raw)
	case VerbDoesNotContain:
		return !strings.Contains(text, val.raw)
	case VerbStartsWith:
		return strings.HasPrefix(text, val.raw)
	case VerbEndsWith:
		return strings.HasSuffix(text, val.raw)
	case VerbContainsAnyOf:
		for _, tok := range val.tokens {
			if strings.Contains(text, tok) {
				return true
			}
		}
		return false
	case VerbContainsAllOf:
		for _, tok := range val.tokens {
			if !strings.Contains(text, tok) {
				return false
			}
		}
		return true
	case VerbContainsNoneOf:
		for _, tok := range val.tokens {
			if strings.Contains(text, tok) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
