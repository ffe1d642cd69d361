// internal/match/verbs.go
package match

import (
	"fmt"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Condition verbs.
 *
 * Verbs are a typed enum with switch dispatch rather than name-based lookup,
 * so adding a verb without handling it in every resolver is a compile-time
 * visible gap instead of a runtime miss.
 *
 * Families:
 *   - Equality: is, is_not (case-insensitive on string fields)
 *   - Containment: contains, does_not_contain, starts_with, ends_with,
 *     contains_any_of, contains_all_of, contains_none_of ("||"-separated
 *     token lists for the any/all/none variants)
 *   - Ordering: less_than, greater_than (integer comparison; text fields
 *     cast before comparing)
 *   - Temporal: during, not_during, any_time (business-hours resolver only)
 *
 * any_time is a sentinel: an unconditional true predicate meaning "no
 * filtering on this field".
 */

// Verb is the comparison operator of a Condition.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbIs
	VerbIsNot
	VerbContains
	VerbDoesNotContain
	VerbStartsWith
	VerbEndsWith
	VerbContainsAnyOf
	VerbContainsAllOf
	VerbContainsNoneOf
	VerbLessThan
	VerbGreaterThan
	VerbDuring
	VerbNotDuring
	VerbAnyTime
)

var verbNames = map[Verb]string{
	VerbIs:             "is",
	VerbIsNot:          "is_not",
	VerbContains:       "contains",
	VerbDoesNotContain: "does_not_contain",
	VerbStartsWith:     "starts_with",
	VerbEndsWith:       "ends_with",
	VerbContainsAnyOf:  "contains_any_of",
	VerbContainsAllOf:  "contains_all_of",
	VerbContainsNoneOf: "contains_none_of",
	VerbLessThan:       "less_than",
	VerbGreaterThan:    "greater_than",
	VerbDuring:         "during",
	VerbNotDuring:      "not_during",
	VerbAnyTime:        "any_time",
}

var verbsByName = func() map[string]Verb {
	m := make(map[string]Verb, len(verbNames))
	for v, name := range verbNames {
		m[name] = v
	}
	return m
}()

// ParseVerb converts an authored verb string to its enum value.
func ParseVerb(s string) (Verb, error) {
	v, ok := verbsByName[s]
	if !ok {
		return VerbUnknown, fmt.Errorf("%w: %q", types.ErrUnknownVerb, s)
	}
	return v, nil
}

// String returns the authored form of the verb.
func (v Verb) String() string {
	if name, ok := verbNames[v]; ok {
		return name
	}
	return "unknown"
}

// Negative reports whether the verb asserts absence. The full-text resolver
// folds negative verbs across subject/body with AND instead of OR.
func (v Verb) Negative() bool {
	switch v {
	case VerbIsNot, VerbDoesNotContain, VerbContainsNoneOf:
		return true
	default:
		return false
	}
}
