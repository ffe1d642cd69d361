// internal/match/customfield.go
package match

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Custom-field resolver.
 *
 * A custom field can be free text or single/multi-select; the response row
 * stores a text value and, for selects, an option reference. Every verb
 * first tests the text value. When the condition value is UUID-shaped the
 * author is targeting a select option, so the predicate widens to
 * (text test) OR (option-id test).
 *
 * less_than/greater_than cast the stored text to an integer before
 * comparing; responses that do not parse never match. The condition matches
 * when ANY of the ticket's responses satisfies the test.
 */

// uuidPattern recognizes option-id shaped condition values. Deliberately
// stricter than uuid.Parse: authored option references are always the
// canonical lower-case hyphenated form.
var uuidPattern = regexp.MustCompile(
	`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// customFieldPredicate builds the predicate for a ticket_field condition.
func customFieldPredicate(verb Verb, val sanitized) predicate {
	probeOption := uuidPattern.MatchString(val.raw)

	return func(rec Record, _ *evalState) bool {
		t, ok := rec.(*types.Ticket)
		if !ok {
			return false
		}
		for _, fr := range t.FieldResponses {
			if fieldResponseTest(verb, fr, val, probeOption) {
				return true
			}
		}
		return false
	}
}

// fieldResponseTest checks one response against the condition.
func fieldResponseTest(verb Verb, fr types.FieldResponse, val sanitized, probeOption bool) bool {
	switch verb {
	case VerbLessThan, VerbGreaterThan:
		n, err := strconv.Atoi(strings.TrimSpace(fr.Value))
		if err != nil {
			return false
		}
		if verb == VerbLessThan {
			return n < val.num
		}
		return n > val.num
	}

	if stringVerbTest(verb, strings.ToLower(fr.Value), val) {
		return true
	}
	if probeOption && fr.OptionID != nil {
		return stringVerbTest(verb, strings.ToLower(string(*fr.OptionID)), val)
	}
	return false
}
