// internal/match/feedback.go
package match

import (
	"strings"

	"github.com/calmdesk/calmdesk/internal/types"
)

// feedbackValueAny matches any ticket that has at least one survey response.
const feedbackValueAny = "any"

// feedbackPredicate matches survey responses against a scale-choice slug
// ("happy", "neutral", "unhappy"). Tickets without responses never match;
// the sentinel value "any" matches every ticket that has a response.
func feedbackPredicate(val sanitized) predicate {
	return func(rec Record, _ *evalState) bool {
		t, ok := rec.(*types.Ticket)
		if !ok {
			return false
		}
		if len(t.SurveyResponses) == 0 {
			return false
		}
		if val.raw == feedbackValueAny {
			return true
		}
		for _, r := range t.SurveyResponses {
			if strings.ToLower(r.ScaleChoice) == val.raw {
				return true
			}
		}
		return false
	}
}
