// internal/match/sanitize.go
package match

import "strings"

// sanitized is a condition value after input sanitation: case-folded, the
// "Unassigned" sentinel mapped to absent, boolean-looking strings coerced,
// and "||"-separated token lists split. num is filled in by compilation for
// verbs that compare integers.
type sanitized struct {
	raw    string   // case-folded value
	tokens []string // raw split on "||", trimmed, empties dropped
	absent bool     // empty or "unassigned": match records lacking the attribute
	flag   bool     // boolean coercion result for boolean-domain fields
	num    int      // parsed integer for ordering/temporal verbs
}

const tokenSeparator = "||"

// sanitizeValue normalizes an authored condition value for the given domain.
func sanitizeValue(domain ValueDomain, raw string) sanitized {
	v := strings.ToLower(strings.TrimSpace(raw))
	s := sanitized{raw: v}

	if v == "" || v == "unassigned" {
		s.absent = true
		s.raw = ""
	}

	if domain == DomainBool {
		s.flag = v == "true" || v == "1"
	}

	for _, tok := range strings.Split(v, tokenSeparator) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			s.tokens = append(s.tokens, tok)
		}
	}

	return s
}
