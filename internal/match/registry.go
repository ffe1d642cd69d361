// internal/match/registry.go
package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calmdesk/calmdesk/internal/types"
)

/*
 * Field registry.
 *
 * Maps (entity kind, field key) to a FieldDescriptor: the field's value
 * domain, how it resolves (direct attribute, related join, aggregate,
 * computed), its legal verb set, and the relation preloads it needs.
 *
 * Pure lookup/validation; no side effects. The registry is also the single
 * authority the rule editor consults through ValidateVerb, so authoring-time
 * and evaluation-time legality can never drift apart.
 *
 * Ticket fields with the dynamic "status.hours.<status_name>" prefix share
 * one descriptor; the status name is extracted at compile time.
 */

// ValueDomain classifies what kind of value a field holds.
type ValueDomain int

const (
	DomainString ValueDomain = iota
	DomainNumber
	DomainEnum
	DomainBool
	DomainTagSet
	DomainDerived
)

// Resolution describes how a field's value is obtained from a record.
type Resolution int

const (
	ResolveAttribute Resolution = iota
	ResolveJoin
	ResolveAggregate
	ResolveComputed
)

// fieldClass selects which resolver builds the field's predicate.
type fieldClass int

const (
	classScalar fieldClass = iota
	classTags
	classFullText
	classCustomField
	classFeedback
	classHours
	classStatusDuration
)

// FieldDescriptor is a registry entry for one field key.
type FieldDescriptor struct {
	Domain     ValueDomain
	Resolution Resolution
	Verbs      []Verb
	Joins      JoinSet

	class fieldClass
	get   func(Record) (string, bool) // scalar attribute access; nil for specialized classes
}

// Allows reports whether the verb is legal for this field.
func (d FieldDescriptor) Allows(v Verb) bool {
	for _, allowed := range d.Verbs {
		if allowed == v {
			return true
		}
	}
	return false
}

// StatusHoursPrefix introduces the dynamic status-duration fields, e.g.
// "status.hours.pending" with verbs is/less_than/greater_than.
const StatusHoursPrefix = "status.hours."

var equalityVerbs = []Verb{VerbIs, VerbIsNot}

var textVerbs = []Verb{
	VerbIs, VerbIsNot,
	VerbContains, VerbDoesNotContain,
	VerbStartsWith, VerbEndsWith,
	VerbContainsAnyOf, VerbContainsAllOf, VerbContainsNoneOf,
}

func ticketGet(f func(*types.Ticket) (string, bool)) func(Record) (string, bool) {
	return func(rec Record) (string, bool) {
		t, ok := rec.(*types.Ticket)
		if !ok {
			return "", false
		}
		return f(t)
	}
}

func userGet(f func(*types.User) (string, bool)) func(Record) (string, bool) {
	return func(rec Record) (string, bool) {
		u, ok := rec.(*types.User)
		if !ok {
			return "", false
		}
		return f(u)
	}
}

func optID(id *int64) (string, bool) {
	if id == nil {
		return "", false
	}
	return strconv.FormatInt(*id, 10), true
}

var ticketFields = map[string]FieldDescriptor{
	"status": {
		Domain: DomainEnum, Resolution: ResolveAttribute, class: classScalar,
		Verbs: []Verb{VerbIs, VerbIsNot, VerbContainsAnyOf, VerbContainsNoneOf},
		get:   ticketGet(func(t *types.Ticket) (string, bool) { return t.Status, true }),
	},
	"priority": {
		Domain: DomainEnum, Resolution: ResolveAttribute, class: classScalar,
		Verbs: equalityVerbs,
		get:   ticketGet(func(t *types.Ticket) (string, bool) { return t.Priority, true }),
	},
	"channel": {
		Domain: DomainEnum, Resolution: ResolveAttribute, class: classScalar,
		Verbs: equalityVerbs,
		get:   ticketGet(func(t *types.Ticket) (string, bool) { return t.Channel, true }),
	},
	"spam": {
		Domain: DomainBool, Resolution: ResolveAttribute, class: classScalar,
		Verbs: []Verb{VerbIs},
		get: ticketGet(func(t *types.Ticket) (string, bool) {
			return strconv.FormatBool(t.Spam), true
		}),
	},
	"assignee_id": {
		Domain: DomainNumber, Resolution: ResolveAttribute, class: classScalar,
		Verbs: equalityVerbs,
		get:   ticketGet(func(t *types.Ticket) (string, bool) { return optID(t.AssigneeID) }),
	},
	"group_id": {
		Domain: DomainNumber, Resolution: ResolveAttribute, class: classScalar,
		Verbs: equalityVerbs,
		get:   ticketGet(func(t *types.Ticket) (string, bool) { return optID(t.GroupID) }),
	},
	"requester_email": {
		Domain: DomainString, Resolution: ResolveJoin, class: classScalar,
		Verbs: textVerbs,
		get:   ticketGet(func(t *types.Ticket) (string, bool) { return t.RequesterEmail, true }),
	},
	"subject": {
		Domain: DomainString, Resolution: ResolveAttribute, class: classFullText,
		Verbs: textVerbs,
	},
	"description": {
		Domain: DomainDerived, Resolution: ResolveJoin, class: classFullText,
		Verbs: textVerbs, Joins: JoinComments,
	},
	"subject_or_description": {
		Domain: DomainDerived, Resolution: ResolveComputed, class: classFullText,
		Verbs: textVerbs, Joins: JoinComments,
	},
	"comments": {
		Domain: DomainDerived, Resolution: ResolveJoin, class: classFullText,
		Verbs: textVerbs, Joins: JoinComments,
	},
	"latest_comment": {
		Domain: DomainDerived, Resolution: ResolveAggregate, class: classFullText,
		Verbs: textVerbs, Joins: JoinComments,
	},
	"tags": {
		Domain: DomainTagSet, Resolution: ResolveJoin, class: classTags,
		Verbs: []Verb{VerbContainsAnyOf, VerbContainsAllOf, VerbContainsNoneOf},
		Joins: JoinTags,
	},
	"ticket_field": {
		Domain: DomainDerived, Resolution: ResolveJoin, class: classCustomField,
		Verbs: []Verb{
			VerbIs, VerbIsNot,
			VerbContains, VerbDoesNotContain,
			VerbStartsWith, VerbEndsWith,
			VerbLessThan, VerbGreaterThan,
		},
		Joins: JoinFieldResponses,
	},
	"feedback": {
		Domain: DomainDerived, Resolution: ResolveJoin, class: classFeedback,
		Verbs: []Verb{VerbIs},
		Joins: JoinSurveys,
	},
	"business_hours": {
		Domain: DomainDerived, Resolution: ResolveComputed, class: classHours,
		Verbs: []Verb{VerbDuring, VerbNotDuring, VerbAnyTime},
	},
}

// statusHoursField is shared by every status.hours.<name> key.
var statusHoursField = FieldDescriptor{
	Domain: DomainDerived, Resolution: ResolveComputed, class: classStatusDuration,
	Verbs: []Verb{VerbIs, VerbLessThan, VerbGreaterThan},
	Joins: JoinActivities,
}

var userFields = map[string]FieldDescriptor{
	"name": {
		Domain: DomainString, Resolution: ResolveAttribute, class: classScalar,
		Verbs: textVerbs,
		get:   userGet(func(u *types.User) (string, bool) { return u.Name, true }),
	},
	"email": {
		Domain: DomainString, Resolution: ResolveAttribute, class: classScalar,
		Verbs: textVerbs,
		get:   userGet(func(u *types.User) (string, bool) { return u.Email, true }),
	},
	"role": {
		Domain: DomainEnum, Resolution: ResolveAttribute, class: classScalar,
		Verbs: equalityVerbs,
		get:   userGet(func(u *types.User) (string, bool) { return u.Role, true }),
	},
	"language": {
		Domain: DomainEnum, Resolution: ResolveAttribute, class: classScalar,
		Verbs: equalityVerbs,
		get:   userGet(func(u *types.User) (string, bool) { return u.Language, true }),
	},
	"timezone": {
		Domain: DomainEnum, Resolution: ResolveAttribute, class: classScalar,
		Verbs: equalityVerbs,
		get:   userGet(func(u *types.User) (string, bool) { return u.Timezone, true }),
	},
	"tags": {
		Domain: DomainTagSet, Resolution: ResolveJoin, class: classTags,
		Verbs: []Verb{VerbContainsAnyOf, VerbContainsAllOf, VerbContainsNoneOf},
		Joins: JoinTags,
	},
}

// Lookup returns the descriptor for (kind, field) or ErrUnknownField.
func Lookup(kind types.EntityKind, field string) (FieldDescriptor, error) {
	if kind == types.KindTicket && strings.HasPrefix(field, StatusHoursPrefix) &&
		len(field) > len(StatusHoursPrefix) {
		return statusHoursField, nil
	}

	var m map[string]FieldDescriptor
	switch kind {
	case types.KindTicket:
		m = ticketFields
	case types.KindUser:
		m = userFields
	}

	d, ok := m[field]
	if !ok {
		return FieldDescriptor{}, fmt.Errorf("%w: %s %q", types.ErrUnknownField, kind, field)
	}
	return d, nil
}

// ValidateVerb reports whether verb is legal for (kind, field). This is the
// authoring-time check exposed to the rule editor; at evaluation time the
// same lookup decides whether a condition compiles to never-match.
func ValidateVerb(kind types.EntityKind, field, verb string) bool {
	d, err := Lookup(kind, field)
	if err != nil {
		return false
	}
	v, err := ParseVerb(verb)
	if err != nil {
		return false
	}
	return d.Allows(v)
}
