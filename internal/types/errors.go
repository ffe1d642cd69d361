package types

import "errors"

// Sentinel errors for CalmDesk operations.
var (
	// ErrUnknownField indicates a condition references a field key absent
	// from the entity kind's registry.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownVerb indicates a verb string with no enum counterpart.
	ErrUnknownVerb = errors.New("unknown verb")

	// ErrVerbNotAllowed indicates a verb outside the field's legal set.
	ErrVerbNotAllowed = errors.New("verb not allowed for field")

	// ErrBadNumericValue indicates an ordering comparison against a value
	// that does not parse as an integer. Surfaced at rule-authoring time;
	// the engine assumes sanitized input at evaluation time.
	ErrBadNumericValue = errors.New("value is not a valid number")

	// ErrScheduleNotFound indicates an unknown business-hours configuration
	// id. Conditions referencing it resolve to never-match.
	ErrScheduleNotFound = errors.New("business hours schedule not found")

	// ErrKindMismatch indicates a record evaluated against a rule authored
	// for a different entity kind.
	ErrKindMismatch = errors.New("record kind does not match rule kind")
)
