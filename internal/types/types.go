// Package types provides domain models shared across CalmDesk components.
//
// Records here are read-only snapshots at evaluation time: the matching
// engine never mutates them. Association slices (TagIDs, Comments, ...) are
// hydrated either by the caller (event-triggered evaluation right after a
// mutation) or by internal/store (bulk evaluation with batched preloads).
package types

import "time"

// EntityKind selects which field registry applies to a rule.
type EntityKind int

const (
	KindTicket EntityKind = iota
	KindUser
)

// String returns the lower-case kind name used in errors and logs.
func (k EntityKind) String() string {
	switch k {
	case KindTicket:
		return "ticket"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Ticket is a helpdesk ticket with the associations the matching engine can
// touch. Nullable timestamps use pointers; nil means the event never happened.
type Ticket struct {
	ID             int64  `db:"id"`
	OrganizationID int64  `db:"organization_id"`
	Subject        string `db:"subject"`
	Status         string `db:"status"`
	Priority       string `db:"priority"`
	Channel        string `db:"channel"`
	Spam           bool   `db:"spam"`

	AssigneeID     *int64 `db:"assignee_id"`
	GroupID        *int64 `db:"group_id"`
	RequesterID    int64  `db:"requester_id"`
	RequesterEmail string `db:"requester_email"`

	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
	AssignedAt             *time.Time `db:"assigned_at"`
	LastAssignedAt         *time.Time `db:"last_assigned_at"`
	LastRequesterUpdatedAt *time.Time `db:"last_requester_updated_at"`
	LastAgentUpdatedAt     *time.Time `db:"last_agent_updated_at"`

	TagIDs          []int64
	Comments        []Comment
	Activities      []Activity
	SurveyResponses []SurveyResponse
	FieldResponses  []FieldResponse
}

// EntityKind implements the matching engine's Record contract.
func (t *Ticket) EntityKind() EntityKind { return KindTicket }

// User is an end user, the target of outbound campaign rules.
type User struct {
	ID             int64     `db:"id"`
	OrganizationID int64     `db:"organization_id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	Role           string    `db:"role"`
	Language       string    `db:"language"`
	Timezone       string    `db:"timezone"`
	CreatedAt      time.Time `db:"created_at"`

	TagIDs []int64
}

// EntityKind implements the matching engine's Record contract.
func (u *User) EntityKind() EntityKind { return KindUser }

// Comment is a ticket comment. The ticket description is modeled as the
// initial comment flagged IsDescription, matching the storage schema.
type Comment struct {
	ID            int64     `db:"id"`
	TicketID      int64     `db:"ticket_id"`
	Body          string    `db:"body"`
	IsDescription bool      `db:"is_description"`
	CreatedAt     time.Time `db:"created_at"`
}

// Activity is an audit-log entry recorded against a ticket. Status changes
// produce actions like "changed status from Open to Pending".
type Activity struct {
	ID        int64     `db:"id"`
	TicketID  int64     `db:"ticket_id"`
	Action    string    `db:"action"`
	CreatedAt time.Time `db:"created_at"`
}

// SurveyResponse is a satisfaction survey answer attached to a ticket.
// ScaleChoice is a slug such as "happy", "neutral" or "unhappy".
type SurveyResponse struct {
	ID          int64     `db:"id"`
	TicketID    int64     `db:"ticket_id"`
	ScaleChoice string    `db:"scale_choice"`
	CreatedAt   time.Time `db:"created_at"`
}

// FieldResponse is a custom-field answer on a ticket. Value always holds the
// free-text form; OptionID is set additionally when the field is a
// single/multi-select and the answer references a predefined option.
type FieldResponse struct {
	ID       int64     `db:"id"`
	TicketID int64     `db:"ticket_id"`
	FieldID  int64     `db:"field_id"`
	Value    string    `db:"value"`
	OptionID *OptionID `db:"option_id"`
}

// Schedule is a business-hours configuration: a weekly set of active windows.
type Schedule struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Entries []ScheduleEntry
}

// ScheduleEntry is one active window. From and To are seconds since midnight;
// the window is half-open [From, To). Only time-of-day is ever compared.
type ScheduleEntry struct {
	ID         int64        `db:"id"`
	ScheduleID int64        `db:"schedule_id"`
	Day        time.Weekday `db:"day"`
	From       int          `db:"from_sec"`
	To         int          `db:"to_sec"`
}

// SecondsOfDay converts a timestamp to its seconds-since-midnight component.
func SecondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
