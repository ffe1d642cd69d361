// Package store implements the bulk side of the dual evaluator: loading a
// scoped base collection, preloading exactly the relations a compiled rule
// requires, and filtering with the same predicates the per-record path runs.
//
// Join deduplication: the rule's JoinSet is a union over all conditions, so
// a relation is preloaded once no matter how many conditions touch it, and
// preloads land in per-record slices instead of SQL join rows. Result sets
// are therefore duplicate-free by construction, satisfying the equivalence
// invariant with MatchesRecord. Result order follows the base query; callers
// add their own sort.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/calmdesk/calmdesk/internal/core/db"
	"github.com/calmdesk/calmdesk/internal/match"
	"github.com/calmdesk/calmdesk/internal/types"
)

// Store runs bulk rule evaluation against the database.
type Store struct {
	q *db.Queries

	// Now is the evaluation time source; tests pin it. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Store over an open database connection.
func New(conn *sqlx.DB) (*Store, error) {
	q, err := db.LoadQueries(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return &Store{q: q, Now: time.Now}, nil
}

// MatchingTickets evaluates a ticket rule over an organization's tickets.
func (s *Store) MatchingTickets(ctx context.Context, rule *match.CompiledRule, orgID int64) ([]*types.Ticket, error) {
	if rule.Kind != types.KindTicket {
		return nil, fmt.Errorf("%w: rule kind %s", types.ErrKindMismatch, rule.Kind)
	}

	var rows []types.Ticket
	if err := s.q.Select(ctx, "tickets-by-org", &rows, orgID); err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	tickets := make([]*types.Ticket, len(rows))
	ids := make([]int64, len(rows))
	byID := make(map[int64]*types.Ticket, len(rows))
	for i := range rows {
		t := &rows[i]
		tickets[i] = t
		ids[i] = t.ID
		byID[t.ID] = t
	}

	joins := rule.Joins()
	if joins.Has(match.JoinTags) {
		if err := s.preloadTicketTags(ctx, byID, ids); err != nil {
			return nil, err
		}
	}
	if joins.Has(match.JoinComments) {
		if err := s.preloadComments(ctx, byID, ids); err != nil {
			return nil, err
		}
	}
	if joins.Has(match.JoinActivities) {
		if err := s.preloadActivities(ctx, byID, ids); err != nil {
			return nil, err
		}
	}
	if joins.Has(match.JoinSurveys) {
		if err := s.preloadSurveyResponses(ctx, byID, ids); err != nil {
			return nil, err
		}
	}
	if joins.Has(match.JoinFieldResponses) {
		if err := s.preloadFieldResponses(ctx, byID, ids); err != nil {
			return nil, err
		}
	}

	hours, err := s.schedulesFor(ctx, rule.ScheduleIDs())
	if err != nil {
		return nil, err
	}

	ev := match.NewEvaluator(s.Now, hours)
	return ev.MatchingTickets(rule, tickets), nil
}

// MatchingUsers evaluates a user rule over an organization's users, the
// outbound campaign targeting path.
func (s *Store) MatchingUsers(ctx context.Context, rule *match.CompiledRule, orgID int64) ([]*types.User, error) {
	if rule.Kind != types.KindUser {
		return nil, fmt.Errorf("%w: rule kind %s", types.ErrKindMismatch, rule.Kind)
	}

	var rows []types.User
	if err := s.q.Select(ctx, "users-by-org", &rows, orgID); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	users := make([]*types.User, len(rows))
	ids := make([]int64, len(rows))
	byID := make(map[int64]*types.User, len(rows))
	for i := range rows {
		u := &rows[i]
		users[i] = u
		ids[i] = u.ID
		byID[u.ID] = u
	}

	if rule.Joins().Has(match.JoinTags) {
		var taggings []tagging
		if err := s.q.SelectIn(ctx, "user-taggings-by-users", &taggings, ids); err != nil {
			return nil, fmt.Errorf("failed to load user taggings: %w", err)
		}
		for _, tg := range taggings {
			if u, ok := byID[tg.RecordID]; ok {
				u.TagIDs = append(u.TagIDs, tg.TagID)
			}
		}
	}

	ev := match.NewEvaluator(s.Now, nil)
	return ev.MatchingUsers(rule, users), nil
}

// tagging is a scan target for the polymorphic taggings table.
type tagging struct {
	RecordID int64 `db:"record_id"`
	TagID    int64 `db:"tag_id"`
}

func (s *Store) preloadTicketTags(ctx context.Context, byID map[int64]*types.Ticket, ids []int64) error {
	var taggings []tagging
	if err := s.q.SelectIn(ctx, "ticket-taggings-by-tickets", &taggings, ids); err != nil {
		return fmt.Errorf("failed to load taggings: %w", err)
	}
	for _, tg := range taggings {
		if t, ok := byID[tg.RecordID]; ok {
			t.TagIDs = append(t.TagIDs, tg.TagID)
		}
	}
	return nil
}

func (s *Store) preloadComments(ctx context.Context, byID map[int64]*types.Ticket, ids []int64) error {
	var comments []types.Comment
	if err := s.q.SelectIn(ctx, "comments-by-tickets", &comments, ids); err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}
	for _, c := range comments {
		if t, ok := byID[c.TicketID]; ok {
			t.Comments = append(t.Comments, c)
		}
	}
	return nil
}

func (s *Store) preloadActivities(ctx context.Context, byID map[int64]*types.Ticket, ids []int64) error {
	var activities []types.Activity
	if err := s.q.SelectIn(ctx, "activities-by-tickets", &activities, ids); err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}
	for _, a := range activities {
		if t, ok := byID[a.TicketID]; ok {
			t.Activities = append(t.Activities, a)
		}
	}
	return nil
}

func (s *Store) preloadSurveyResponses(ctx context.Context, byID map[int64]*types.Ticket, ids []int64) error {
	var responses []types.SurveyResponse
	if err := s.q.SelectIn(ctx, "survey-responses-by-tickets", &responses, ids); err != nil {
		return fmt.Errorf("failed to load survey responses: %w", err)
	}
	for _, r := range responses {
		if t, ok := byID[r.TicketID]; ok {
			t.SurveyResponses = append(t.SurveyResponses, r)
		}
	}
	return nil
}

func (s *Store) preloadFieldResponses(ctx context.Context, byID map[int64]*types.Ticket, ids []int64) error {
	var responses []types.FieldResponse
	if err := s.q.SelectIn(ctx, "field-responses-by-tickets", &responses, ids); err != nil {
		return fmt.Errorf("failed to load field responses: %w", err)
	}
	for _, r := range responses {
		if t, ok := byID[r.TicketID]; ok {
			t.FieldResponses = append(t.FieldResponses, r)
		}
	}
	return nil
}

// schedulesFor preloads the business-hours configurations a rule references
// into an in-memory HoursSource. Ids the database does not know stay absent,
// which the engine resolves to never-match.
func (s *Store) schedulesFor(ctx context.Context, ids []int64) (match.ScheduleMap, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var schedules []types.Schedule
	if err := s.q.SelectIn(ctx, "business-hours-by-ids", &schedules, ids); err != nil {
		return nil, fmt.Errorf("failed to load business hours: %w", err)
	}
	if len(schedules) == 0 {
		return match.ScheduleMap{}, nil
	}

	m := make(match.ScheduleMap, len(schedules))
	scheduleIDs := make([]int64, 0, len(schedules))
	for i := range schedules {
		m[schedules[i].ID] = &schedules[i]
		scheduleIDs = append(scheduleIDs, schedules[i].ID)
	}

	var entries []types.ScheduleEntry
	if err := s.q.SelectIn(ctx, "business-hours-entries-by-schedules", &entries, scheduleIDs); err != nil {
		return nil, fmt.Errorf("failed to load business hours entries: %w", err)
	}
	for _, e := range entries {
		if sched, ok := m[e.ScheduleID]; ok {
			sched.Entries = append(sched.Entries, e)
		}
	}

	return m, nil
}
