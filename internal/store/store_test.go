package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/calmdesk/calmdesk/internal/core/db"
	"github.com/calmdesk/calmdesk/internal/match"
	"github.com/calmdesk/calmdesk/internal/types"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// testStore opens an in-memory database, migrates it and seeds a small
// two-organization helpdesk.
func testStore(t *testing.T) *Store {
	t.Helper()

	conn, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// Every pooled connection to :memory: is its own database.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	seed(t, conn)

	s, err := New(conn)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Now = func() time.Time { return testNow }
	return s
}

func seed(t *testing.T, conn *sqlx.DB) {
	t.Helper()

	exec := func(query string, args ...interface{}) {
		if _, err := conn.Exec(query, args...); err != nil {
			t.Fatalf("seed failed: %v\n%s", err, query)
		}
	}

	exec(`INSERT INTO organizations (id, name, created_at) VALUES (1, 'acme', ?), (2, 'other', ?)`,
		testNow, testNow)

	exec(`INSERT INTO users (id, organization_id, name, email, role, created_at) VALUES
		(1, 1, 'Alice', 'alice@example.com', 'end_user', ?),
		(2, 1, 'Bob', 'bob@partner.example', 'end_user', ?),
		(3, 2, 'Eve', 'eve@elsewhere.example', 'end_user', ?)`,
		testNow, testNow, testNow)

	// Monday 2024-03-11 10:00 falls inside the seeded business hours window.
	monday := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 11, 20, 0, 0, 0, time.UTC)

	exec(`INSERT INTO tickets (id, organization_id, subject, status, priority, requester_id, created_at, updated_at) VALUES
		(1, 1, 'Refund for damaged order', 'open', 'urgent', 1, ?, ?),
		(2, 1, 'Question about invoice', 'open', 'normal', 2, ?, ?),
		(3, 1, 'Spam offer', 'closed', 'low', 1, ?, ?),
		(4, 2, 'Refund request in another org', 'open', 'urgent', 3, ?, ?)`,
		monday, monday, monday, monday, evening, evening, monday, monday)

	exec(`INSERT INTO tags (id, organization_id, name) VALUES (1, 1, 'vip'), (2, 1, 'billing')`)
	exec(`INSERT INTO taggings (tag_id, record_type, record_id) VALUES
		(1, 'Ticket', 1),
		(2, 'Ticket', 1),
		(2, 'Ticket', 2),
		(1, 'User', 2)`)

	exec(`INSERT INTO comments (ticket_id, body, is_description, created_at) VALUES
		(1, 'My package arrived broken.', 1, ?),
		(1, 'Any update on this?', 0, ?),
		(2, 'Please resend invoice #42.', 1, ?)`,
		monday, monday.Add(time.Hour), monday)

	exec(`INSERT INTO business_hours (id, organization_id, name) VALUES (7, 1, 'weekdays')`)
	exec(`INSERT INTO business_hours_entries (schedule_id, day, from_sec, to_sec) VALUES
		(7, 1, ?, ?)`, 9*3600, 17*3600)
}

func compileRule(t *testing.T, rule *types.Rule) *match.CompiledRule {
	t.Helper()
	compiled, err := match.Compile(rule, match.Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return compiled
}

func ticketIDs(tickets []*types.Ticket) []int64 {
	ids := make([]int64, len(tickets))
	for i, tk := range tickets {
		ids[i] = tk.ID
	}
	return ids
}

func TestMatchingTickets_SubjectScopedToOrg(t *testing.T) {
	s := testStore(t)

	rule := &types.Rule{
		Kind: types.KindTicket,
		Conditions: []types.Condition{
			{Field: "subject", Verb: "contains", Value: "refund"},
		},
	}
	got, err := s.MatchingTickets(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}

	// Ticket 4 matches the condition but belongs to organization 2.
	if ids := ticketIDs(got); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("MatchingTickets ids = %v, want [1]", ids)
	}
}

func TestMatchingTickets_TagPreload(t *testing.T) {
	s := testStore(t)

	rule := &types.Rule{
		Kind: types.KindTicket,
		Conditions: []types.Condition{
			{Field: "tags", Verb: "contains_any_of", TagIDs: []int64{2}},
		},
	}
	got, err := s.MatchingTickets(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}

	// Tickets 1 and 2 carry the billing tag; ticket 1 carries two tags but
	// must appear once.
	if ids := ticketIDs(got); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("MatchingTickets ids = %v, want [1 2]", ids)
	}
}

func TestMatchingTickets_DescriptionAndLatestComment(t *testing.T) {
	s := testStore(t)

	rule := &types.Rule{
		Kind: types.KindTicket,
		Conditions: []types.Condition{
			{Field: "description", Verb: "contains", Value: "broken"},
		},
	}
	got, err := s.MatchingTickets(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}
	if ids := ticketIDs(got); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("description match ids = %v, want [1]", ids)
	}

	// The follow-up comment is not part of the description.
	rule.Conditions[0].Value = "update"
	got, err = s.MatchingTickets(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("description matched a follow-up comment: %v", ticketIDs(got))
	}

	rule.Conditions[0].Field = "latest_comment"
	got, err = s.MatchingTickets(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}
	if ids := ticketIDs(got); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("latest_comment match ids = %v, want [1]", ids)
	}
}

func TestMatchingTickets_BusinessHours(t *testing.T) {
	s := testStore(t)

	rule := &types.Rule{
		Kind: types.KindTicket,
		Conditions: []types.Condition{
			{Field: "business_hours", Verb: "during", Value: "7"},
		},
	}
	got, err := s.MatchingTickets(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}

	// Ticket 3 was created Monday evening, outside the window.
	if ids := ticketIDs(got); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("during ids = %v, want [1 2]", ids)
	}

	// A schedule id the database does not know never matches.
	rule.Conditions[0].Value = "999"
	got, err = s.MatchingTickets(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown schedule matched tickets: %v", ticketIDs(got))
	}
}

func TestMatchingTickets_AgreesWithPerRecordPath(t *testing.T) {
	s := testStore(t)

	rule := &types.Rule{
		Kind: types.KindTicket,
		Conditions: []types.Condition{
			{Field: "subject", Verb: "contains", Value: "refund"},
			{Field: "tags", Verb: "contains_any_of", TagIDs: []int64{1}, JoinType: types.OrOperator},
		},
	}
	compiled := compileRule(t, rule)

	got, err := s.MatchingTickets(context.Background(), compiled, 1)
	if err != nil {
		t.Fatalf("MatchingTickets failed: %v", err)
	}

	// Every returned ticket is hydrated, so the per-record path must agree.
	ev := match.NewEvaluator(s.Now, nil)
	for _, ticket := range got {
		if !ev.MatchesRecord(compiled, ticket) {
			t.Errorf("MatchesRecord(ticket %d) = false for a bulk-matched ticket", ticket.ID)
		}
	}
}

func TestMatchingTickets_KindMismatch(t *testing.T) {
	s := testStore(t)

	rule := &types.Rule{
		Kind: types.KindUser,
		Conditions: []types.Condition{
			{Field: "email", Verb: "contains", Value: "example"},
		},
	}
	if _, err := s.MatchingTickets(context.Background(), compileRule(t, rule), 1); err == nil {
		t.Error("expected kind mismatch error")
	}
}

func TestMatchingUsers(t *testing.T) {
	s := testStore(t)

	rule := &types.Rule{
		Kind: types.KindUser,
		Conditions: []types.Condition{
			{Field: "email", Verb: "ends_with", Value: "@partner.example"},
			{Field: "tags", Verb: "contains_any_of", TagIDs: []int64{1}, JoinType: types.AndOperator},
		},
	}
	got, err := s.MatchingUsers(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingUsers failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("MatchingUsers = %v, want only user 2", got)
	}

	// User taggings must not leak from ticket taggings with the same record id.
	rule.Conditions[1].TagIDs = []int64{2}
	got, err = s.MatchingUsers(context.Background(), compileRule(t, rule), 1)
	if err != nil {
		t.Fatalf("MatchingUsers failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("MatchingUsers = %v, want none", got)
	}
}
