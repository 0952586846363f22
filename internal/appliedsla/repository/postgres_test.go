package repository

import (
	"strings"
	"testing"
	"time"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	query, args := buildListQuery(Filter{})
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
	if strings.Contains(query, "WHERE") {
		t.Errorf("query without filters should have no WHERE clause: %s", query)
	}
	if strings.Contains(query, "JOIN") {
		t.Errorf("query without conversation predicates should have no JOIN: %s", query)
	}
	if !strings.Contains(query, "ORDER BY a.created_at, a.id") {
		t.Errorf("query should have stable ordering: %s", query)
	}
}

func TestBuildListQuery_JoinOnlyWhenNeeded(t *testing.T) {
	query, _ := buildListQuery(Filter{SlaPolicyID: "p1", MissedOnly: true})
	if strings.Contains(query, "JOIN") {
		t.Errorf("applied-SLA-side filters should not force a join: %s", query)
	}

	for _, f := range []Filter{
		{InboxID: "i1"},
		{TeamID: "t1"},
		{AssignedAgentID: "u1"},
		{Labels: []string{"vip"}},
	} {
		query, _ := buildListQuery(f)
		if !strings.Contains(query, "JOIN conversations c") {
			t.Errorf("conversation-side filter should join conversations: %s", query)
		}
	}
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f := Filter{
		AccountID:       "a1",
		CreatedAfter:    &after,
		CreatedBefore:   &before,
		InboxID:         "i1",
		TeamID:          "t1",
		SlaPolicyID:     "p1",
		Labels:          []string{"vip", "billing"},
		AssignedAgentID: "u1",
		MissedOnly:      true,
		Limit:           10,
		Offset:          20,
	}
	query, args := buildListQuery(f)

	for _, want := range []string{
		"a.account_id = $1",
		"a.created_at >= $2",
		"a.created_at <= $3",
		"c.inbox_id = $4",
		"c.team_id = $5",
		"a.sla_policy_id = $6",
		"c.cached_label_list && $7::text[]",
		"c.assigned_agent_id = $8",
		"a.sla_status = $9",
		"LIMIT $10",
		"OFFSET $11",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q: %s", want, query)
		}
	}
	if len(args) != 11 {
		t.Fatalf("len(args) = %d, want 11", len(args))
	}
	if args[6] != `{"vip","billing"}` {
		t.Errorf("labels arg = %v, want text array literal", args[6])
	}
	if args[8] != "missed" {
		t.Errorf("missed-only arg = %v, want %q", args[8], "missed")
	}
}

func TestBuildListQuery_ConjunctiveComposition(t *testing.T) {
	f := Filter{TeamID: "7", MissedOnly: true}
	query, args := buildListQuery(f)
	if !strings.Contains(query, "c.team_id = $1 AND a.sla_status = $2") {
		t.Errorf("predicates should compose with AND: %s", query)
	}
	if len(args) != 2 {
		t.Errorf("len(args) = %d, want 2", len(args))
	}
}

func TestBuildListQuery_InclusiveDateRange(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	query, _ := buildListQuery(Filter{CreatedAfter: &at, CreatedBefore: &at})
	if !strings.Contains(query, ">=") || !strings.Contains(query, "<=") {
		t.Errorf("date range must be inclusive on both ends: %s", query)
	}
}

func TestTextArray(t *testing.T) {
	testCases := []struct {
		name   string
		labels []string
		want   string
	}{
		{"single", []string{"vip"}, `{"vip"}`},
		{"multiple", []string{"vip", "billing"}, `{"vip","billing"}`},
		{"comma inside label", []string{"a,b"}, `{"a,b"}`},
		{"quote inside label", []string{`say "hi"`}, `{"say \"hi\""}`},
		{"backslash inside label", []string{`a\b`}, `{"a\\b"}`},
		{"empty list", nil, `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textArray(tc.labels); got != tc.want {
				t.Errorf("textArray(%v) = %s, want %s", tc.labels, got, tc.want)
			}
		})
	}
}
