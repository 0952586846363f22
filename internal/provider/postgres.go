package provider

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PostgresProvider reads policies and conversations from the reference tables
// maintained by the policy and conversation services. All reads are opaque to
// the SLA core; nothing here is ever written by this module.
type PostgresProvider struct {
	db *sql.DB
}

// NewPostgresProvider returns a provider backed by the given db.
func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

// GetPolicy returns the policy for id, or nil if not found.
func (p *PostgresProvider) GetPolicy(ctx context.Context, id string) (*Policy, error) {
	var pol Policy
	var responseSecs int64
	var resolutionSecs sql.NullInt64
	err := p.db.QueryRowContext(ctx, `
		SELECT id, account_id, name, response_threshold_seconds, resolution_threshold_seconds
		FROM sla_policies WHERE id = $1`, id).
		Scan(&pol.ID, &pol.AccountID, &pol.Name, &responseSecs, &resolutionSecs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	pol.ResponseThreshold = time.Duration(responseSecs) * time.Second
	if resolutionSecs.Valid {
		pol.ResolutionThreshold = time.Duration(resolutionSecs.Int64) * time.Second
	}
	return &pol, nil
}

// GetConversation returns the conversation for id, or nil if not found.
func (p *PostgresProvider) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	var teamID, agentID, labels sql.NullString
	var firstReplyAt, resolvedAt sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT id, account_id, inbox_id, team_id, assigned_agent_id,
		       cached_label_list, first_reply_at, resolved_at
		FROM conversations WHERE id = $1`, id).
		Scan(&c.ID, &c.AccountID, &c.InboxID, &teamID, &agentID, &labels, &firstReplyAt, &resolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.TeamID = teamID.String
	c.AssignedAgentID = agentID.String
	c.Labels = parseTextArray(labels.String)
	if firstReplyAt.Valid {
		t := firstReplyAt.Time
		c.FirstReplyAt = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		c.ResolvedAt = &t
	}
	return &c, nil
}

// parseTextArray decodes a Postgres text[] literal as the server renders it,
// e.g. {vip,billing} or {"label, with comma","needs \"quotes\""}. Elements are
// unquoted unless they contain array syntax; quoted elements escape backslash
// and double-quote with a backslash. The stdlib driver has no native array
// support, so the literal is parsed here.
func parseTextArray(s string) []string {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return nil
	}
	var out []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case inQuotes:
			switch {
			case ch == '\\' && i+1 < len(body):
				i++
				cur.WriteByte(body[i])
			case ch == '"':
				inQuotes = false
			default:
				cur.WriteByte(ch)
			}
		case ch == '"':
			inQuotes = true
		case ch == ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(out, cur.String())
}
