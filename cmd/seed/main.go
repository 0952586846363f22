// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev policy already exists.
package main

import (
	"context"
	"log"
	"time"

	appliedslarepo "sla-tracker/engine/internal/appliedsla/repository"
	appliedslaservice "sla-tracker/engine/internal/appliedsla/service"
	"sla-tracker/engine/internal/config"
	"sla-tracker/engine/internal/db"
	"sla-tracker/engine/internal/provider"
	slaeventrepo "sla-tracker/engine/internal/slaevent/repository"
)

const (
	devAccountID      = "dev-account-001"
	devPolicyID       = "dev-policy-001"
	devConversationID = "dev-conversation-001"
	devInboxID        = "dev-inbox-001"
	devTeamID         = "dev-team-001"
	devAgentID        = "dev-agent-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	providers := provider.NewPostgresProvider(conn)

	existing, err := providers.GetPolicy(ctx, devPolicyID)
	if err != nil {
		log.Fatalf("seed: check dev policy: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev data already present, nothing to do")
		return
	}

	_, err = conn.ExecContext(ctx, `
		INSERT INTO sla_policies (id, account_id, name, response_threshold_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		devPolicyID, devAccountID, "gold (30m first response)", int64((30 * time.Minute).Seconds()), time.Now().UTC())
	if err != nil {
		log.Fatalf("seed: insert policy: %v", err)
	}

	_, err = conn.ExecContext(ctx, `
		INSERT INTO conversations (id, account_id, inbox_id, team_id, assigned_agent_id, cached_label_list, created_at)
		VALUES ($1, $2, $3, $4, $5, '{"vip","billing"}'::text[], $6)`,
		devConversationID, devAccountID, devInboxID, devTeamID, devAgentID, time.Now().UTC())
	if err != nil {
		log.Fatalf("seed: insert conversation: %v", err)
	}

	repo := appliedslarepo.NewPostgresRepository(conn)
	apply := appliedslaservice.NewApplyService(repo, providers, providers)
	rec, err := apply.Apply(ctx, "", devPolicyID, devConversationID)
	if err != nil {
		log.Fatalf("seed: apply policy: %v", err)
	}

	query := appliedslaservice.NewQueryService(repo, slaeventrepo.NewPostgresRepository(conn))
	n, err := query.EventCount(ctx, rec.ID)
	if err != nil {
		log.Fatalf("seed: count events: %v", err)
	}

	log.Printf("seed: created policy %s, conversation %s, applied sla %s (%d events)", devPolicyID, devConversationID, rec.ID, n)
}
