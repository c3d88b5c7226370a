// Package testutil provides testing utilities and helpers for the citation poller.
package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/target/citation-poller/internal/domain/trigger"
)

// CampaignSeed describes a citation_campaigns row inserted for a test.
type CampaignSeed struct {
	CampaignID        string
	LookupStatus      string
	LookupCompletedAt *time.Time
	Citations         *string
}

// InsertCampaign inserts a campaign row the way the upstream creator would.
func InsertCampaign(t TestingTB, db *sql.DB, seed CampaignSeed) {
	t.Helper()

	status := seed.LookupStatus
	if status == "" {
		status = "pending"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO citation_campaigns (campaign_id, lookup_status, lookup_completed_at, citations)
		VALUES ($1, $2, $3, $4)
	`, seed.CampaignID, status, seed.LookupCompletedAt, seed.Citations)
	if err != nil {
		t.Fatalf("insert campaign %s: %v", seed.CampaignID, err)
	}
}

// TriggerRequestBuilder provides a fluent interface for building trigger upsert requests.
type TriggerRequestBuilder struct {
	req trigger.UpsertRequest
}

// NewTriggerRequest creates a builder bound to a campaign with an "@every 5m" schedule.
func NewTriggerRequest(campaignID string) *TriggerRequestBuilder {
	return &TriggerRequestBuilder{
		req: trigger.UpsertRequest{
			Name:           "sched-" + campaignID,
			CampaignID:     campaignID,
			OrganizationID: "org-test",
			Schedule:       "@every 5m",
		},
	}
}

// WithName sets the trigger name.
func (b *TriggerRequestBuilder) WithName(name string) *TriggerRequestBuilder {
	b.req.Name = name
	return b
}

// WithOrganization sets the subscriber organization.
func (b *TriggerRequestBuilder) WithOrganization(org string) *TriggerRequestBuilder {
	b.req.OrganizationID = org
	return b
}

// WithSchedule sets the schedule expression.
func (b *TriggerRequestBuilder) WithSchedule(expr string) *TriggerRequestBuilder {
	b.req.Schedule = expr
	return b
}

// StartingAt sets the first firing time.
func (b *TriggerRequestBuilder) StartingAt(t time.Time) *TriggerRequestBuilder {
	b.req.StartAt = &t
	return b
}

// Build returns the request.
func (b *TriggerRequestBuilder) Build() trigger.UpsertRequest {
	return b.req
}
