// Package pagerduty raises poll failure incidents through the Events API v2.
package pagerduty

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/target/citation-poller/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

const defaultSource = "citation-poller"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// Endpoint overrides APIEndpoint; empty uses the public ingest URL.
	Endpoint string
}

// Client publishes trigger events. Events for the same campaign share a dedup key,
// so repeated firings of a broken lookup collapse into one open incident.
type Client struct {
	notify.Poster

	routingKey string
	source     string
	component  string
}

// NewClient constructs a PagerDuty events client. A routing key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}
	endpoint := notify.Fallback(strings.TrimSpace(cfg.Endpoint), APIEndpoint)

	return &Client{
		Poster:     notify.NewPoster("pagerduty api", endpoint, cfg.RetryLimit, cfg.Timeout, cfg.Client),
		routingKey: key,
		source:     notify.Fallback(strings.TrimSpace(cfg.Source), defaultSource),
		component:  notify.Fallback(strings.TrimSpace(cfg.Component), defaultSource),
	}, nil
}

// SendPollFailure submits a trigger event.
func (c *Client) SendPollFailure(ctx context.Context, payload notify.PollFailurePayload) error {
	return c.PostJSON(ctx, c.buildEvent(payload))
}

func (c *Client) buildEvent(p notify.PollFailurePayload) map[string]any {
	at := p.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}

	details := make(map[string]any, len(p.Metadata)+5)
	for k, v := range p.Metadata {
		details[k] = v
	}
	// Payload fields win over metadata keys of the same name.
	details["campaign_id"] = p.CampaignID
	details["organization_id"] = p.OrganizationID
	details["schedule_name"] = p.ScheduleName
	details["error"] = p.Error
	details["error_class"] = p.ErrorClass

	summary := "Citation lookup poll for campaign " + notify.Fallback(p.CampaignID, "unknown") +
		" failed (" + notify.Fallback(p.ErrorClass, "unknown") + ")"

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    strings.TrimSuffix("citation-lookup:"+p.CampaignID, ":"),
		"payload": map[string]any{
			"summary":        summary,
			"severity":       notify.Fallback(strings.ToLower(strings.TrimSpace(p.Severity)), notify.SeverityCritical),
			"source":         c.source,
			"component":      c.component,
			"timestamp":      at.UTC().Format(time.RFC3339),
			"custom_details": details,
		},
	}
}
