// Package slack posts poll failure alerts to a Slack incoming webhook.
package slack

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/target/citation-poller/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// CampaignURLPrefix turns campaign IDs into links when it is an absolute URL.
	CampaignURLPrefix string
}

// Client delivers poll failure notifications to a Slack webhook.
type Client struct {
	notify.Poster

	channel      string
	username     string
	campaignBase *url.URL
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// NewClient builds a Slack webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhook := strings.TrimSpace(cfg.WebhookURL)
	if webhook == "" {
		return nil, errors.New("slack webhook url is required")
	}

	c := &Client{
		Poster:   notify.NewPoster("slack webhook", webhook, cfg.RetryLimit, cfg.Timeout, cfg.Client),
		channel:  strings.TrimSpace(cfg.Channel),
		username: notify.Fallback(strings.TrimSpace(cfg.Username), "citation-poller"),
	}
	if u, err := url.Parse(strings.TrimSpace(cfg.CampaignURLPrefix)); err == nil && u.Scheme != "" && u.Host != "" {
		c.campaignBase = u
	}
	return c, nil
}

// SendPollFailure posts a formatted message to Slack.
func (c *Client) SendPollFailure(ctx context.Context, payload notify.PollFailurePayload) error {
	return c.PostJSON(ctx, c.formatMessage(payload))
}

func (c *Client) formatMessage(payload notify.PollFailurePayload) map[string]any {
	msg := map[string]any{
		"text":     c.render(payload),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

// render lays the alert out as a bold title line followed by one bullet per non-empty field.
func (c *Client) render(p notify.PollFailurePayload) string {
	var b strings.Builder

	b.WriteString("*Citation lookup poll failure*")
	if p.ScheduleName != "" {
		fmt.Fprintf(&b, " `%s`", escaper.Replace(p.ScheduleName))
	}
	b.WriteByte('\n')

	bullet := func(indent, label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&b, "%s• %s: %s\n", indent, label, value)
		}
	}
	bullet("", "Severity", notify.Fallback(p.Severity, notify.SeverityCritical))
	bullet("", "Campaign", c.formatCampaignValue(p.CampaignID))
	bullet("", "Organization", escaper.Replace(p.OrganizationID))
	bullet("", "Error class", p.ErrorClass)
	bullet("", "Error", p.Error)

	if len(p.Metadata) > 0 {
		b.WriteString("• Metadata:\n")
		for _, k := range slices.Sorted(maps.Keys(p.Metadata)) {
			bullet("    ", k, p.Metadata[k])
		}
	}

	at := p.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	b.WriteString("• Timestamp: " + at.UTC().Format(time.RFC3339))
	return b.String()
}

// formatCampaignValue escapes the ID and links it under the campaign URL prefix when one is configured.
func (c *Client) formatCampaignValue(campaignID string) string {
	raw := strings.TrimSpace(campaignID)
	if raw == "" {
		return ""
	}
	id := escaper.Replace(raw)
	if c.campaignBase == nil {
		return id
	}
	return "<" + c.campaignBase.JoinPath(raw).String() + "|" + id + ">"
}
