package config

import (
	"maps"
	"strings"
	"time"
)

const defaultObservabilityName = "citation-poller"

// ObservabilityConfig groups metrics and failure alerting.
type ObservabilityConfig struct {
	Metrics       ObservabilityMetricsConfig
	Notifications ObservabilityNotificationsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Notifications.Sanitize()
}

// ObservabilityMetricsConfig controls StatsD emission.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"citation_poller"`
	// Tags are attached to every metric, e.g. "env:prod,region:us-east".
	Tags map[string]string `env:"OBSERVABILITY_METRICS_TAGS"`
}

// Sanitize turns metrics off when there is no agent address.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	c.Enabled = c.Enabled && c.StatsdAddress != ""

	tags := make(map[string]string, len(c.Tags))
	for k, v := range c.Tags {
		if k = strings.TrimSpace(k); k != "" {
			tags[k] = strings.TrimSpace(v)
		}
	}
	c.Tags = tags
}

// IsEnabled reports whether metrics should be emitted.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// GlobalTags returns a copy of Tags safe to hand to a client.
func (c *ObservabilityMetricsConfig) GlobalTags() map[string]string {
	return maps.Clone(c.Tags)
}

// ObservabilityNotificationsConfig controls paging on poll failures that retrying will not fix.
// Timeout and RetryLimit apply to each sink separately.
type ObservabilityNotificationsConfig struct {
	Enabled    bool                        `env:"OBSERVABILITY_NOTIFICATIONS_ENABLED"     envDefault:"false"`
	Timeout    time.Duration               `env:"OBSERVABILITY_NOTIFICATIONS_TIMEOUT"     envDefault:"5s"`
	RetryLimit int                         `env:"OBSERVABILITY_NOTIFICATIONS_RETRY_LIMIT" envDefault:"3"`
	Slack      SlackNotificationConfig     `envPrefix:"OBSERVABILITY_NOTIFICATIONS_SLACK_"`
	PagerDuty  PagerDutyNotificationConfig `envPrefix:"OBSERVABILITY_NOTIFICATIONS_PAGERDUTY_"`
}

// Sanitize disables every sink when notifications are off, and any sink missing its credential.
func (c *ObservabilityNotificationsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	c.RetryLimit = max(c.RetryLimit, 0)

	c.Slack.sanitize(c.Enabled)
	c.PagerDuty.sanitize(c.Enabled)
}

// DeliveryTimeout bounds one sink's delivery including retries and their backoff.
func (c *ObservabilityNotificationsConfig) DeliveryTimeout() time.Duration {
	attempts := time.Duration(c.RetryLimit + 1)
	backoff := 200 * time.Millisecond * attempts * (attempts - 1) / 2
	return c.Timeout*attempts + backoff
}

// SlackNotificationConfig controls Slack webhook fan-out.
type SlackNotificationConfig struct {
	Enabled           bool   `env:"ENABLED"             envDefault:"false"`
	WebhookURL        string `env:"WEBHOOK_URL"`
	Channel           string `env:"CHANNEL"`
	Username          string `env:"USERNAME"            envDefault:"citation-poller"`
	CampaignURLPrefix string `env:"CAMPAIGN_URL_PREFIX"`
}

func (c *SlackNotificationConfig) sanitize(parentEnabled bool) {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
	c.CampaignURLPrefix = strings.TrimSpace(c.CampaignURLPrefix)
	c.Username = orDefault(c.Username, defaultObservabilityName)
	c.Enabled = c.Enabled && parentEnabled && c.WebhookURL != ""
}

// PagerDutyNotificationConfig controls PagerDuty Events API v2 fan-out.
type PagerDutyNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	RoutingKey string `env:"ROUTING_KEY"`
	Source     string `env:"SOURCE"      envDefault:"citation-poller"`
	Component  string `env:"COMPONENT"   envDefault:"citation-poller"`
}

func (c *PagerDutyNotificationConfig) sanitize(parentEnabled bool) {
	c.RoutingKey = strings.TrimSpace(c.RoutingKey)
	c.Source = orDefault(c.Source, defaultObservabilityName)
	c.Component = orDefault(c.Component, defaultObservabilityName)
	c.Enabled = c.Enabled && parentEnabled && c.RoutingKey != ""
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
