package config

import (
	"strings"
	"time"
)

// PollConfig controls a single poll cycle.
type PollConfig struct {
	// Timeout bounds one invocation end to end.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`

	// PreserveTerminal refuses to overwrite a complete record with a non-terminal status.
	// Set to false for plain last-write-wins updates.
	PreserveTerminal bool `env:"PRESERVE_TERMINAL" envDefault:"true"`
}

// Sanitize applies guardrails to poll configuration values.
func (c *PollConfig) Sanitize() {
	if c.Timeout < time.Second {
		c.Timeout = time.Second
	}
}

const (
	defaultBroadcastPrefix    = "org"
	defaultBroadcastEventKind = "CITATION_LOOKUP_SUCCESS"
)

// BroadcastConfig controls the Redis channel used to reach an organization's live subscribers.
type BroadcastConfig struct {
	// ChannelPrefix is joined with the organization id as "<prefix>:<org>".
	ChannelPrefix string `env:"CHANNEL_PREFIX" envDefault:"org"`
	EventKind     string `env:"EVENT_KIND"     envDefault:"CITATION_LOOKUP_SUCCESS"`
}

// Sanitize fills empty values with defaults.
func (c *BroadcastConfig) Sanitize() {
	c.ChannelPrefix = strings.TrimSuffix(strings.TrimSpace(c.ChannelPrefix), ":")
	if c.ChannelPrefix == "" {
		c.ChannelPrefix = defaultBroadcastPrefix
	}
	c.EventKind = strings.TrimSpace(c.EventKind)
	if c.EventKind == "" {
		c.EventKind = defaultBroadcastEventKind
	}
}
