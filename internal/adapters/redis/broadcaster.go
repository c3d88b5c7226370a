// Package redis provides Redis-based adapters for the citation poller.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
)

// DefaultEventKind is the event name subscribers listen for.
const DefaultEventKind = "CITATION_LOOKUP_SUCCESS"

// Publisher is the subset of redis.UniversalClient the broadcaster needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// BroadcasterOptions configures a Broadcaster.
type BroadcasterOptions struct {
	Client Publisher
	// ChannelPrefix namespaces organization channels: "<prefix>:<org>".
	ChannelPrefix string
	EventKind     string
	Logger        *slog.Logger
}

// Broadcaster publishes completion events to the subscribers of an organization.
type Broadcaster struct {
	client    Publisher
	prefix    string
	eventKind string
	logger    *slog.Logger
}

var _ core.CompletionNotifier = (*Broadcaster)(nil)

// message is the wire shape received by live subscribers.
type message struct {
	Event string                 `json:"event"`
	Data  lookup.CompletionEvent `json:"data"`
}

// NewBroadcaster creates a Broadcaster; the client is required.
func NewBroadcaster(opts BroadcasterOptions) (*Broadcaster, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	kind := strings.TrimSpace(opts.EventKind)
	if kind == "" {
		kind = DefaultEventKind
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		client:    opts.Client,
		prefix:    strings.TrimSuffix(strings.TrimSpace(opts.ChannelPrefix), ":"),
		eventKind: kind,
		logger:    logger.With("component", "completion_broadcaster"),
	}, nil
}

// Channel returns the channel name for an organization.
func (b *Broadcaster) Channel(organizationID string) string {
	if b.prefix == "" {
		return organizationID
	}
	return b.prefix + ":" + organizationID
}

// NotifyCompletion publishes evt to the organization channel.
// Zero receivers is not an error; nobody being connected is a normal state.
func (b *Broadcaster) NotifyCompletion(ctx context.Context, evt lookup.CompletionEvent) error {
	if strings.TrimSpace(evt.OrganizationID) == "" {
		return apperrors.Wrap(errors.New("organization id is empty"), apperrors.ErrCodeNotificationFailure,
			"completion notification")
	}

	payload, err := json.Marshal(message{Event: b.eventKind, Data: evt})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeNotificationFailure, "encode completion event")
	}

	channel := b.Channel(evt.OrganizationID)
	receivers, err := b.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeNotificationFailure, "publish completion event")
	}

	b.logger.DebugContext(ctx, "completion event published",
		"channel", channel,
		"campaign_id", evt.CampaignID,
		"receivers", receivers,
	)
	return nil
}
