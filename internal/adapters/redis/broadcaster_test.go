package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
	"github.com/target/citation-poller/internal/testutil"
)

type fakePublisher struct {
	channel string
	message any
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.message = message
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(0)
	}
	return cmd
}

func TestBroadcaster_NotifyCompletion(t *testing.T) {
	pub := &fakePublisher{}
	b, err := NewBroadcaster(BroadcasterOptions{Client: pub, ChannelPrefix: "org:"})
	require.NoError(t, err)

	err = b.NotifyCompletion(context.Background(), lookup.CompletionEvent{
		CampaignID:     "c1",
		LookupStatus:   lookup.StatusComplete,
		OrganizationID: "org9",
	})
	require.NoError(t, err)

	assert.Equal(t, "org:org9", pub.channel)
	payload, ok := pub.message.([]byte)
	require.True(t, ok)
	assert.JSONEq(t,
		`{"event":"CITATION_LOOKUP_SUCCESS","data":{"campaign_id":"c1","lookup_status":"complete"}}`,
		string(payload))
}

func TestBroadcaster_PublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	b, err := NewBroadcaster(BroadcasterOptions{Client: pub, ChannelPrefix: "org", EventKind: "CUSTOM"})
	require.NoError(t, err)

	err = b.NotifyCompletion(context.Background(), lookup.CompletionEvent{CampaignID: "c1", OrganizationID: "org9"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotificationFailure, apperrors.GetCode(err))
}

func TestBroadcaster_RequiresOrganization(t *testing.T) {
	pub := &fakePublisher{}
	b, err := NewBroadcaster(BroadcasterOptions{Client: pub})
	require.NoError(t, err)

	err = b.NotifyCompletion(context.Background(), lookup.CompletionEvent{CampaignID: "c1"})
	require.Error(t, err)
	assert.Empty(t, pub.channel)
	assert.Equal(t, "acme", b.Channel("acme"))
}

func TestNewBroadcaster_RequiresClient(t *testing.T) {
	_, err := NewBroadcaster(BroadcasterOptions{})
	require.Error(t, err)
}

func TestBroadcaster_DeliversToSubscriber(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := NewBroadcaster(BroadcasterOptions{Client: client, ChannelPrefix: "org"})
	require.NoError(t, err)

	sub := client.Subscribe(ctx, b.Channel("org9"))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, b.NotifyCompletion(ctx, lookup.CompletionEvent{
		CampaignID:     "c1",
		LookupStatus:   lookup.StatusComplete,
		OrganizationID: "org9",
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "org:org9", msg.Channel)
	assert.JSONEq(t,
		`{"event":"CITATION_LOOKUP_SUCCESS","data":{"campaign_id":"c1","lookup_status":"complete"}}`,
		msg.Payload)
}
