package trigger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/citation-poller/internal/domain/lookup"
	"github.com/target/citation-poller/internal/domain/trigger"
	apperrors "github.com/target/citation-poller/internal/errors"
)

func TestParseSchedule(t *testing.T) {
	valid := []string{"@every 30s", "@every 5m", "@hourly", "*/5 * * * *", " 0 9 * * 1-5 "}
	for _, expr := range valid {
		_, err := trigger.ParseSchedule(expr)
		assert.NoError(t, err, expr)
	}

	invalid := []string{"", "every 5m", "* * *", "61 * * * *", "0 0 0 * * *"}
	for _, expr := range invalid {
		_, err := trigger.ParseSchedule(expr)
		require.Error(t, err, expr)
		assert.True(t, apperrors.IsValidation(err), expr)
		assert.Equal(t, "schedule", apperrors.GetField(err))
	}
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 1, 1, 12, 0, 10, 0, time.UTC)

	next, err := trigger.NextRun("@every 5m", from)
	require.NoError(t, err)
	assert.Equal(t, from.Add(5*time.Minute), next)

	next, err = trigger.NextRun("0 * * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC), next)

	_, err = trigger.NextRun("bogus", from)
	assert.Error(t, err)
}

func TestTrigger_InvocationAndDue(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := trigger.Trigger{
		Name:           "sched-c1",
		CampaignID:     "c1",
		OrganizationID: "org9",
		NextRunAt:      now,
	}

	assert.Equal(t, lookup.Invocation{CampaignID: "c1", ScheduleName: "sched-c1", OrganizationID: "org9"}, tr.Invocation())
	assert.NoError(t, tr.Invocation().Validate())
	assert.True(t, tr.IsDue(now))
	assert.True(t, tr.IsDue(now.Add(time.Second)))
	assert.False(t, tr.IsDue(now.Add(-time.Second)))
}

func TestUpsertRequest_Validate(t *testing.T) {
	base := func() trigger.UpsertRequest {
		return trigger.UpsertRequest{
			Name:           " sched-c1 ",
			CampaignID:     "c1",
			OrganizationID: "org9",
			Schedule:       "@every 5m",
		}
	}

	req := base()
	require.NoError(t, req.Validate())
	assert.Equal(t, "sched-c1", req.Name)

	tests := []struct {
		name      string
		mutate    func(r *trigger.UpsertRequest)
		wantField string
	}{
		{"missing name", func(r *trigger.UpsertRequest) { r.Name = "" }, "name"},
		{"long name", func(r *trigger.UpsertRequest) { r.Name = string(make([]byte, 65)) + "x" }, "name"},
		{"missing campaign", func(r *trigger.UpsertRequest) { r.CampaignID = " " }, "campaign_id"},
		{"missing org", func(r *trigger.UpsertRequest) { r.OrganizationID = "" }, "organization_id"},
		{"bad schedule", func(r *trigger.UpsertRequest) { r.Schedule = "nope" }, "schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantField, apperrors.GetField(err))
		})
	}
}

func TestUpsertRequest_FirstRun(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	req := trigger.UpsertRequest{Schedule: "@every 1m"}

	first, err := req.FirstRun(now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), first)

	start := now.Add(-time.Hour)
	req.StartAt = &start
	first, err = req.FirstRun(now)
	require.NoError(t, err)
	assert.Equal(t, start, first)
}
