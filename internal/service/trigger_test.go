package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/trigger"
	apperrors "github.com/target/citation-poller/internal/errors"
	"github.com/target/citation-poller/internal/mocks"
	"github.com/target/citation-poller/internal/testutil"
)

func newTestTriggerService(t *testing.T, now time.Time) (*TriggerService, *mocks.MockTriggerAdminRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTriggerAdminRepository(ctrl)
	svc, err := NewTriggerService(TriggerServiceOptions{
		Repo: repo,
		Now:  func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc, repo
}

func TestTriggerService_Upsert(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, repo := newTestTriggerService(t, now)

	req := trigger.UpsertRequest{
		Name:           " sched-c1 ",
		CampaignID:     "c1",
		OrganizationID: "org9",
		Schedule:       "@every 5m",
	}
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p core.UpsertTriggerParams) (*trigger.Trigger, error) {
			assert.Equal(t, "sched-c1", p.Request.Name)
			assert.Equal(t, now.Add(5*time.Minute), p.NextRunAt)
			return &trigger.Trigger{Name: p.Request.Name, NextRunAt: p.NextRunAt}, nil
		})

	got, err := svc.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "sched-c1", got.Name)
}

func TestTriggerService_Upsert_StartAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, repo := newTestTriggerService(t, now)
	start := now.Add(-time.Hour)

	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p core.UpsertTriggerParams) (*trigger.Trigger, error) {
			assert.Equal(t, start, p.NextRunAt)
			return &trigger.Trigger{Name: p.Request.Name}, nil
		})

	req := testutil.NewTriggerRequest("c1").
		WithOrganization("org9").
		WithSchedule("*/5 * * * *").
		StartingAt(start).
		Build()
	_, err := svc.Upsert(context.Background(), req)
	require.NoError(t, err)
}

func TestTriggerService_Upsert_Invalid(t *testing.T) {
	svc, _ := newTestTriggerService(t, time.Now())

	_, err := svc.Upsert(context.Background(),
		testutil.NewTriggerRequest("c1").WithSchedule("every so often").Build())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "schedule", apperrors.GetField(err))
}

func TestTriggerService_Delete(t *testing.T) {
	svc, repo := newTestTriggerService(t, time.Now())

	repo.EXPECT().DeleteByName(gomock.Any(), "sched-c1").Return(true, nil)
	require.NoError(t, svc.Delete(context.Background(), "sched-c1"))

	repo.EXPECT().DeleteByName(gomock.Any(), "sched-c1").Return(false, nil)
	err := svc.Delete(context.Background(), "sched-c1")
	assert.True(t, apperrors.IsNotFound(err))

	assert.True(t, apperrors.IsValidation(svc.Delete(context.Background(), " ")))
}

func TestTriggerService_Cancel(t *testing.T) {
	svc, repo := newTestTriggerService(t, time.Now())

	repo.EXPECT().DeleteByName(gomock.Any(), "sched-c1").Return(true, nil)
	require.NoError(t, svc.Cancel(context.Background(), "sched-c1"))

	// Already absent counts as cancelled.
	repo.EXPECT().DeleteByName(gomock.Any(), "sched-c1").Return(false, nil)
	require.NoError(t, svc.Cancel(context.Background(), "sched-c1"))

	repo.EXPECT().DeleteByName(gomock.Any(), "sched-c1").Return(false, errors.New("conn reset"))
	err := svc.Cancel(context.Background(), "sched-c1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCancellationFailure, apperrors.GetCode(err))
}

func TestTriggerService_GetAndList(t *testing.T) {
	svc, repo := newTestTriggerService(t, time.Now())

	repo.EXPECT().GetByName(gomock.Any(), "sched-c1").Return(&trigger.Trigger{Name: "sched-c1"}, nil)
	got, err := svc.Get(context.Background(), " sched-c1 ")
	require.NoError(t, err)
	assert.Equal(t, "sched-c1", got.Name)

	opts := core.ListTriggersOptions{CampaignID: "c1", Limit: 10}
	repo.EXPECT().List(gomock.Any(), opts).Return([]*trigger.Trigger{{Name: "a"}, {Name: "b"}}, nil)
	list, err := svc.List(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.Get(context.Background(), "")
	assert.True(t, apperrors.IsValidation(err))
}
