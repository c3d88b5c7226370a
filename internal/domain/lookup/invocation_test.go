package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
)

func TestInvocation_Validate(t *testing.T) {
	tests := []struct {
		name      string
		inv       lookup.Invocation
		wantField string
	}{
		{
			name: "valid",
			inv:  lookup.Invocation{CampaignID: "c1", ScheduleName: "sched-c1", OrganizationID: "org9"},
		},
		{
			name:      "missing campaign",
			inv:       lookup.Invocation{ScheduleName: "sched-c1", OrganizationID: "org9"},
			wantField: "campaign_id",
		},
		{
			name:      "blank schedule",
			inv:       lookup.Invocation{CampaignID: "c1", ScheduleName: "  ", OrganizationID: "org9"},
			wantField: "scheduleName",
		},
		{
			name:      "missing organization",
			inv:       lookup.Invocation{CampaignID: "c1", ScheduleName: "sched-c1"},
			wantField: "organizationId",
		},
		{
			name:      "everything missing reports the first field",
			inv:       lookup.Invocation{},
			wantField: "campaign_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inv.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsBadInvocation(err))
			assert.Equal(t, tt.wantField, apperrors.GetField(err))
			assert.Contains(t, err.Error(), "missing required parameters")
		})
	}
}

func TestInvocation_ValidateListsAllMissing(t *testing.T) {
	err := lookup.Invocation{}.Validate()
	require.Error(t, err)
	assert.Equal(t, "missing required parameters: campaign_id, scheduleName, organizationId", err.Error())
}

func TestDecodeInvocation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    lookup.Invocation
		wantErr bool
	}{
		{
			name: "bare object",
			body: `{"campaign_id":"c1","scheduleName":"sched-c1","organizationId":"org9"}`,
			want: lookup.Invocation{CampaignID: "c1", ScheduleName: "sched-c1", OrganizationID: "org9"},
		},
		{
			name: "detail envelope wins",
			body: `{"campaign_id":"outer","detail":{"campaign_id":" c1 ","scheduleName":"sched-c1","organizationId":"org9"}}`,
			want: lookup.Invocation{CampaignID: "c1", ScheduleName: "sched-c1", OrganizationID: "org9"},
		},
		{
			name: "null detail falls back to bare",
			body: `{"detail":null,"campaign_id":"c1"}`,
			want: lookup.Invocation{CampaignID: "c1"},
		},
		{
			name:    "not json",
			body:    `campaign_id=c1`,
			wantErr: true,
		},
		{
			name:    "array",
			body:    `[]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookup.DecodeInvocation([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsBadInvocation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
