// Package trigger defines the recurring poll triggers that re-invoke a campaign's status check
// until the lookup completes.
package trigger

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
)

// Trigger is a named recurring schedule bound to one campaign and its organization.
type Trigger struct {
	ID             string     `json:"id"                      db:"id"`
	Name           string     `json:"name"                    db:"name"`
	CampaignID     string     `json:"campaign_id"             db:"campaign_id"`
	OrganizationID string     `json:"organization_id"         db:"organization_id"`
	Schedule       string     `json:"schedule"                db:"schedule"`
	NextRunAt      time.Time  `json:"next_run_at"             db:"next_run_at"`
	LastFiredAt    *time.Time `json:"last_fired_at,omitempty" db:"last_fired_at"`
	CreatedAt      time.Time  `json:"created_at"              db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"              db:"updated_at"`
}

// Invocation builds the poll invocation this trigger delivers when it fires.
func (t Trigger) Invocation() lookup.Invocation {
	return lookup.Invocation{
		CampaignID:     t.CampaignID,
		ScheduleName:   t.Name,
		OrganizationID: t.OrganizationID,
	}
}

// IsDue reports whether the trigger should fire at now.
func (t Trigger) IsDue(now time.Time) bool {
	return !t.NextRunAt.After(now)
}

// scheduleParser accepts standard 5-field cron plus descriptors such as "@every 5m" and "@hourly".
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule validates a schedule expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, apperrors.ValidationField("schedule", "schedule is required")
	}
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeValidation,
			Message: "invalid schedule expression",
			Field:   "schedule",
			Cause:   err,
		}
	}
	return sched, nil
}

// NextRun computes the first activation of expr strictly after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return time.Time{}, err
	}
	next := sched.Next(from)
	if next.IsZero() {
		return time.Time{}, apperrors.ValidationField("schedule", "schedule never fires")
	}
	return next, nil
}

// FindDueParams holds inputs for claiming due triggers.
type FindDueParams struct {
	Now   time.Time
	Limit int
}

// MarkFiredParams advances a trigger after it has been claimed for a firing.
type MarkFiredParams struct {
	ID        string
	FiredAt   time.Time
	NextRunAt time.Time
}

// UpsertRequest creates or replaces a trigger by name.
type UpsertRequest struct {
	Name           string `json:"name"            yaml:"name"`
	CampaignID     string `json:"campaign_id"     yaml:"campaign_id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	Schedule       string `json:"schedule"        yaml:"schedule"`
	// StartAt delays the first firing; zero means the next schedule activation.
	StartAt *time.Time `json:"start_at,omitempty" yaml:"start_at,omitempty"`
}

// Normalize trims whitespace from all string fields.
func (r *UpsertRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.CampaignID = strings.TrimSpace(r.CampaignID)
	r.OrganizationID = strings.TrimSpace(r.OrganizationID)
	r.Schedule = strings.TrimSpace(r.Schedule)
}

// Validate checks identifiers and the schedule expression.
func (r *UpsertRequest) Validate() error {
	r.Normalize()
	switch {
	case r.Name == "":
		return apperrors.ValidationField("name", "name is required")
	case len(r.Name) > maxNameLen:
		return apperrors.ValidationField("name", "name cannot exceed 64 characters")
	case r.CampaignID == "":
		return apperrors.ValidationField("campaign_id", "campaign_id is required")
	case r.OrganizationID == "":
		return apperrors.ValidationField("organization_id", "organization_id is required")
	}
	_, err := ParseSchedule(r.Schedule)
	return err
}

// FirstRun returns when a newly upserted trigger should first fire.
func (r *UpsertRequest) FirstRun(now time.Time) (time.Time, error) {
	if r.StartAt != nil && !r.StartAt.IsZero() {
		return r.StartAt.UTC(), nil
	}
	return NextRun(r.Schedule, now)
}

// maxNameLen matches the poll_triggers name check constraint.
const maxNameLen = 64
