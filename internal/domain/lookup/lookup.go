// Package lookup defines citation lookup status snapshots, the persisted campaign record,
// and the projection that turns one into an update of the other.
package lookup

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the provider-reported lookup state. The provider's state set is open:
// anything other than StatusComplete is treated as not yet terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
)

// IsTerminal reports whether no further polling is needed.
func (s Status) IsTerminal() bool {
	return s == StatusComplete
}

func (s Status) String() string { return string(s) }

// Snapshot is the provider's answer to a status query.
type Snapshot struct {
	Status Status `json:"lookup_status"`
	// CompletedAt is kept as the provider sent it; Project parses it.
	CompletedAt string `json:"lookup_completed_at,omitempty"`
	// Citations is the raw result payload, untouched.
	Citations json.RawMessage `json:"citations,omitempty"`
}

// Delta is the partial update applied to a campaign record.
// CompletedAt and Citations are both set or both nil.
type Delta struct {
	Status      Status
	CompletedAt *time.Time
	Citations   *string
}

// HasCompletion reports whether the delta carries completion fields.
func (d Delta) HasCompletion() bool {
	return d.CompletedAt != nil && d.Citations != nil
}

// Campaign is the persisted citation campaign row as far as polling is concerned.
type Campaign struct {
	CampaignID        string     `json:"campaign_id"                   db:"campaign_id"`
	LookupStatus      Status     `json:"lookup_status"                 db:"lookup_status"`
	LookupCompletedAt *time.Time `json:"lookup_completed_at,omitempty" db:"lookup_completed_at"`
	Citations         *string    `json:"citations,omitempty"           db:"citations"`
	CreatedAt         time.Time  `json:"created_at"                    db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"                    db:"updated_at"`
}

// CompletionEvent is broadcast to an organization's subscribers once a lookup completes.
type CompletionEvent struct {
	CampaignID     string `json:"campaign_id"`
	LookupStatus   Status `json:"lookup_status"`
	OrganizationID string `json:"-"`
}

// normalizeStatus trims surrounding whitespace; case is preserved since the provider is case sensitive.
func normalizeStatus(s Status) Status {
	return Status(strings.TrimSpace(string(s)))
}

const (
	// MessageProcessed is the response message of a successful invocation.
	MessageProcessed = "Successfully processed upload citation lookup result"
	// MessageFailed is the response message of a failed invocation.
	MessageFailed = "Failed to process upload citation lookup result"
)

// ResultBody is the body of an invocation response.
type ResultBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Result is the transport-agnostic outcome of one invocation.
type Result struct {
	StatusCode int        `json:"statusCode"`
	Body       ResultBody `json:"body"`
}

// Succeeded builds the 200 result.
func Succeeded() Result {
	return Result{StatusCode: 200, Body: ResultBody{Message: MessageProcessed}}
}

// Failed builds the 500 result carrying err's message.
func Failed(err error) Result {
	body := ResultBody{Message: MessageFailed}
	if err != nil {
		body.Error = err.Error()
	}
	return Result{StatusCode: 500, Body: body}
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.StatusCode == 200 }
