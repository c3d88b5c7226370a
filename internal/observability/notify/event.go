package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
)

// PollFailurePayload captures the data emitted when a poll cycle fails in a way
// that retrying will not fix, such as a provider snapshot that breaks the completion contract.
type PollFailurePayload struct {
	CampaignID     string
	OrganizationID string
	ScheduleName   string
	Error          string
	ErrorClass     string
	Severity       string
	OccurredAt     time.Time
	Metadata       map[string]string
}

// Sink describes a destination capable of consuming poll failure notifications.
type Sink interface {
	SendPollFailure(ctx context.Context, payload PollFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload PollFailurePayload) error

// SendPollFailure implements the Sink interface.
func (f SinkFunc) SendPollFailure(ctx context.Context, payload PollFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
