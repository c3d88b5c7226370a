package lookup

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/target/citation-poller/internal/errors"
)

// Invocation is one firing of a campaign's recurring trigger.
// Field names on the wire follow the scheduler event payload.
type Invocation struct {
	CampaignID     string `json:"campaign_id"    validate:"required"`
	ScheduleName   string `json:"scheduleName"   validate:"required"`
	OrganizationID string `json:"organizationId" validate:"required"`
}

var invocationValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
})

// Normalize trims whitespace from every identifier.
func (inv *Invocation) Normalize() {
	inv.CampaignID = strings.TrimSpace(inv.CampaignID)
	inv.ScheduleName = strings.TrimSpace(inv.ScheduleName)
	inv.OrganizationID = strings.TrimSpace(inv.OrganizationID)
}

// Validate reports the first missing identifier as a BadInvocation error.
func (inv Invocation) Validate() error {
	inv.Normalize()
	err := invocationValidator().Struct(inv)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		missing := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			missing = append(missing, fe.Field())
		}
		return apperrors.BadInvocation(
			missing[0],
			"missing required parameters: "+strings.Join(missing, ", "),
		)
	}
	return apperrors.Wrap(err, apperrors.ErrCodeBadInvocation, "invalid invocation")
}

type invocationEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

// DecodeInvocation parses an invocation payload. Scheduler deliveries wrap the
// invocation in a "detail" object, which takes precedence when present.
func DecodeInvocation(data []byte) (Invocation, error) {
	var env invocationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Invocation{}, apperrors.Wrap(err, apperrors.ErrCodeBadInvocation, "invocation is not a JSON object")
	}

	body := data
	if d := bytes.TrimSpace(env.Detail); len(d) > 0 && !bytes.Equal(d, []byte("null")) {
		body = d
	}

	var inv Invocation
	if err := json.Unmarshal(body, &inv); err != nil {
		return Invocation{}, apperrors.Wrap(err, apperrors.ErrCodeBadInvocation, "invocation is not a JSON object")
	}
	inv.Normalize()
	return inv, nil
}

// String renders the invocation for log lines.
func (inv Invocation) String() string {
	return fmt.Sprintf("campaign=%s schedule=%s org=%s", inv.CampaignID, inv.ScheduleName, inv.OrganizationID)
}
