package data

import (
	"errors"
	"fmt"

	apperrors "github.com/target/citation-poller/internal/errors"
)

// Shared sentinel errors for data-layer repositories.
var (
	ErrCampaignIDRequired  = errors.New("campaign_id is required")
	ErrLookupStatusEmpty   = errors.New("lookup_status is required")
	ErrTriggerNameRequired = errors.New("trigger name is required")
	ErrTriggerIDRequired   = errors.New("trigger id is required")
)

// storeError classifies a persistence failure for the poll cycle: a missing row stays NotFound,
// everything else is StoreUnavailable so the next firing retries.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.IsNotFound(mapped) {
		return mapped
	}
	return apperrors.Wrap(mapped, apperrors.ErrCodeStoreUnavailable, op)
}

// adminError maps a failure for the trigger admin surface, keeping conflicts and FK errors visible.
func adminError(op string, err error) error {
	if err == nil {
		return nil
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.GetCode(mapped) != "" {
		return mapped
	}
	return fmt.Errorf("%s: %w", op, mapped)
}
