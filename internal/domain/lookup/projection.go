package lookup

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/target/citation-poller/internal/errors"
)

// completedAtLayouts are the timestamp shapes timestamptz accepts from the provider.
// Zone-less values are read as UTC; fractional seconds are optional in every layout.
var completedAtLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Project maps a provider snapshot to the fields that must be persisted.
//
// A non-terminal snapshot yields the status alone. A complete snapshot yields the status,
// the completion time and the citations in compact JSON form (JSON null when absent).
// A complete snapshot without a usable completion time is a provider contract violation.
func Project(s Snapshot) (Delta, error) {
	status := normalizeStatus(s.Status)
	if status == "" {
		return Delta{}, apperrors.Projection("lookup status is empty")
	}
	if !status.IsTerminal() {
		return Delta{Status: status}, nil
	}

	raw := strings.TrimSpace(s.CompletedAt)
	if raw == "" {
		return Delta{}, apperrors.Projection("lookup is complete but lookup_completed_at is missing")
	}
	completedAt, err := parseCompletedAt(raw)
	if err != nil {
		return Delta{}, apperrors.Wrapf(err, apperrors.ErrCodeProjection, "invalid lookup_completed_at %q", raw)
	}

	citations, err := compactCitations(s.Citations)
	if err != nil {
		return Delta{}, err
	}

	return Delta{
		Status:      status,
		CompletedAt: &completedAt,
		Citations:   &citations,
	}, nil
}

func parseCompletedAt(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range completedAtLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// compactCitations strips insignificant whitespace so equal payloads persist identically.
func compactCitations(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeProjection, "citations are not valid JSON")
	}
	return buf.String(), nil
}
