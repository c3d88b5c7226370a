// Package httpx provides HTTP handlers and utilities for the citation poller API.
package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/lookup"
)

// InvocationHandlers runs poll cycles for externally delivered trigger firings.
type InvocationHandlers struct {
	Cycle core.PollCycle
}

// Invoke decodes an invocation (bare or wrapped in "detail") and runs one poll cycle.
// The response status and body are the cycle's result.
func (h *InvocationHandlers) Invoke(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, ErrorParams{Code: http.StatusRequestEntityTooLarge, ErrCode: "body_too_large", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_body", Err: err})
		return
	}

	inv, err := lookup.DecodeInvocation(body)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return
	}

	res := h.Cycle.Run(r.Context(), inv)
	WriteJSON(w, res.StatusCode, res.Body)
}
