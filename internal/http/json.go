package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/target/citation-poller/internal/errors"
)

// DecodeJSON decodes exactly one JSON document from the request body into dst.
// On failure it writes the error response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after JSON document")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		WriteError(w, ErrorParams{Code: http.StatusRequestEntityTooLarge, ErrCode: "body_too_large", Err: err})
	case errors.Is(err, io.EOF):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: errors.New("request body is empty")})
	default:
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
	}
	return false
}

// WriteJSON writes v with the given status. Encoding failures become a bare 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorParams describes a JSON error response.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes {"error", "message", "field"?}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode, "message": p.Err.Error()}
	if field := apperrors.GetField(p.Err); field != "" {
		body["field"] = field
	}
	WriteJSON(w, p.Code, body)
}

type appErrorResponse struct {
	status  int
	errCode string
}

var appErrorResponses = map[apperrors.ErrorCode]appErrorResponse{
	apperrors.ErrCodeValidation:       {http.StatusBadRequest, "validation_failed"},
	apperrors.ErrCodeBadInvocation:    {http.StatusBadRequest, "validation_failed"},
	apperrors.ErrCodeNotFound:         {http.StatusNotFound, "not_found"},
	apperrors.ErrCodeConflict:         {http.StatusConflict, "conflict"},
	apperrors.ErrCodeForeignKey:       {http.StatusConflict, "foreign_key"},
	apperrors.ErrCodeTimeout:          {http.StatusGatewayTimeout, "timeout"},
	apperrors.ErrCodeStoreUnavailable: {http.StatusServiceUnavailable, "store_unavailable"},
}

// WriteAppError maps an application error code to an HTTP status.
// Errors without a mapped code are reported as fallback with a 500.
func WriteAppError(w http.ResponseWriter, err error, fallback string) {
	resp, ok := appErrorResponses[apperrors.GetCode(err)]
	if !ok {
		resp = appErrorResponse{http.StatusInternalServerError, fallback}
	}
	WriteError(w, ErrorParams{Code: resp.status, ErrCode: resp.errCode, Err: err})
}
