package rest

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/gkbsz/leadgate/internal/errors"
)

// Response is the JSON body returned for every submit request.
type Response struct {
	OK      bool           `json:"ok"`
	Error   string         `json:"error,omitempty"`
	Fields  []string       `json:"fields,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError renders an AppError with its mapped HTTP status. A suspected bot
// is deliberately indistinguishable from success on the wire; the code only
// shows up in logs and metrics.
func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	if appErr.Code == apperrors.CodeBotSuspected {
		writeJSON(w, http.StatusOK, Response{OK: true})
		return
	}
	writeJSON(w, errorStatus(appErr.Code), Response{
		OK:      false,
		Error:   appErr.Message,
		Fields:  appErr.Fields,
		Details: appErr.Details,
	})
}

func errorStatus(code string) int {
	switch code {
	case apperrors.CodeOriginDenied:
		return http.StatusForbidden
	case apperrors.CodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.CodeTransportFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(true)
	_ = encoder.Encode(v)
}
