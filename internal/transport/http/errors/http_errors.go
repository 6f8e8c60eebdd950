package errors

import (
	"encoding/json"
	"net/http"

	"github.com/yjw768/groupup/internal/pkg/apperr"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// FromError maps an engine error to its HTTP status and body. Store failures
// keep their cause out of the response; internalMessage is sent instead.
func FromError(err error, internalMessage string) (int, APIError) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest, APIError{Code: "VALIDATION_ERROR", Message: apperr.Message(err)}
	case apperr.KindNotFound:
		return http.StatusNotFound, APIError{Code: "NOT_FOUND", Message: apperr.Message(err)}
	case apperr.KindConflict:
		return http.StatusConflict, APIError{Code: "CONFLICT", Message: apperr.Message(err)}
	default:
		return http.StatusInternalServerError, APIError{Code: "INTERNAL_ERROR", Message: internalMessage}
	}
}

func WriteError(w http.ResponseWriter, err error, internalMessage string) {
	status, payload := FromError(err, internalMessage)
	Write(w, status, payload)
}
