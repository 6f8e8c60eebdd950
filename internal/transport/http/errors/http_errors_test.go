package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yjw768/groupup/internal/pkg/apperr"
)

func TestFromErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "invalid", err: apperr.InvalidArgument("bad id"), status: http.StatusBadRequest, code: "VALIDATION_ERROR", message: "bad id"},
		{name: "not found", err: apperr.NotFound("match not found"), status: http.StatusNotFound, code: "NOT_FOUND", message: "match not found"},
		{name: "conflict", err: apperr.Conflict("taken"), status: http.StatusConflict, code: "CONFLICT", message: "taken"},
		{name: "store", err: apperr.StoreFailure("insert", errors.New("password=secret")), status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: "failed"},
		{name: "plain", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: "failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := FromError(tc.err, "failed")
			if status != tc.status || payload.Code != tc.code || payload.Message != tc.message {
				t.Fatalf("unexpected mapping: %d %+v", status, payload)
			}
		})
	}
}
