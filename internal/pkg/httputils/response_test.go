package httputils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastochka/messenger/internal/apperr"
)

func TestResponseErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{name: "unauthenticated", err: apperr.Unauthenticated("no token"), status: http.StatusUnauthorized},
		{name: "forbidden", err: apperr.Forbidden(apperr.ReasonNotMember, "not a member"), status: http.StatusForbidden, reason: "not-member"},
		{name: "not found", err: apperr.NotFound(apperr.ReasonChat, "chat not found"), status: http.StatusNotFound, reason: "chat"},
		{name: "conflict", err: apperr.Conflict(apperr.ReasonChatExists, "exists"), status: http.StatusConflict, reason: "chat-exists"},
		{name: "bad request", err: apperr.PasswordPolicy("no-digit"), status: http.StatusBadRequest, reason: "password-policy/no-digit"},
		{name: "unprocessable", err: apperr.Unprocessable("bad shape"), status: http.StatusUnprocessableEntity},
		{name: "unavailable", err: apperr.Unavailable("ai disabled"), status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ResponseError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.reason, body.Reason)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestResponseErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseError(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestResponseJSONNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseJSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
