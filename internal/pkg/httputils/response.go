package httputils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/pkg/logger"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func ResponseJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L.Error("failed to encode JSON response", zap.Error(err))
	}
}

// ResponseError отображает apperr на HTTP-код и пишет тело ошибки.
func ResponseError(w http.ResponseWriter, err error) {
	status := statusFromKind(apperr.KindOf(err))
	if status == http.StatusInternalServerError {
		logger.L.Error("internal error", zap.Error(err))
		ResponseJSON(w, status, ErrorResponse{Message: "internal server error"})
		return
	}

	ResponseJSON(w, status, ErrorResponse{
		Message: err.Error(),
		Reason:  apperr.ReasonOf(err),
	})
}

func statusFromKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
