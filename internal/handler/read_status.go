package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

type ReadStatusHandler struct {
	statuses service.ReadStatusService
}

func NewReadStatusHandler(statuses service.ReadStatusService) *ReadStatusHandler {
	return &ReadStatusHandler{statuses: statuses}
}

func (h *ReadStatusHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/read_status/{chat_id}/update", h.update).Methods("PATCH", "OPTIONS")
}

type updateReadStatusRequest struct {
	LastReadMessageID *string `json:"last_read_message_id"`
	CountUnreadMsg    int     `json:"count_unread_msg"`
}

// @Summary Update read status
// @ID update-read-status
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param ReadStatus body updateReadStatusRequest true "Read status"
// @Success 200 {object} model.ReadStatus
// @Failure 403 {object} httputils.ErrorResponse
// @Router /read_status/{chat_id}/update [patch]
func (h *ReadStatusHandler) update(w http.ResponseWriter, r *http.Request) {
	var request updateReadStatusRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	rs, err := h.statuses.Update(r.Context(), Principal(r).ID,
		mux.Vars(r)["chat_id"], request.LastReadMessageID, request.CountUnreadMsg)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, rs)
}
