package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

type DraftHandler struct {
	drafts service.DraftService
}

func NewDraftHandler(drafts service.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

func (h *DraftHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chats/{chat_id}/draft-message", h.put).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/draft-message", h.update).Methods("PUT", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/draft-message", h.delete).Methods("DELETE", "OPTIONS")
}

type draftRequest struct {
	Content string `json:"content"`
}

// @Summary Create or replace draft
// @ID put-draft
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param Draft body draftRequest true "Draft"
// @Success 201 {object} model.DraftMessage
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/draft-message [post]
func (h *DraftHandler) put(w http.ResponseWriter, r *http.Request) {
	var request draftRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	draft, err := h.drafts.Put(r.Context(), Principal(r).ID, mux.Vars(r)["chat_id"], request.Content)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusCreated, draft)
}

// @Summary Update draft
// @ID update-draft
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param Draft body draftRequest true "Draft"
// @Success 200 {object} model.DraftMessage
// @Failure 404 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/draft-message [put]
func (h *DraftHandler) update(w http.ResponseWriter, r *http.Request) {
	var request draftRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	draft, err := h.drafts.Update(r.Context(), Principal(r).ID, mux.Vars(r)["chat_id"], request.Content)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, draft)
}

// @Summary Delete draft
// @ID delete-draft
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Success 204
// @Failure 404 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/draft-message [delete]
func (h *DraftHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Delete(r.Context(), Principal(r).ID, mux.Vars(r)["chat_id"]); err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusNoContent, nil)
}
