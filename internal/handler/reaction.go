package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

type ReactionHandler struct {
	reactions service.ReactionService
}

func NewReactionHandler(reactions service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

func (h *ReactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chats/{chat_id}/messages/{message_id}/reaction", h.set).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/messages/{message_id}/reaction", h.remove).Methods("DELETE", "OPTIONS")
}

type reactionRequest struct {
	ReactionType string `json:"reaction_type"`
}

// @Summary Set reaction
// @Description A repeated reaction by the same user replaces the previous one
// @ID set-reaction
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param message_id path string true "Message ID"
// @Param Reaction body reactionRequest true "Reaction"
// @Success 200 {object} model.Reaction
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages/{message_id}/reaction [post]
func (h *ReactionHandler) set(w http.ResponseWriter, r *http.Request) {
	var request reactionRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	vars := mux.Vars(r)
	reaction, err := h.reactions.Set(r.Context(), Principal(r).ID,
		vars["chat_id"], vars["message_id"], request.ReactionType)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, reaction)
}

// @Summary Remove reaction
// @ID remove-reaction
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param message_id path string true "Message ID"
// @Success 204
// @Failure 404 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages/{message_id}/reaction [delete]
func (h *ReactionHandler) remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.reactions.Remove(r.Context(), Principal(r).ID,
		vars["chat_id"], vars["message_id"])
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusNoContent, nil)
}
