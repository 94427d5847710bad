package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

type MessageHandler struct {
	messages service.MessageService
}

func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chats/{chat_id}/messages", h.list).Methods("GET", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/messages/range", h.listRange).Methods("GET", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/messages", h.post).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/messages/forward", h.forward).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/messages/{message_id}", h.edit).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/messages/{message_id}", h.delete).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/messages/{message_id}/recover", h.recover).Methods("POST", "OPTIONS")
}

// @Summary List messages
// @ID list-messages
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param cursor query string false "Cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} repository.Page[model.Message]
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages [get]
func (h *MessageHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.messages.List(r.Context(), Principal(r).ID,
		mux.Vars(r)["chat_id"], queryCursor(r), queryLimit(r))
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, page)
}

// @Summary List messages between two known points
// @ID range-messages
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param from_id query string true "First message ID"
// @Param to_id query string true "Last message ID"
// @Success 200 {object} []model.Message
// @Failure 404 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages/range [get]
func (h *MessageHandler) listRange(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.Range(r.Context(), Principal(r).ID,
		mux.Vars(r)["chat_id"],
		r.URL.Query().Get("from_id"),
		r.URL.Query().Get("to_id"))
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, msgs)
}

// @Summary Post message
// @ID post-message
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param Message body service.PostMessageInput true "Message"
// @Success 201 {object} model.Message
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages [post]
func (h *MessageHandler) post(w http.ResponseWriter, r *http.Request) {
	var input service.PostMessageInput
	if err := decodeJSON(r, &input); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	msg, err := h.messages.Post(r.Context(), Principal(r).ID, mux.Vars(r)["chat_id"], input)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusCreated, msg)
}

type editMessageRequest struct {
	Content string `json:"content"`
}

// @Summary Edit message
// @ID edit-message
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param message_id path string true "Message ID"
// @Param Content body editMessageRequest true "New content"
// @Success 200 {object} model.Message
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages/{message_id} [patch]
func (h *MessageHandler) edit(w http.ResponseWriter, r *http.Request) {
	var request editMessageRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	vars := mux.Vars(r)
	msg, err := h.messages.Edit(r.Context(), Principal(r).ID,
		vars["chat_id"], vars["message_id"], request.Content)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, msg)
}

// @Summary Delete message
// @Description First delete is soft (202); is_forever or a repeat delete is hard (204)
// @ID delete-message
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param message_id path string true "Message ID"
// @Param is_forever query bool false "Hard delete"
// @Success 202
// @Success 204
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages/{message_id} [delete]
func (h *MessageHandler) delete(w http.ResponseWriter, r *http.Request) {
	isForever, _ := strconv.ParseBool(r.URL.Query().Get("is_forever"))

	vars := mux.Vars(r)
	hard, err := h.messages.Delete(r.Context(), Principal(r).ID,
		vars["chat_id"], vars["message_id"], isForever)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	if hard {
		httputils.ResponseJSON(w, http.StatusNoContent, nil)
		return
	}
	httputils.ResponseJSON(w, http.StatusAccepted, nil)
}

// @Summary Recover soft-deleted message
// @ID recover-message
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param message_id path string true "Message ID"
// @Success 200 {object} model.Message
// @Failure 400 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages/{message_id}/recover [post]
func (h *MessageHandler) recover(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	msg, err := h.messages.Recover(r.Context(), Principal(r).ID,
		vars["chat_id"], vars["message_id"])
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, msg)
}

type forwardRequest struct {
	ToChatID string   `json:"to_chat_id"`
	Messages []string `json:"messages"`
}

// @Summary Forward messages
// @ID forward-messages
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Source chat ID"
// @Param Forward body forwardRequest true "Target chat and message IDs"
// @Success 201 {object} []model.Message
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/messages/forward [post]
func (h *MessageHandler) forward(w http.ResponseWriter, r *http.Request) {
	var request forwardRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	msgs, err := h.messages.Forward(r.Context(), Principal(r).ID,
		mux.Vars(r)["chat_id"], request.ToChatID, request.Messages)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusCreated, msgs)
}
