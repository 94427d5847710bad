package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

// Лимит multipart-загрузок.
const maxUploadSize = 32 << 20

type ChatHandler struct {
	chats   service.ChatService
	storage service.FileStorage
}

func NewChatHandler(chats service.ChatService, storage service.FileStorage) *ChatHandler {
	return &ChatHandler{chats: chats, storage: storage}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chats/create/direct", h.createDirect).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/create/group", h.createGroup).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats", h.list).Methods("GET", "OPTIONS")
	router.HandleFunc("/chats/deleted", h.listDeleted).Methods("GET", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}", h.get).Methods("GET", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}", h.updateName).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/upload-image", h.uploadImage).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/upload-attachments", h.uploadAttachment).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/typing-status", h.typing).Methods("POST", "OPTIONS")
}

type createDirectRequest struct {
	RecipientUserID string `json:"recipient_user_id"`
}

// @Summary Create direct chat
// @ID create-direct-chat
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param Recipient body createDirectRequest true "Recipient"
// @Success 201 {object} model.Chat
// @Failure 403 {object} httputils.ErrorResponse
// @Failure 409 {object} httputils.ErrorResponse
// @Router /chats/create/direct [post]
func (h *ChatHandler) createDirect(w http.ResponseWriter, r *http.Request) {
	var request createDirectRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chats.CreateDirect(r.Context(), Principal(r).ID, request.RecipientUserID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusCreated, chat)
}

type createGroupRequest struct {
	RecipientUserIDs []string `json:"recipient_user_ids"`
	NameGroup        string   `json:"name_group"`
	ImageGroup       *string  `json:"image_group,omitempty"`
}

// @Summary Create group chat
// @ID create-group-chat
// @Accept json
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param Group body createGroupRequest true "Group"
// @Success 201 {object} model.Chat
// @Failure 422 {object} httputils.ErrorResponse
// @Router /chats/create/group [post]
func (h *ChatHandler) createGroup(w http.ResponseWriter, r *http.Request) {
	var request createGroupRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	chat, err := h.chats.CreateGroup(r.Context(), Principal(r).ID,
		request.RecipientUserIDs, request.NameGroup, request.ImageGroup)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusCreated, chat)
}

// @Summary List chats
// @ID list-chats
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param cursor query string false "Cursor"
// @Param limit query int false "Page size"
// @Param user_id_exists query string false "Only chats shared with this user"
// @Success 200 {object} repository.Page[model.Chat]
// @Router /chats [get]
func (h *ChatHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.chats.List(r.Context(), Principal(r).ID,
		queryCursor(r), queryLimit(r), r.URL.Query().Get("user_id_exists"))
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, page)
}

// @Summary List chats with recently deleted messages
// @ID list-deleted-chats
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param cursor query string false "Cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} repository.Page[model.Chat]
// @Router /chats/deleted [get]
func (h *ChatHandler) listDeleted(w http.ResponseWriter, r *http.Request) {
	page, err := h.chats.ListDeleted(r.Context(), Principal(r).ID, queryCursor(r), queryLimit(r))
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, page)
}

// @Summary Get chat
// @ID get-chat
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Success 200 {object} model.Chat
// @Failure 403 {object} httputils.ErrorResponse
// @Failure 404 {object} httputils.ErrorResponse
// @Router /chats/{chat_id} [get]
func (h *ChatHandler) get(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chats.Get(r.Context(), Principal(r).ID, mux.Vars(r)["chat_id"])
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, chat)
}

type updateChatRequest struct {
	NameGroup string `json:"name_group"`
}

// @Summary Rename group chat
// @ID update-chat
// @Accept json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param Name body updateChatRequest true "New name"
// @Success 200
// @Failure 400 {object} httputils.ErrorResponse
// @Router /chats/{chat_id} [patch]
func (h *ChatHandler) updateName(w http.ResponseWriter, r *http.Request) {
	var request updateChatRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	err := h.chats.UpdateGroupName(r.Context(), Principal(r).ID,
		mux.Vars(r)["chat_id"], request.NameGroup)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, nil)
}

// @Summary Upload group chat image
// @ID upload-chat-image
// @Accept mpfd
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param image formData file true "Image"
// @Success 200 {object} map[string]string
// @Failure 503 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/upload-image [patch]
func (h *ChatHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		httputils.ResponseError(w, apperr.Unavailable("uploads are disabled"))
		return
	}
	chatID := mux.Vars(r)["chat_id"]

	// Членство проверяем до загрузки, иначе чужак оставит сироту в хранилище.
	if _, err := h.chats.Get(r.Context(), Principal(r).ID, chatID); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	file, header, err := formFile(r, "image")
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	defer file.Close()

	url, err := h.storage.Upload(r.Context(), chatID, header.Filename,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		httputils.ResponseError(w, apperr.Internal(err))
		return
	}

	if err := h.chats.SetGroupImage(r.Context(), Principal(r).ID, chatID, url); err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]string{"image_url": url})
}

// @Summary Upload attachment
// @Description Upload a file and receive its storage path for a file message
// @ID upload-attachment
// @Accept mpfd
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param file formData file true "File"
// @Success 200 {object} map[string]string
// @Failure 503 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/upload-attachments [post]
func (h *ChatHandler) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		httputils.ResponseError(w, apperr.Unavailable("uploads are disabled"))
		return
	}
	chatID := mux.Vars(r)["chat_id"]

	// Только участник может грузить вложения в чат.
	if _, err := h.chats.Get(r.Context(), Principal(r).ID, chatID); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	file, header, err := formFile(r, "file")
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	defer file.Close()

	url, err := h.storage.Upload(r.Context(), chatID, header.Filename,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		httputils.ResponseError(w, apperr.Internal(err))
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]string{
		"file_name": header.Filename,
		"file_path": url,
	})
}

// @Summary Send typing status
// @ID typing-status
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Param is_typing query bool true "Typing flag"
// @Success 200
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/typing-status [post]
func (h *ChatHandler) typing(w http.ResponseWriter, r *http.Request) {
	isTyping, _ := strconv.ParseBool(r.URL.Query().Get("is_typing"))

	err := h.chats.Typing(r.Context(), Principal(r).ID, mux.Vars(r)["chat_id"], isTyping)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, nil)
}
