package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

type BlackListHandler struct {
	blacklist service.BlackListService
}

func NewBlackListHandler(blacklist service.BlackListService) *BlackListHandler {
	return &BlackListHandler{blacklist: blacklist}
}

func (h *BlackListHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/black-list", h.block).Methods("POST", "OPTIONS")
	router.HandleFunc("/black-list", h.unblock).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/black-list", h.list).Methods("GET", "OPTIONS")
}

type blackListRequest struct {
	UserID string `json:"user_id"`
}

// @Summary Block user
// @ID block-user
// @Accept json
// @Param Bearer header string true "Auth Token"
// @Param User body blackListRequest true "User to block"
// @Success 201
// @Failure 400 {object} httputils.ErrorResponse
// @Router /black-list [post]
func (h *BlackListHandler) block(w http.ResponseWriter, r *http.Request) {
	var request blackListRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	if err := h.blacklist.Block(r.Context(), Principal(r).ID, request.UserID); err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusCreated, nil)
}

// @Summary Unblock user
// @ID unblock-user
// @Accept json
// @Param Bearer header string true "Auth Token"
// @Param User body blackListRequest true "User to unblock"
// @Success 204
// @Failure 404 {object} httputils.ErrorResponse
// @Router /black-list [delete]
func (h *BlackListHandler) unblock(w http.ResponseWriter, r *http.Request) {
	var request blackListRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	if err := h.blacklist.Unblock(r.Context(), Principal(r).ID, request.UserID); err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusNoContent, nil)
}

// @Summary List blocked users
// @ID list-blocked
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param cursor query string false "Cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} repository.Page[model.User]
// @Router /black-list [get]
func (h *BlackListHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.blacklist.List(r.Context(), Principal(r).ID, queryCursor(r), queryLimit(r))
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, page)
}
