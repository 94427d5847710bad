package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/pkg/auth"
	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

type UserHandler struct {
	users  service.UserService
	tokens *auth.TokenManager
}

func NewUserHandler(users service.UserService, tokens *auth.TokenManager) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

// RegisterPublicRoutes вешает маршруты, не проходящие через шлюз доступа.
// Восстановление аккаунта здесь же: удалённого принципала шлюз не пропустит.
func (h *UserHandler) RegisterPublicRoutes(router *mux.Router) {
	router.HandleFunc("/register", h.register).Methods("POST", "OPTIONS")
	router.HandleFunc("/login", h.login).Methods("POST", "OPTIONS")
	router.HandleFunc("/users/me/recover", h.recoverMe).Methods("POST", "OPTIONS")
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/me/password", h.changePassword).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/users/me", h.deleteMe).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/users/{id}", h.getUser).Methods("GET", "OPTIONS")
}

type tokenResponse struct {
	Token string `json:"token"`
}

// @Summary Register
// @Description Create an account and receive a bearer token
// @ID register
// @Accept json
// @Produce json
// @Param Credentials body service.RegisterInput true "Credentials"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 409 {object} httputils.ErrorResponse
// @Router /register [post]
func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), input)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// @Summary Login
// @Description Exchange credentials for a bearer token
// @ID login
// @Accept json
// @Produce json
// @Param Credentials body loginRequest true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} httputils.ErrorResponse
// @Router /login [post]
func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	user, err := h.users.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// @Summary Change password
// @ID change-password
// @Accept json
// @Param Bearer header string true "Auth Token"
// @Param Passwords body changePasswordRequest true "Passwords"
// @Success 200
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 401 {object} httputils.ErrorResponse
// @Router /users/me/password [patch]
func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var request changePasswordRequest
	if err := decodeJSON(r, &request); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	principal := Principal(r)
	if err := h.users.ChangePassword(r.Context(), principal.ID, request.OldPassword, request.NewPassword); err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, nil)
}

// @Summary Delete account
// @Description Soft-delete the authenticated account
// @ID delete-me
// @Param Bearer header string true "Auth Token"
// @Success 200
// @Router /users/me [delete]
func (h *UserHandler) deleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.SoftDelete(r.Context(), Principal(r).ID); err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, nil)
}

// @Summary Recover account
// @ID recover-me
// @Param Bearer header string true "Auth Token"
// @Success 200
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 401 {object} httputils.ErrorResponse
// @Router /users/me/recover [post]
func (h *UserHandler) recoverMe(w http.ResponseWriter, r *http.Request) {
	tokenStr := extractToken(r)
	if tokenStr == "" {
		httputils.ResponseError(w, apperr.Unauthenticated("missing token"))
		return
	}
	claims, err := h.tokens.ValidateToken(tokenStr)
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}

	if err := h.users.Recover(r.Context(), claims.UserID); err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, nil)
}

// @Summary Get user
// @ID get-user
// @Produce json
// @Param Bearer header string true "Auth Token"
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} httputils.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, user)
}
