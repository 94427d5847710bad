package handler

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"lastochka/messenger/internal/apperr"
	"lastochka/messenger/internal/model"
	"lastochka/messenger/internal/pkg/auth"
	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/service"
)

type contextKey int

const principalKey contextKey = iota

// AuthMiddleware резолвит bearer-токен в принципала и попутно продвигает
// last_online. Токен принимается из Authorization либо из query ?token= —
// EventSource в браузере не умеет ставить заголовки.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	users  service.UserService
	log    *zap.Logger
}

func NewAuthMiddleware(tokens *auth.TokenManager, users service.UserService, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, log: log}
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractToken(r)
		if tokenStr == "" {
			httputils.ResponseError(w, apperr.Unauthenticated("missing token"))
			return
		}

		claims, err := m.tokens.ValidateToken(tokenStr)
		if err != nil {
			httputils.ResponseError(w, err)
			return
		}

		user, err := m.users.ResolvePrincipal(r.Context(), claims.UserID)
		if err != nil {
			httputils.ResponseError(w, err)
			return
		}

		// Презенс не блокирует запрос: ошибка уже залогирована сервисом.
		_ = m.users.TouchPresence(r.Context(), user)

		ctx := context.WithValue(r.Context(), principalKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Principal возвращает аутентифицированного пользователя запроса.
func Principal(r *http.Request) *model.User {
	user, _ := r.Context().Value(principalKey).(*model.User)
	return user
}
