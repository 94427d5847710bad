package auth

import (
	"time"

	"github.com/golang-jwt/jwt"

	"lastochka/messenger/internal/apperr"
)

// Audience метки токенов: доступ к API и открытие event-stream.
const (
	AudienceAPI = "messenger-api"
)

const tokenTTL = 24 * time.Hour

type Claims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

// TokenManager подписывает и проверяет bearer-токены. Ключ инжектируется
// из конфигурации, глобального состояния нет.
type TokenManager struct {
	key []byte
}

func NewTokenManager(key string) *TokenManager {
	return &TokenManager{key: []byte(key)}
}

func (m *TokenManager) GenerateToken(userID string) (string, error) {
	claims := &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Audience:  AudienceAPI,
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// ValidateToken разбирает токен и сверяет подпись, срок и audience.
func (m *TokenManager) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.key, nil
	})
	if err != nil {
		return nil, apperr.Unauthenticated("invalid token")
	}

	if !tkn.Valid {
		return nil, apperr.Unauthenticated("invalid token")
	}

	if !claims.VerifyAudience(AudienceAPI, true) {
		return nil, apperr.Unauthenticated("wrong token audience")
	}

	return claims, nil
}
