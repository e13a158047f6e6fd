package auth

import (
	"net/http"
	"strings"

	"station_queue/internal/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ParticipantKey — ключ gin.Context с идентификатором участника.
const ParticipantKey = "participantID"

// ParticipantMiddleware проверяет токен участника из заголовка Authorization
// или, для WebSocket, из параметра token.
func ParticipantMiddleware(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "NO_AUTH_HEADER",
				Message: "Требуется токен участника",
			})
			return
		}

		participantID, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Неверный или просроченный токен",
			})
			return
		}

		c.Set(ParticipantKey, participantID)
		c.Next()
	}
}

// AdminMiddleware сверяет X-Admin-Secret с bcrypt-хешем ADMIN_SECRET_HASH.
// Проверка выполняется до любого изменяющего вызова.
func AdminMiddleware(secretHash []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-Admin-Secret")
		if secret == "" || len(secretHash) == 0 ||
			bcrypt.CompareHashAndPassword(secretHash, []byte(secret)) != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "Доступ запрещён",
			})
			return
		}
		c.Next()
	}
}

// ParticipantID возвращает участника, установленного ParticipantMiddleware.
func ParticipantID(c *gin.Context) string {
	return c.GetString(ParticipantKey)
}
