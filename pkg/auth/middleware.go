package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware middleware для проверки токена через сервис авторизации
type AuthMiddleware struct {
	validator TokenValidator
	enabled   bool
}

// NewAuthMiddleware создает новый middleware для проверки авторизации
func NewAuthMiddleware(validator TokenValidator, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		enabled:   enabled,
	}
}

// AuthRequired middleware требует авторизации для доступа к endpoint
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "отсутствует токен авторизации"})
			c.Abort()
			return
		}

		if _, err := m.validator.Authenticate(c.Request.Context(), authHeader); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "недействительный токен: " + err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}
