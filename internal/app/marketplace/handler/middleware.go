package handler

import (
	"net/http"
	"strings"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware проверяет JWT токены на входе
// Workflows дальше доверяют роли из токена как есть
type AuthMiddleware struct {
	jwtManager *util.JWTManager
}

func NewAuthMiddleware(jwtManager *util.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// Authenticate проверяет заголовок Authorization и кладет
// аутентифицированного пользователя в контекст запроса
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user", entity.AuthUser{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		})

		c.Next()
	}
}

// RequireRole пропускает только перечисленные роли
// Используется после Authenticate
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Insufficient permissions"})
		c.Abort()
	}
}

// currentUser достает аутентифицированного пользователя из контекста
func currentUser(c *gin.Context) (entity.AuthUser, bool) {
	value, exists := c.Get("user")
	if !exists {
		return entity.AuthUser{}, false
	}

	user, ok := value.(entity.AuthUser)
	if !ok {
		return entity.AuthUser{}, false
	}

	return user, true
}
