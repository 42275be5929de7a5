package middleware

import (
	"net/http"
	"strings"

	"gameserver/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "uid"
	CtxName   = "name"
)

// Auth проверяет Bearer-токен и кладет субъект в контекст запроса
func Auth(auth *service.JWTAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		claims, err := auth.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxName, claims.Name)
		c.Next()
	}
}
