package ws

import (
	"net/http"

	"gameserver/internal/logger"
	"gameserver/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// содержит зависимости для обработки WebSocket
type WSHandler struct {
	Hub           *Hub
	Auth          *service.JWTAuth
	AllowedOrigin string
}

func NewWSHandler(hub *Hub, auth *service.JWTAuth, allowedOrigin string) *WSHandler {
	return &WSHandler{
		Hub:           hub,
		Auth:          auth,
		AllowedOrigin: allowedOrigin,
	}
}

// HandleWS подключает зрителя к матчу :id. Токен передается в query,
// т.к. браузер не дает выставить заголовки при апгрейде.
func (h *WSHandler) HandleWS() gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		claims, err := h.Auth.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(claims.Subject, c.Param("id"), conn, h.Hub)
		go client.Run()
	}
}
