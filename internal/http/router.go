package http

import (
	"context"
	"net/http"
	"time"

	"gameserver/internal/http/handlers"
	"gameserver/internal/http/middleware"
	"gameserver/internal/metrics"
	"gameserver/internal/service"
	"gameserver/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger - проверка доступности хранилища для /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps - все, что нужно роутеру
type Deps struct {
	Handler       *handlers.Handler
	Auth          *service.JWTAuth
	Hub           *ws.Hub
	RateLimiter   *middleware.RateLimiter
	Store         Pinger
	AllowedOrigin string
	Version       string
}

// NewRouter собирает gin.Engine со всеми маршрутами
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware(), middleware.CORS(d.AllowedOrigin))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := d.Handler

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if d.Store != nil {
			if err := d.Store.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": d.Version})
	})

	if d.Hub != nil {
		r.GET("/ws/matches/:id", ws.NewWSHandler(d.Hub, d.Auth, d.AllowedOrigin).HandleWS())
	}

	// публичные маршруты лимитируются по IP, авторизованные - по пользователю
	public := r.Group("/api", d.RateLimiter.Middleware())
	public.GET("/games", h.ListGames)
	public.GET("/leaderboard/:game", h.GetLeaderboard)
	public.GET("/users/:id", h.Profile)

	authed := r.Group("/api", middleware.Auth(d.Auth), d.RateLimiter.Middleware())
	authed.POST("/games", h.UpsertGame)
	authed.PATCH("/games/:name", h.SetGameActive)
	authed.GET("/me", h.MyProfile)
	authed.GET("/me/audit", h.MyAudit)
	authed.GET("/matches", h.ListMatches)
	authed.POST("/matches", h.CreateMatch)
	authed.GET("/matches/:id", h.GetMatch)
	authed.POST("/matches/:id/join", h.JoinMatch)
	authed.POST("/matches/:id/moves", h.SubmitMove)
	authed.POST("/matches/:id/abandon", h.AbandonMatch)
}
