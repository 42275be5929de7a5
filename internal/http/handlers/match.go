package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"gameserver/internal/domain"
	"gameserver/internal/logger"
	"gameserver/internal/service"

	"github.com/gin-gonic/gin"
)

type createMatchRequest struct {
	GameType string `json:"game_type" binding:"required"`
}

type moveRequest struct {
	Move json.RawMessage `json:"move" binding:"required"`
}

// создание матча текущим пользователем
func (h *Handler) CreateMatch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game_type required"})
		return
	}

	// создание не повторяем: при таймауте матч мог уже записаться
	m, err := h.Matches.CreateMatch(h.ctx(c), req.GameType, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.Matches.ViewFor(m, userID))
}

func (h *Handler) GetMatch(c *gin.Context) {
	userID, _ := getUserID(c)

	m, err := h.Matches.GetMatch(h.ctx(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Matches.ViewFor(m, userID))
}

// список матчей: ?status=WAITING&game=tic-tac-toe&player=me&limit=20
func (h *Handler) ListMatches(c *gin.Context) {
	userID, _ := getUserID(c)

	f := domain.MatchFilter{
		Status:   domain.MatchStatus(c.Query("status")),
		GameType: c.Query("game"),
		PlayerID: c.Query("player"),
	}
	if f.Status != "" && !f.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if f.PlayerID == "me" {
		f.PlayerID = userID
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		f.Limit = limit
	}

	matches, err := h.Matches.ListMatches(h.ctx(c), f)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]*domain.Match, 0, len(matches))
	for _, m := range matches {
		views = append(views, h.Matches.ViewFor(m, userID))
	}
	c.JSON(http.StatusOK, gin.H{"matches": views})
}

func (h *Handler) JoinMatch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	matchID := c.Param("id")
	m, err := service.Retry(h.ctx(c), h.Attempts, "join", func(ctx context.Context) (*domain.Match, error) {
		return h.Matches.JoinMatch(ctx, matchID, userID)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Matches.ViewFor(m, userID))
}

func (h *Handler) SubmitMove(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "move required"})
		return
	}

	matchID := c.Param("id")
	m, err := service.Retry(h.ctx(c), h.Attempts, "move", func(ctx context.Context) (*domain.Match, error) {
		return h.Matches.SubmitMove(ctx, matchID, userID, req.Move)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Matches.ViewFor(m, userID))
}

func (h *Handler) AbandonMatch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	matchID := c.Param("id")
	m, err := service.Retry(h.ctx(c), h.Attempts, "abandon", func(ctx context.Context) (*domain.Match, error) {
		return h.Matches.AbandonMatch(ctx, matchID, userID)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Matches.ViewFor(m, userID))
}

// контекст запроса с атрибутами для логов
func (h *Handler) ctx(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if uid, ok := getUserID(c); ok {
		ctx = logger.ContextWith(ctx, "user_id", uid)
	}
	if id := c.Param("id"); id != "" {
		ctx = logger.ContextWith(ctx, "match_id", id)
	}
	return ctx
}
