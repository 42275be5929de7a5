package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// лучшие игроки в типе игры
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	gameType := c.Param("game")
	top, err := h.Profiles.Leaderboard(c.Request.Context(), gameType, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": top,
		"game":        gameType,
	})
}
