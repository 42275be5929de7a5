package handlers

import (
	"encoding/json"
	"net/http"

	"gameserver/internal/domain"

	"github.com/gin-gonic/gin"
)

type gameRequest struct {
	Name        string          `json:"name" binding:"required"`
	DisplayName string          `json:"display_name" binding:"required"`
	Rules       json.RawMessage `json:"rules"`
	MinPlayers  int             `json:"min_players" binding:"required"`
	MaxPlayers  int             `json:"max_players" binding:"required"`
	IsActive    *bool           `json:"is_active"`
}

type gameActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// список активных игр
func (h *Handler) ListGames(c *gin.Context) {
	games, err := h.Catalog.Active(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// создание или изменение игры владельцем (или админом)
func (h *Handler) UpsertGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req gameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game"})
		return
	}
	rules := req.Rules
	if len(rules) == 0 {
		rules = json.RawMessage(`{}`)
	}
	g := &domain.Game{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Rules:       rules,
		MinPlayers:  req.MinPlayers,
		MaxPlayers:  req.MaxPlayers,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	saved, err := h.Catalog.Upsert(h.ctx(c), userID, g)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// PATCH /games/:name {"is_active": false}
func (h *Handler) SetGameActive(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req gameActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active required"})
		return
	}

	g, err := h.Catalog.SetActive(h.ctx(c), userID, c.Param("name"), *req.IsActive)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}
