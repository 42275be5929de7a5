package handlers

import (
	"context"
	"errors"
	"net/http"

	"gameserver/internal/domain"
	"gameserver/internal/game"
	"gameserver/internal/http/middleware"
	"gameserver/internal/logger"
	"gameserver/internal/rating"
	"gameserver/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler держит сервисы, которые обслуживают HTTP API
type Handler struct {
	Matches  *service.MatchService
	Profiles *service.ProfileService
	Catalog  *service.CatalogService
	Audit    *service.AuditService
	Attempts uint
}

func getUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.CtxUserID)
	return uid, uid != ""
}

// соответствие ошибок домена HTTP-статусам и машинным кодам
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{game.ErrIllegalMove, http.StatusBadRequest, "illegal_move"},
	{game.ErrNotYourTurn, http.StatusConflict, "not_your_turn"},
	{domain.ErrAlreadyJoined, http.StatusConflict, "already_joined"},
	{domain.ErrFull, http.StatusConflict, "full"},
	{domain.ErrFinished, http.StatusConflict, "finished"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrUnknownGame, http.StatusNotFound, "unknown_game"},
	{domain.ErrMatchNotFound, http.StatusNotFound, "match_not_found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{domain.ErrGameNotFound, http.StatusNotFound, "game_not_found"},
	{domain.ErrNotParticipant, http.StatusForbidden, "not_participant"},
	{domain.ErrNotGameOwner, http.StatusForbidden, "not_game_owner"},
	{domain.ErrInvalidGame, http.StatusBadRequest, "invalid_game"},
	{domain.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
}

// клиент закрыл соединение до ответа (как в nginx)
const statusClientClosedRequest = 499

// writeError отвечает статусом по таксономии ошибок. Неожиданные ошибки
// (в том числе rating.ErrInvalidInput) логируются и отдаются как 500.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		logger.WithContext(c.Request.Context()).Debug("request canceled by client", "path", c.FullPath())
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": err.Error(), "code": e.code})
			return
		}
	}

	log := logger.WithContext(c.Request.Context())
	if errors.Is(err, rating.ErrInvalidInput) {
		log.Error("rating invariant violated", "path", c.FullPath(), "error", err)
	} else {
		log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
}
