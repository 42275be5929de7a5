package service

import (
	"context"
	"errors"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/logger"
)

const (
	defaultLeaderboardSize = 20
	maxLeaderboardSize     = 100
)

// профили игроков и таблица лидеров
type ProfileService struct {
	store   ProfileStore
	games   GameStore
	audit   *AuditService
	timeout time.Duration
}

func NewProfileService(store ProfileStore, games GameStore, audit *AuditService, timeout time.Duration) *ProfileService {
	return &ProfileService{store: store, games: games, audit: audit, timeout: timeout}
}

// GetOrCreate идемпотентно заводит профиль при первом входе.
// Записи рейтинга не создаются до первого завершенного матча.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID, displayName string) (*domain.User, error) {
	var u *domain.User
	var created bool
	err := storeCall(ctx, s.timeout, "get or create user", func(ctx context.Context) error {
		var err error
		u, created, err = s.store.GetOrCreateUser(ctx, userID, displayName)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		logger.Info("profile created", "user_id", userID)
		if s.audit != nil {
			s.audit.LogProfileCreate(ctx, userID, displayName)
		}
	}
	return u, nil
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u *domain.User
	err := storeCall(ctx, s.timeout, "get user", func(ctx context.Context) error {
		var err error
		u, err = s.store.GetUser(ctx, userID)
		return err
	})
	return u, err
}

// Leaderboard возвращает лучших игроков в типе игры
func (s *ProfileService) Leaderboard(ctx context.Context, gameType string, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	err := storeCall(ctx, s.timeout, "get game", func(ctx context.Context) error {
		_, err := s.games.GetGame(ctx, gameType)
		return err
	})
	if errors.Is(err, domain.ErrGameNotFound) {
		return nil, domain.ErrUnknownGame
	}
	if err != nil {
		return nil, err
	}

	var top []*domain.LeaderboardEntry
	err = storeCall(ctx, s.timeout, "top by rating", func(ctx context.Context) error {
		var err error
		top, err = s.store.TopByRating(ctx, gameType, limit)
		return err
	})
	return top, err
}
