package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/game"
	"gameserver/internal/logger"
)

// каталог типов игр
type CatalogService struct {
	store   GameStore
	rules   *game.Registry
	timeout time.Duration
	admins  map[string]struct{}
}

func NewCatalogService(store GameStore, rules *game.Registry, timeout time.Duration) *CatalogService {
	return &CatalogService{store: store, rules: rules, timeout: timeout}
}

// SetAdmins задает пользователей, которые могут менять любые игры каталога
func (s *CatalogService) SetAdmins(ids []string) {
	s.admins = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.admins[id] = struct{}{}
	}
}

// Seed проверяет описания игр реестром правил и добавляет недостающие
func (s *CatalogService) Seed(ctx context.Context, games []*domain.Game) error {
	for _, g := range games {
		if err := s.rules.CheckGame(g); err != nil {
			return fmt.Errorf("seed %s: %w", g.Name, err)
		}
	}
	if err := storeCall(ctx, s.timeout, "seed games", func(ctx context.Context) error {
		return s.store.SeedGames(ctx, games)
	}); err != nil {
		return err
	}
	logger.Info("game catalogue seeded", "games", s.rules.Names())
	return nil
}

// Active возвращает активные игры, для которых есть модуль правил
func (s *CatalogService) Active(ctx context.Context) ([]*domain.Game, error) {
	var all []*domain.Game
	err := storeCall(ctx, s.timeout, "list games", func(ctx context.Context) error {
		var err error
		all, err = s.store.ListGames(ctx, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	games := make([]*domain.Game, 0, len(all))
	for _, g := range all {
		if err := s.rules.CheckGame(g); err != nil {
			logger.Warn("game is not playable", "game", g.Name, "error", err)
			continue
		}
		games = append(games, g)
	}
	return games, nil
}

// Get возвращает игру по имени (в том числе выключенную)
func (s *CatalogService) Get(ctx context.Context, name string) (*domain.Game, error) {
	var g *domain.Game
	err := storeCall(ctx, s.timeout, "get game", func(ctx context.Context) error {
		var err error
		g, err = s.store.GetGame(ctx, name)
		return err
	})
	return g, err
}

// Upsert создает игру или перезаписывает ее описание. Новую игру получает во
// владение автор; существующую может менять ее владелец или администратор.
func (s *CatalogService) Upsert(ctx context.Context, actorID string, g *domain.Game) (*domain.Game, error) {
	if err := s.rules.CheckGame(g); err != nil {
		return nil, err
	}

	cur, err := s.Get(ctx, g.Name)
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		g.Owner = actorID
	case err != nil:
		return nil, err
	default:
		if !s.canEdit(actorID, cur) {
			return nil, domain.ErrNotGameOwner
		}
		g.Owner = cur.Owner
	}

	if err := storeCall(ctx, s.timeout, "upsert game", func(ctx context.Context) error {
		return s.store.UpsertGame(ctx, g)
	}); err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Info("game saved", "game", g.Name, "by", actorID,
		"min_players", g.MinPlayers, "max_players", g.MaxPlayers, "active", g.IsActive)
	return g, nil
}

// SetActive включает или выключает игру. Выключенная игра не принимает новые
// матчи и входы, уже идущие партии доигрываются.
func (s *CatalogService) SetActive(ctx context.Context, actorID, name string, active bool) (*domain.Game, error) {
	g, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(actorID, g) {
		return nil, domain.ErrNotGameOwner
	}
	if active {
		if err := s.rules.CheckGame(g); err != nil {
			return nil, err
		}
	}

	if err := storeCall(ctx, s.timeout, "set game active", func(ctx context.Context) error {
		return s.store.SetGameActive(ctx, name, active)
	}); err != nil {
		return nil, err
	}
	g.IsActive = active
	logger.WithContext(ctx).Info("game activity changed", "game", name, "by", actorID, "active", active)
	return g, nil
}

func (s *CatalogService) canEdit(actorID string, g *domain.Game) bool {
	if _, ok := s.admins[actorID]; ok {
		return true
	}
	return g.Owner != "" && g.Owner == actorID
}
