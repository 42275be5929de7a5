package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameserver/internal/domain"
)

// MatchStore - то, что сервису матчей нужно от хранилища.
// CommitMatch обязан быть сравнением-с-заменой по Match.Version и User.Version.
type MatchStore interface {
	GetGame(ctx context.Context, name string) (*domain.Game, error)
	GetMatch(ctx context.Context, id string) (*domain.Match, error)
	ListMatches(ctx context.Context, f domain.MatchFilter) ([]*domain.Match, error)
	InsertMatch(ctx context.Context, m *domain.Match) error
	CommitMatch(ctx context.Context, m *domain.Match, expectedVersion int64, users []*domain.User) error
	GetUsers(ctx context.Context, ids []string) (map[string]*domain.User, error)
}

type ProfileStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetOrCreateUser(ctx context.Context, id, displayName string) (*domain.User, bool, error)
	TopByRating(ctx context.Context, gameType string, limit int) ([]*domain.LeaderboardEntry, error)
}

type GameStore interface {
	GetGame(ctx context.Context, name string) (*domain.Game, error)
	ListGames(ctx context.Context, activeOnly bool) ([]*domain.Game, error)
	SeedGames(ctx context.Context, games []*domain.Game) error
	UpsertGame(ctx context.Context, g *domain.Game) error
	SetGameActive(ctx context.Context, name string, active bool) error
}

type AuditStore interface {
	AppendAudit(ctx context.Context, log *domain.AuditLog) error
	ListAuditByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

// ошибки хранилища, которые несут смысл для вызывающего и отдаются как есть
var passthroughErrors = []error{
	domain.ErrConflict,
	domain.ErrMatchNotFound,
	domain.ErrUserNotFound,
	domain.ErrGameNotFound,
}

// storeCall ограничивает обращение к хранилищу таймаутом и приводит ошибку
// к таксономии: истекший срок -> ErrTimeout, прочее -> ErrStoreUnavailable
func storeCall(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	for _, known := range passthroughErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrTimeout, op)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
