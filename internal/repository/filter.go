package repository

import (
	"gameserver/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

const matchColumns = "id, game_type, players, status, current_player, game_state, winner, rating_changes, created_at, updated_at, completed_at, version"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// нормализует лимит выборки
func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// собирает SELECT по фильтру; новые матчи первыми
func buildMatchListQuery(f domain.MatchFilter) sq.SelectBuilder {
	q := psql.Select(matchColumns).From("matches")

	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.GameType != "" {
		q = q.Where(sq.Eq{"game_type": f.GameType})
	}
	if f.PlayerID != "" {
		q = q.Where("? = ANY(players)", f.PlayerID)
	}
	if !f.CreatedBefore.IsZero() {
		q = q.Where(sq.Lt{"created_at": f.CreatedBefore})
	}
	if !f.UpdatedBefore.IsZero() {
		q = q.Where(sq.Lt{"updated_at": f.UpdatedBefore})
	}

	return q.OrderBy("created_at DESC", "id").Limit(uint64(listLimit(f.Limit)))
}
