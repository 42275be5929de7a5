package repository

import (
	"context"
	"errors"

	"gameserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// справочник типов игр
type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

// возвращает игру по имени
func (r *GameRepository) GetGame(ctx context.Context, name string) (*domain.Game, error) {
	var g domain.Game
	var rules []byte
	err := r.db.QueryRow(ctx, `
		SELECT name, owner, display_name, rules, min_players, max_players, is_active
		FROM games
		WHERE name = $1
	`, name).Scan(&g.Name, &g.Owner, &g.DisplayName, &rules, &g.MinPlayers, &g.MaxPlayers, &g.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, err
	}
	g.Rules = rules
	return &g, nil
}

// возвращает все игры (или только активные)
func (r *GameRepository) ListGames(ctx context.Context, activeOnly bool) ([]*domain.Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, owner, display_name, rules, min_players, max_players, is_active
		FROM games
		WHERE is_active OR NOT $1
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		var g domain.Game
		var rules []byte
		if err := rows.Scan(&g.Name, &g.Owner, &g.DisplayName, &rules, &g.MinPlayers, &g.MaxPlayers, &g.IsActive); err != nil {
			return nil, err
		}
		g.Rules = rules
		games = append(games, &g)
	}
	return games, rows.Err()
}

// добавляет отсутствующие игры, существующие записи не трогает
func (r *GameRepository) SeedGames(ctx context.Context, games []*domain.Game) error {
	batch := &pgx.Batch{}
	for _, g := range games {
		batch.Queue(`
			INSERT INTO games (name, owner, display_name, rules, min_players, max_players, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO NOTHING
		`, g.Name, g.Owner, g.DisplayName, []byte(g.Rules), g.MinPlayers, g.MaxPlayers, g.IsActive)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// создает или полностью перезаписывает описание игры
func (r *GameRepository) UpsertGame(ctx context.Context, g *domain.Game) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO games (name, owner, display_name, rules, min_players, max_players, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			owner        = EXCLUDED.owner,
			display_name = EXCLUDED.display_name,
			rules        = EXCLUDED.rules,
			min_players  = EXCLUDED.min_players,
			max_players  = EXCLUDED.max_players,
			is_active    = EXCLUDED.is_active
	`, g.Name, g.Owner, g.DisplayName, []byte(g.Rules), g.MinPlayers, g.MaxPlayers, g.IsActive)
	return err
}

// включает или выключает игру в каталоге
func (r *GameRepository) SetGameActive(ctx context.Context, name string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE games SET is_active = $2 WHERE name = $1`, name, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}
