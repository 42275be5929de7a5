package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gameserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, display_name, ratings, games_played, games_won, version, created_at, updated_at`

// профили игроков
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// возвращает профиль по id
func (r *UserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// возвращает найденные профили; отсутствующих id в результате нет
func (r *UserRepository) GetUsers(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[string]*domain.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

// идемпотентно создает профиль; created=false, если он уже был
func (r *UserRepository) GetOrCreateUser(ctx context.Context, id, displayName string) (*domain.User, bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO users (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, displayName)
	if err != nil {
		return nil, false, err
	}
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return u, tag.RowsAffected() == 1, nil
}

// лучшие игроки по рейтингу в типе игры
func (r *UserRepository) TopByRating(ctx context.Context, gameType string, limit int) ([]*domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, display_name,
			(ratings->>$1)::int,
			COALESCE((games_played->>$1)::int, 0),
			COALESCE((games_won->>$1)::int, 0)
		FROM users
		WHERE ratings ? $1
		ORDER BY (ratings->>$1)::int DESC, id
		LIMIT $2
	`, gameType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []*domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Rating, &e.GamesPlayed, &e.GamesWon); err != nil {
			return nil, err
		}
		e.Rank = len(top) + 1
		top = append(top, &e)
	}
	return top, rows.Err()
}

// сохраняет профиль внутри транзакции со сравнением версии.
// Version == 0 - профиля еще нет в базе, вставляем.
func (r *UserRepository) saveUserWithTx(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	ratings, err := json.Marshal(u.Ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings: %w", err)
	}
	played, err := json.Marshal(u.GamesPlayed)
	if err != nil {
		return fmt.Errorf("marshal games_played: %w", err)
	}
	won, err := json.Marshal(u.GamesWon)
	if err != nil {
		return fmt.Errorf("marshal games_won: %w", err)
	}

	if u.Version == 0 {
		tag, err := tx.Exec(ctx, `
			INSERT INTO users (id, display_name, ratings, games_played, games_won, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6)
			ON CONFLICT (id) DO NOTHING
		`, u.ID, u.DisplayName, ratings, played, won, u.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrConflict
		}
		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET ratings = $1, games_played = $2, games_won = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`, ratings, played, won, u.UpdatedAt, u.ID, u.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var ratings, played, won []byte
	if err := row.Scan(&u.ID, &u.DisplayName, &ratings, &played, &won, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ratings, &u.Ratings); err != nil {
		return nil, fmt.Errorf("decode ratings of %s: %w", u.ID, err)
	}
	if err := json.Unmarshal(played, &u.GamesPlayed); err != nil {
		return nil, fmt.Errorf("decode games_played of %s: %w", u.ID, err)
	}
	if err := json.Unmarshal(won, &u.GamesWon); err != nil {
		return nil, fmt.Errorf("decode games_won of %s: %w", u.ID, err)
	}
	return &u, nil
}
