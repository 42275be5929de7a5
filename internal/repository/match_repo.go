package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gameserver/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// матчи и атомарная фиксация их переходов
type MatchRepository struct {
	db    *pgxpool.Pool
	users *UserRepository
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db, users: NewUserRepository(db)}
}

// возвращает матч по id
func (r *MatchRepository) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	m, err := scanMatch(qRow(ctx, r.db, psql.Select(matchColumns).From("matches").Where(sq.Eq{"id": id})))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

// список матчей по фильтру
func (r *MatchRepository) ListMatches(ctx context.Context, f domain.MatchFilter) ([]*domain.Match, error) {
	rows, err := qQuery(ctx, r.db, buildMatchListQuery(f))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// сохраняет новый матч; версия начинается с 1
func (r *MatchRepository) InsertMatch(ctx context.Context, m *domain.Match) error {
	changes, err := marshalChanges(m.RatingChanges)
	if err != nil {
		return err
	}

	m.Version = 1
	_, err = r.db.Exec(ctx, `
		INSERT INTO matches (id, game_type, players, status, current_player, game_state, winner, rating_changes, created_at, updated_at, completed_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, m.ID, m.GameType, m.Players, string(m.Status), nullString(m.CurrentPlayer), rawJSON(m.GameState),
		m.Winner, changes, m.CreatedAt, m.UpdatedAt, m.CompletedAt, m.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// CommitMatch записывает новое состояние матча, если его версия в базе все еще
// равна expectedVersion, и в той же транзакции сохраняет профили игроков.
// Любое расхождение версий откатывает всё и возвращает domain.ErrConflict.
func (r *MatchRepository) CommitMatch(ctx context.Context, m *domain.Match, expectedVersion int64, users []*domain.User) error {
	changes, err := marshalChanges(m.RatingChanges)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := qExecTx(ctx, tx, psql.Update("matches").
		Set("players", m.Players).
		Set("status", string(m.Status)).
		Set("current_player", nullString(m.CurrentPlayer)).
		Set("game_state", rawJSON(m.GameState)).
		Set("winner", m.Winner).
		Set("rating_changes", changes).
		Set("updated_at", m.UpdatedAt).
		Set("completed_at", m.CompletedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": m.ID, "version": expectedVersion}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}

	for _, u := range users {
		if err := r.users.saveUserWithTx(ctx, tx, u); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	m.Version = expectedVersion + 1
	for _, u := range users {
		u.Version++
	}
	return nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	var status string
	var current *string
	var state, changes []byte
	err := row.Scan(&m.ID, &m.GameType, &m.Players, &status, &current, &state, &m.Winner,
		&changes, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt, &m.Version)
	if err != nil {
		return nil, err
	}
	m.Status = domain.MatchStatus(status)
	if current != nil {
		m.CurrentPlayer = *current
	}
	if state != nil {
		m.GameState = state
	}
	if changes != nil {
		if err := json.Unmarshal(changes, &m.RatingChanges); err != nil {
			return nil, fmt.Errorf("decode rating_changes of %s: %w", m.ID, err)
		}
	}
	return &m, nil
}

func marshalChanges(changes map[string]int) ([]byte, error) {
	if changes == nil {
		return nil, nil
	}
	b, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("marshal rating_changes: %w", err)
	}
	return b, nil
}

// nil -> NULL, иначе текст json как есть
func rawJSON(b json.RawMessage) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
