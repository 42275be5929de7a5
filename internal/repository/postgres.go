package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore собирает репозитории в одно хранилище для сервисов
type PostgresStore struct {
	*GameRepository
	*UserRepository
	*MatchRepository
	*AuditRepository

	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		GameRepository:  NewGameRepository(db),
		UserRepository:  NewUserRepository(db),
		MatchRepository: NewMatchRepository(db),
		AuditRepository: NewAuditRepository(db),
		db:              db,
	}
}

// Ping проверяет доступность базы (для /healthz)
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
