package repository

import (
	"context"
	"encoding/json"

	"gameserver/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// журнал аудита матчей и профилей
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// добавляет запись в журнал
func (r *AuditRepository) AppendAudit(ctx context.Context, log *domain.AuditLog) error {
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (user_id, action, category, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, log.UserID, log.Action, log.Category, detailsJSON).Scan(&log.ID, &log.CreatedAt)
}

// последние записи пользователя, новые сначала
func (r *AuditRepository) ListAuditByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	q := psql.Select("id", "user_id", "action", "category", "details", "created_at").
		From("audit_logs").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(listLimit(limit)))

	rows, err := qQuery(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

// строки audit_logs в записи журнала
func scanAuditLogs(rows pgx.Rows) ([]*domain.AuditLog, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.AuditLog, error) {
		var (
			entry   domain.AuditLog
			details []byte
		)
		if err := row.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Category, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) == 0 || json.Unmarshal(details, &entry.Details) != nil {
			entry.Details = map[string]interface{}{}
		}
		return &entry, nil
	})
}
