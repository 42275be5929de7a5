package domain

import "time"

// Журнал важных действий с матчами и профилями
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    string                 `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Категории
const (
	AuditCategoryMatch   = "match"
	AuditCategoryProfile = "profile"
)

const (
	// Матчи
	AuditActionMatchCreate   = "match_create"
	AuditActionMatchJoin     = "match_join"
	AuditActionMatchStart    = "match_start"
	AuditActionMatchMove     = "match_move"
	AuditActionMatchComplete = "match_complete"
	AuditActionMatchAbandon  = "match_abandon"

	// Профили
	AuditActionProfileCreate = "profile_create"
)
