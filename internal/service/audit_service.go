package service

import (
	"context"

	"gameserver/internal/domain"
	"gameserver/internal/logger"
)

// обрабатывает логирование аудита
type AuditService struct {
	store AuditStore
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// создает новую запись в журнале аудита; ошибка записи не ломает основную операцию
func (s *AuditService) Log(ctx context.Context, userID, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.store.AppendAudit(ctx, log); err != nil {
		logger.Error("не удалось создать запись аудита", "error", err, "action", action, "user_id", userID)
	}
}

// логирует событие жизненного цикла матча
func (s *AuditService) LogMatch(ctx context.Context, userID, action string, m *domain.Match, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["match_id"] = m.ID
	details["game_type"] = m.GameType
	details["status"] = m.Status
	details["version"] = m.Version

	s.Log(ctx, userID, action, domain.AuditCategoryMatch, details)
}

// логирует первое появление профиля
func (s *AuditService) LogProfileCreate(ctx context.Context, userID, displayName string) {
	s.Log(ctx, userID, domain.AuditActionProfileCreate, domain.AuditCategoryProfile, map[string]interface{}{
		"display_name": displayName,
	})
}

// возвращает записи аудита для пользователя
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return s.store.ListAuditByUser(ctx, userID, limit)
}
