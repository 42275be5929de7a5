package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/game"
	"gameserver/internal/logger"
	"gameserver/internal/metrics"
	"gameserver/internal/notify"
	"gameserver/internal/rating"

	"github.com/google/uuid"
)

// MatchService - конечный автомат матча. Каждая операция читает матч, строит
// новое состояние и фиксирует его сравнением версии. Сам сервис не повторяет
// операции: на конфликт отвечает ErrConflict, повтор делает Retry на границе вызова.
type MatchService struct {
	store   MatchStore
	rules   *game.Registry
	ratings rating.Engine
	broker  notify.Broker
	audit   *AuditService
	now     func() time.Time
	newID   func() string
	timeout time.Duration
}

type MatchOption func(*MatchService)

func WithBroker(b notify.Broker) MatchOption {
	return func(s *MatchService) { s.broker = b }
}

func WithAudit(a *AuditService) MatchOption {
	return func(s *MatchService) { s.audit = a }
}

func WithClock(now func() time.Time) MatchOption {
	return func(s *MatchService) { s.now = now }
}

func WithIDGenerator(newID func() string) MatchOption {
	return func(s *MatchService) { s.newID = newID }
}

func WithStoreTimeout(d time.Duration) MatchOption {
	return func(s *MatchService) { s.timeout = d }
}

func WithRatingEngine(e rating.Engine) MatchOption {
	return func(s *MatchService) { s.ratings = e }
}

func NewMatchService(store MatchStore, rules *game.Registry, opts ...MatchOption) *MatchService {
	s := &MatchService{
		store:   store,
		rules:   rules,
		ratings: rating.NewEngine(),
		now:     time.Now,
		newID:   uuid.NewString,
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMatch создает матч в WAITING с создателем в качестве первого игрока.
// Если игре хватает одного игрока, матч сразу стартует.
func (s *MatchService) CreateMatch(ctx context.Context, gameType, creatorID string) (*domain.Match, error) {
	rules, g, err := s.playable(ctx, gameType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	m := &domain.Match{
		ID:        s.newID(),
		GameType:  gameType,
		Players:   []string{creatorID},
		Status:    domain.MatchWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(m.Players) >= g.MinPlayers {
		if err := start(m, rules); err != nil {
			return nil, err
		}
	}

	if err := storeCall(ctx, s.timeout, "insert match", func(ctx context.Context) error {
		return s.store.InsertMatch(ctx, m)
	}); err != nil {
		return nil, err
	}

	metrics.MatchesCreated.WithLabelValues(gameType).Inc()
	logger.WithContext(ctx).Info("match created", "match_id", m.ID, "game", gameType, "creator", creatorID)
	s.record(ctx, creatorID, domain.AuditActionMatchCreate, m, nil)
	if m.Status == domain.MatchInProgress {
		s.record(ctx, creatorID, domain.AuditActionMatchStart, m, nil)
	}
	s.publish(ctx, m)
	return m, nil
}

// JoinMatch добавляет игрока; при достижении minPlayers матч стартует в той же записи
func (s *MatchService) JoinMatch(ctx context.Context, matchID, playerID string) (*domain.Match, error) {
	cur, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if cur.Status.IsTerminal() {
		return nil, domain.ErrFinished
	}
	if cur.HasPlayer(playerID) {
		return nil, domain.ErrAlreadyJoined
	}

	rules, g, err := s.playable(ctx, cur.GameType)
	if err != nil {
		return nil, err
	}
	if len(cur.Players) >= g.MaxPlayers {
		return nil, domain.ErrFull
	}
	if cur.Status != domain.MatchWaiting {
		return nil, domain.ErrFinished
	}

	next := cur.Clone()
	next.Players = append(next.Players, playerID)
	next.UpdatedAt = s.now()
	if len(next.Players) >= g.MinPlayers {
		if err := start(next, rules); err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, next, cur.Version, nil); err != nil {
		return nil, err
	}

	s.record(ctx, playerID, domain.AuditActionMatchJoin, next, nil)
	if next.Status == domain.MatchInProgress {
		logger.WithContext(ctx).Info("match started", "match_id", next.ID, "players", next.Players)
		s.record(ctx, playerID, domain.AuditActionMatchStart, next, nil)
	}
	s.publish(ctx, next)
	return next, nil
}

// SubmitMove проверяет ход модулем правил и применяет его. Ошибки хода
// возвращаются без изменений, в хранилище при этом ничего не пишется.
// Завершающий ход пишет рейтинги игроков атомарно с матчем.
func (s *MatchService) SubmitMove(ctx context.Context, matchID, playerID string, move json.RawMessage) (*domain.Match, error) {
	cur, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if cur.Status != domain.MatchInProgress {
		return nil, domain.ErrFinished
	}
	rules, ok := s.rules.Get(cur.GameType)
	if !ok {
		return nil, domain.ErrUnknownGame
	}

	state, err := rules.ValidateMove(cur.GameState, playerID, move)
	if err != nil {
		metrics.MovesSubmitted.WithLabelValues(cur.GameType, "rejected").Inc()
		return nil, err
	}
	outcome, err := rules.Outcome(state)
	if err != nil {
		return nil, fmt.Errorf("evaluate outcome: %w", err)
	}

	next := cur.Clone()
	next.GameState = state
	next.UpdatedAt = s.now()

	var users []*domain.User
	if outcome.IsTerminal() {
		users, err = s.complete(ctx, next, outcome)
	} else {
		next.CurrentPlayer, err = rules.NextPlayer(state, next.Players)
	}
	if err != nil {
		metrics.MovesSubmitted.WithLabelValues(cur.GameType, "error").Inc()
		return nil, err
	}

	if err := s.commit(ctx, next, cur.Version, users); err != nil {
		metrics.MovesSubmitted.WithLabelValues(cur.GameType, "error").Inc()
		return nil, err
	}
	metrics.MovesSubmitted.WithLabelValues(cur.GameType, "ok").Inc()

	s.record(ctx, playerID, domain.AuditActionMatchMove, next, map[string]interface{}{"move": move})
	if next.Status == domain.MatchCompleted {
		metrics.MatchesFinished.WithLabelValues(next.GameType, string(next.Status)).Inc()
		logger.WithContext(ctx).Info("match completed",
			"match_id", next.ID, "outcome", outcome.Kind.String(), "rating_changes", next.RatingChanges)
		s.record(ctx, playerID, domain.AuditActionMatchComplete, next, map[string]interface{}{
			"outcome":        outcome.Kind.String(),
			"rating_changes": next.RatingChanges,
		})
	}
	s.publish(ctx, next)
	return next, nil
}

// AbandonMatch прерывает матч без пересчета рейтингов. Прервать может участник
// или сервер (domain.SystemActor).
func (s *MatchService) AbandonMatch(ctx context.Context, matchID, requesterID string) (*domain.Match, error) {
	cur, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if cur.Status.IsTerminal() {
		return nil, domain.ErrFinished
	}
	if requesterID != domain.SystemActor && !cur.HasPlayer(requesterID) {
		return nil, domain.ErrNotParticipant
	}

	now := s.now()
	next := cur.Clone()
	next.Status = domain.MatchAbandoned
	next.CurrentPlayer = ""
	next.UpdatedAt = now
	next.CompletedAt = &now

	if err := s.commit(ctx, next, cur.Version, nil); err != nil {
		return nil, err
	}

	metrics.MatchesFinished.WithLabelValues(next.GameType, string(next.Status)).Inc()
	logger.WithContext(ctx).Info("match abandoned", "match_id", next.ID, "by", requesterID)
	s.record(ctx, requesterID, domain.AuditActionMatchAbandon, next, map[string]interface{}{"previous_status": cur.Status})
	s.publish(ctx, next)
	return next, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	var m *domain.Match
	err := storeCall(ctx, s.timeout, "get match", func(ctx context.Context) error {
		var err error
		m, err = s.store.GetMatch(ctx, matchID)
		return err
	})
	return m, err
}

func (s *MatchService) ListMatches(ctx context.Context, f domain.MatchFilter) ([]*domain.Match, error) {
	var matches []*domain.Match
	err := storeCall(ctx, s.timeout, "list matches", func(ctx context.Context) error {
		var err error
		matches, err = s.store.ListMatches(ctx, f)
		return err
	})
	return matches, err
}

// ViewFor возвращает снимок матча глазами зрителя: модуль правил может скрыть
// чужую приватную информацию
func (s *MatchService) ViewFor(m *domain.Match, viewerID string) *domain.Match {
	if m.GameState == nil {
		return m
	}
	rules, ok := s.rules.Get(m.GameType)
	if !ok {
		return m
	}
	red, ok := rules.(game.Redactor)
	if !ok {
		return m
	}
	view := m.Clone()
	view.GameState = red.Redact(m.GameState, viewerID)
	return view
}

// playable проверяет, что игра существует, активна и есть модуль правил
func (s *MatchService) playable(ctx context.Context, gameType string) (game.Rules, *domain.Game, error) {
	rules, ok := s.rules.Get(gameType)
	if !ok {
		return nil, nil, domain.ErrUnknownGame
	}

	var g *domain.Game
	err := storeCall(ctx, s.timeout, "get game", func(ctx context.Context) error {
		var err error
		g, err = s.store.GetGame(ctx, gameType)
		return err
	})
	if errors.Is(err, domain.ErrGameNotFound) {
		return nil, nil, domain.ErrUnknownGame
	}
	if err != nil {
		return nil, nil, err
	}
	if !g.IsActive {
		return nil, nil, domain.ErrUnknownGame
	}
	return rules, g, nil
}

// complete переводит матч в COMPLETED, считает рейтинги и готовит профили к записи
func (s *MatchService) complete(ctx context.Context, m *domain.Match, outcome domain.Outcome) ([]*domain.User, error) {
	var stored map[string]*domain.User
	err := storeCall(ctx, s.timeout, "get users", func(ctx context.Context) error {
		var err error
		stored, err = s.store.GetUsers(ctx, m.Players)
		return err
	})
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(m.Players))
	ratings := make(map[string]int, len(m.Players))
	for _, p := range m.Players {
		u, ok := stored[p]
		if !ok {
			// профиль еще не создан: считаем новичком, запись появится вместе с матчем
			u = domain.NewUser(p, "")
		}
		ratings[p] = u.Rating(m.GameType)
		users = append(users, u)
	}

	deltas, err := s.ratings.ComputeDeltas(ratings, outcome, m.Players)
	if err != nil {
		return nil, fmt.Errorf("rate match %s: %w", m.ID, err)
	}

	now := m.UpdatedAt
	m.Status = domain.MatchCompleted
	m.CurrentPlayer = ""
	m.Winner = nil
	if outcome.Kind == domain.OutcomeWin {
		w := outcome.Winner
		m.Winner = &w
	}
	m.RatingChanges = deltas
	m.CompletedAt = &now

	for _, u := range users {
		won := outcome.Kind == domain.OutcomeWin && outcome.Winner == u.ID
		u.ApplyResult(m.GameType, deltas[u.ID], won)
		u.UpdatedAt = now
	}
	return users, nil
}

func (s *MatchService) commit(ctx context.Context, m *domain.Match, expectedVersion int64, users []*domain.User) error {
	err := storeCall(ctx, s.timeout, "commit match", func(ctx context.Context) error {
		return s.store.CommitMatch(ctx, m, expectedVersion, users)
	})
	if errors.Is(err, domain.ErrConflict) {
		metrics.StoreConflicts.WithLabelValues("commit").Inc()
	}
	return err
}

// start переводит матч в IN_PROGRESS с начальным состоянием модуля правил
func start(m *domain.Match, rules game.Rules) error {
	state, err := rules.InitialState(m.Players)
	if err != nil {
		return fmt.Errorf("initial state for %s: %w", m.GameType, err)
	}
	next, err := rules.NextPlayer(state, m.Players)
	if err != nil {
		return fmt.Errorf("first player for %s: %w", m.GameType, err)
	}
	m.Status = domain.MatchInProgress
	m.GameState = state
	m.CurrentPlayer = next
	return nil
}

func (s *MatchService) publish(ctx context.Context, m *domain.Match) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, m); err != nil {
		logger.Warn("publish match update failed", "match_id", m.ID, "error", err)
	}
}

func (s *MatchService) record(ctx context.Context, actorID, action string, m *domain.Match, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.LogMatch(ctx, actorID, action, m, details)
}
