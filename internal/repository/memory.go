package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"gameserver/internal/domain"
)

// MemoryStore - хранилище в памяти с теми же гарантиями версий, что и PostgresStore.
// Используется в тестах и при STORE=memory.
type MemoryStore struct {
	mu      sync.RWMutex
	games   map[string]*domain.Game
	users   map[string]*domain.User
	matches map[string]*domain.Match
	audit   []*domain.AuditLog
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]*domain.Game),
		users:   make(map[string]*domain.User),
		matches: make(map[string]*domain.Match),
		now:     time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) GetGame(ctx context.Context, name string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[name]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	c := *g
	c.Rules = slices.Clone(g.Rules)
	return &c, nil
}

func (s *MemoryStore) ListGames(ctx context.Context, activeOnly bool) ([]*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var games []*domain.Game
	for _, g := range s.games {
		if activeOnly && !g.IsActive {
			continue
		}
		c := *g
		c.Rules = slices.Clone(g.Rules)
		games = append(games, &c)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Name < games[j].Name })
	return games, nil
}

func (s *MemoryStore) SeedGames(ctx context.Context, games []*domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range games {
		if _, ok := s.games[g.Name]; ok {
			continue
		}
		c := *g
		c.Rules = slices.Clone(g.Rules)
		s.games[g.Name] = &c
	}
	return nil
}

func (s *MemoryStore) UpsertGame(ctx context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *g
	c.Rules = slices.Clone(g.Rules)
	s.games[g.Name] = &c
	return nil
}

func (s *MemoryStore) SetGameActive(ctx context.Context, name string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[name]
	if !ok {
		return domain.ErrGameNotFound
	}
	g.IsActive = active
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *MemoryStore) GetUsers(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users[id] = u.Clone()
		}
	}
	return users, nil
}

func (s *MemoryStore) GetOrCreateUser(ctx context.Context, id, displayName string) (*domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		return u.Clone(), false, nil
	}
	u := domain.NewUser(id, displayName)
	u.Version = 1
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[id] = u
	return u.Clone(), true, nil
}

func (s *MemoryStore) TopByRating(ctx context.Context, gameType string, limit int) ([]*domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var top []*domain.LeaderboardEntry
	for _, u := range s.users {
		r, ok := u.Ratings[gameType]
		if !ok {
			continue
		}
		top = append(top, &domain.LeaderboardEntry{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Rating:      r,
			GamesPlayed: u.GamesPlayed[gameType],
			GamesWon:    u.GamesWon[gameType],
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Rating != top[j].Rating {
			return top[i].Rating > top[j].Rating
		}
		return top[i].UserID < top[j].UserID
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	for i, e := range top {
		e.Rank = i + 1
	}
	return top, nil
}

func (s *MemoryStore) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (s *MemoryStore) ListMatches(ctx context.Context, f domain.MatchFilter) ([]*domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*domain.Match
	for _, m := range s.matches {
		if matchesFilter(m, f) {
			matches = append(matches, m.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	if limit := listLimit(f.Limit); len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryStore) InsertMatch(ctx context.Context, m *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[m.ID]; ok {
		return domain.ErrConflict
	}
	m.Version = 1
	s.matches[m.ID] = m.Clone()
	return nil
}

// CommitMatch проверяет все версии до первой записи, так что при конфликте
// ничего не меняется
func (s *MemoryStore) CommitMatch(ctx context.Context, m *domain.Match, expectedVersion int64, users []*domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.matches[m.ID]
	if !ok {
		return domain.ErrMatchNotFound
	}
	if cur.Version != expectedVersion {
		return domain.ErrConflict
	}
	for _, u := range users {
		stored, ok := s.users[u.ID]
		switch {
		case u.Version == 0 && ok:
			return domain.ErrConflict
		case u.Version != 0 && (!ok || stored.Version != u.Version):
			return domain.ErrConflict
		}
	}

	m.Version = expectedVersion + 1
	s.matches[m.ID] = m.Clone()
	for _, u := range users {
		if u.Version == 0 && u.CreatedAt.IsZero() {
			u.CreatedAt = u.UpdatedAt
		}
		u.Version++
		s.users[u.ID] = u.Clone()
	}
	return nil
}

func (s *MemoryStore) AppendAudit(ctx context.Context, log *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = int64(len(s.audit) + 1)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}
	c := *log
	s.audit = append(s.audit, &c)
	return nil
}

func (s *MemoryStore) ListAuditByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var logs []*domain.AuditLog
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].UserID != userID {
			continue
		}
		c := *s.audit[i]
		logs = append(logs, &c)
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}

func matchesFilter(m *domain.Match, f domain.MatchFilter) bool {
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.GameType != "" && m.GameType != f.GameType {
		return false
	}
	if f.PlayerID != "" && !m.HasPlayer(f.PlayerID) {
		return false
	}
	if !f.CreatedBefore.IsZero() && !m.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	if !f.UpdatedBefore.IsZero() && !m.UpdatedAt.Before(f.UpdatedBefore) {
		return false
	}
	return true
}
