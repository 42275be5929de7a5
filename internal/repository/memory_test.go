package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gameserver/internal/domain"
)

func newTestMatch(id string, created time.Time) *domain.Match {
	return &domain.Match{
		ID:        id,
		GameType:  domain.GameTicTacToe,
		Players:   []string{"alice"},
		Status:    domain.MatchWaiting,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestMemoryStore_CommitMatchVersion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	m := newTestMatch("m1", time.Now())
	if err := s.InsertMatch(ctx, m); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}
	if m.Version != 1 {
		t.Fatalf("expected version 1, got %d", m.Version)
	}

	first, _ := s.GetMatch(ctx, "m1")
	second, _ := s.GetMatch(ctx, "m1")

	first.Players = append(first.Players, "bob")
	if err := s.CommitMatch(ctx, first, 1, nil); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.Version != 2 {
		t.Fatalf("expected version 2, got %d", first.Version)
	}

	second.Players = append(second.Players, "carol")
	if err := s.CommitMatch(ctx, second, 1, nil); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	stored, _ := s.GetMatch(ctx, "m1")
	if len(stored.Players) != 2 || stored.Players[1] != "bob" {
		t.Fatalf("stale commit leaked: %v", stored.Players)
	}
}

func TestMemoryStore_CommitMatchUserConflictRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	m := newTestMatch("m1", time.Now())
	_ = s.InsertMatch(ctx, m)
	if _, _, err := s.GetOrCreateUser(ctx, "alice", "Alice"); err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}

	// профиль читался как несуществующий, но его уже создали
	stale := domain.NewUser("alice", "Alice")
	m.Status = domain.MatchCompleted
	err := s.CommitMatch(ctx, m, 1, []*domain.User{stale})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	stored, _ := s.GetMatch(ctx, "m1")
	if stored.Status != domain.MatchWaiting || stored.Version != 1 {
		t.Fatalf("match changed despite conflict: %s v%d", stored.Status, stored.Version)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.InsertMatch(ctx, newTestMatch("m1", time.Now()))

	got, _ := s.GetMatch(ctx, "m1")
	got.Players[0] = "mallory"

	again, _ := s.GetMatch(ctx, "m1")
	if again.Players[0] != "alice" {
		t.Fatalf("store returned shared slice")
	}
}

func TestMemoryStore_ListMatches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := newTestMatch("old", base)
	mid := newTestMatch("mid", base.Add(time.Minute))
	mid.Players = []string{"bob"}
	fresh := newTestMatch("fresh", base.Add(2*time.Minute))
	fresh.Status = domain.MatchInProgress
	for _, m := range []*domain.Match{old, mid, fresh} {
		if err := s.InsertMatch(ctx, m); err != nil {
			t.Fatalf("InsertMatch: %v", err)
		}
	}

	all, _ := s.ListMatches(ctx, domain.MatchFilter{})
	if len(all) != 3 || all[0].ID != "fresh" || all[2].ID != "old" {
		t.Fatalf("unexpected order: %v", ids(all))
	}

	waiting, _ := s.ListMatches(ctx, domain.MatchFilter{Status: domain.MatchWaiting})
	if len(waiting) != 2 {
		t.Fatalf("expected 2 waiting, got %v", ids(waiting))
	}

	bobs, _ := s.ListMatches(ctx, domain.MatchFilter{PlayerID: "bob"})
	if len(bobs) != 1 || bobs[0].ID != "mid" {
		t.Fatalf("expected only mid, got %v", ids(bobs))
	}

	stale, _ := s.ListMatches(ctx, domain.MatchFilter{CreatedBefore: base.Add(time.Minute)})
	if len(stale) != 1 || stale[0].ID != "old" {
		t.Fatalf("expected only old, got %v", ids(stale))
	}

	limited, _ := s.ListMatches(ctx, domain.MatchFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %v", ids(limited))
	}
}

func TestMemoryStore_GetOrCreateUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u, created, err := s.GetOrCreateUser(ctx, "alice", "Alice")
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}
	if len(u.Ratings) != 0 {
		t.Fatalf("new profile must have no ratings, got %v", u.Ratings)
	}

	_, created, _ = s.GetOrCreateUser(ctx, "alice", "Other name")
	if created {
		t.Fatalf("second call must not create")
	}
	got, _ := s.GetUser(ctx, "alice")
	if got.DisplayName != "Alice" {
		t.Fatalf("display name overwritten: %q", got.DisplayName)
	}
}

func TestMemoryStore_TopByRating(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.InsertMatch(ctx, newTestMatch("m1", time.Now()))

	a := domain.NewUser("alice", "Alice")
	a.ApplyResult(domain.GameTicTacToe, 16, true)
	b := domain.NewUser("bob", "Bob")
	b.ApplyResult(domain.GameTicTacToe, -16, false)
	c := domain.NewUser("carol", "Carol")
	c.ApplyResult(domain.GameRPS, 16, true)

	m, _ := s.GetMatch(ctx, "m1")
	if err := s.CommitMatch(ctx, m, 1, []*domain.User{a, b, c}); err != nil {
		t.Fatalf("CommitMatch: %v", err)
	}

	top, _ := s.TopByRating(ctx, domain.GameTicTacToe, 10)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].UserID != "alice" || top[0].Rank != 1 || top[0].Rating != 1216 || top[0].GamesWon != 1 {
		t.Fatalf("unexpected leader: %+v", top[0])
	}
	if top[1].UserID != "bob" || top[1].Rating != 1184 {
		t.Fatalf("unexpected second: %+v", top[1])
	}
}

func TestMemoryStore_Audit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, action := range []string{domain.AuditActionMatchCreate, domain.AuditActionMatchMove} {
		_ = s.AppendAudit(ctx, &domain.AuditLog{UserID: "alice", Action: action, Category: domain.AuditCategoryMatch})
	}
	_ = s.AppendAudit(ctx, &domain.AuditLog{UserID: "bob", Action: domain.AuditActionMatchJoin, Category: domain.AuditCategoryMatch})

	logs, _ := s.ListAuditByUser(ctx, "alice", 10)
	if len(logs) != 2 || logs[0].Action != domain.AuditActionMatchMove {
		t.Fatalf("expected newest first, got %+v", logs)
	}
}

func ids(matches []*domain.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}
