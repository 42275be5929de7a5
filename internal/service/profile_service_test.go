package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/game"
	"gameserver/internal/repository"
)

func TestProfileService_GetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	audit := NewAuditService(store)
	svc := NewProfileService(store, store, audit, time.Second)

	u, err := svc.GetOrCreate(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if u.ID != "alice" || len(u.Ratings) != 0 {
		t.Fatalf("unexpected profile: %+v", u)
	}
	if _, err := svc.GetOrCreate(ctx, "alice", "Someone"); err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}

	logs, _ := audit.GetUserAuditLogs(ctx, "alice", 10)
	if len(logs) != 1 || logs[0].Action != domain.AuditActionProfileCreate {
		t.Fatalf("expected a single profile_create record, got %+v", logs)
	}

	if _, err := svc.Get(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileService_Leaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewProfileService(f.store, f.store, nil, time.Second)

	m := f.startTicTacToe(t)
	f.play(t, m.ID, mv{"alice", 4}, mv{"bob", 0}, mv{"alice", 1}, mv{"bob", 2}, mv{"alice", 7})

	top, err := svc.Leaderboard(ctx, domain.GameTicTacToe, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].UserID != "alice" || top[0].Rating != 1216 || top[1].Rank != 2 {
		t.Fatalf("unexpected leaderboard: %+v %+v", top[0], top[1])
	}

	if _, err := svc.Leaderboard(ctx, "chess", 10); !errors.Is(err, domain.ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
}

func TestCatalogService_SeedAndActive(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewCatalogService(store, game.Default("test-secret"), time.Second)

	if err := svc.Seed(ctx, domain.DefaultGames()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	games, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}

	bad := []*domain.Game{{Name: domain.GameTicTacToe, DisplayName: "TTT", MinPlayers: 3, MaxPlayers: 3, IsActive: true}}
	if err := svc.Seed(ctx, bad); !errors.Is(err, domain.ErrInvalidGame) {
		t.Fatalf("expected ErrInvalidGame, got %v", err)
	}
	unknown := []*domain.Game{{Name: "chess", DisplayName: "Chess", MinPlayers: 2, MaxPlayers: 2, IsActive: true}}
	if err := svc.Seed(ctx, unknown); !errors.Is(err, domain.ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
}

func TestCatalogService_UpsertAndSetActive(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	registry := game.Default("test-secret")
	svc := NewCatalogService(store, registry, time.Second)
	svc.SetAdmins([]string{"root"})
	if err := svc.Seed(ctx, domain.DefaultGames()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	matches := NewMatchService(store, registry, WithStoreTimeout(time.Second))

	// у засеянных игр нет владельца, менять их может только администратор
	if _, err := svc.SetActive(ctx, "mallory", domain.GameRPS, false); !errors.Is(err, domain.ErrNotGameOwner) {
		t.Fatalf("expected ErrNotGameOwner, got %v", err)
	}
	g, err := svc.SetActive(ctx, "root", domain.GameRPS, false)
	if err != nil || g.IsActive {
		t.Fatalf("SetActive: %+v %v", g, err)
	}
	active, _ := svc.Active(ctx)
	if len(active) != 2 {
		t.Fatalf("expected 2 active games, got %d", len(active))
	}
	if _, err := matches.CreateMatch(ctx, domain.GameRPS, "alice"); !errors.Is(err, domain.ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame for disabled game, got %v", err)
	}
	if _, err := svc.SetActive(ctx, "root", "chess", true); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}

	cards := &domain.Game{Name: domain.GameDrawCard, DisplayName: "Draw (3)", Rules: json.RawMessage(`{"hand_size":3}`), MinPlayers: 3, MaxPlayers: 3, IsActive: true}
	if _, err := svc.Upsert(ctx, "root", cards); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	stored, _ := store.GetGame(ctx, domain.GameDrawCard)
	if stored.MinPlayers != 3 || stored.DisplayName != "Draw (3)" || stored.Owner != "" {
		t.Fatalf("unexpected stored game: %+v", stored)
	}

	tooMany := &domain.Game{Name: domain.GameDrawCard, DisplayName: "Draw", MinPlayers: 5, MaxPlayers: 5, IsActive: true}
	if _, err := svc.Upsert(ctx, "root", tooMany); !errors.Is(err, domain.ErrInvalidGame) {
		t.Fatalf("expected ErrInvalidGame, got %v", err)
	}
}

func TestCatalogService_OwnerEditsOwnGame(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewCatalogService(store, game.Default("test-secret"), time.Second)

	g, err := svc.Upsert(ctx, "dana", &domain.Game{Name: domain.GameRPS, DisplayName: "RPS", Rules: json.RawMessage(`{}`), MinPlayers: 2, MaxPlayers: 2, IsActive: true})
	if err != nil || g.Owner != "dana" {
		t.Fatalf("Upsert new game: %+v %v", g, err)
	}
	if _, err := svc.SetActive(ctx, "dana", domain.GameRPS, false); err != nil {
		t.Fatalf("owner SetActive: %v", err)
	}
	if _, err := svc.Upsert(ctx, "eve", &domain.Game{Name: domain.GameRPS, DisplayName: "Mine", MinPlayers: 2, MaxPlayers: 2}); !errors.Is(err, domain.ErrNotGameOwner) {
		t.Fatalf("expected ErrNotGameOwner, got %v", err)
	}

	g, _ = svc.Upsert(ctx, "dana", &domain.Game{Name: domain.GameRPS, DisplayName: "RPS v2", MinPlayers: 2, MaxPlayers: 2, IsActive: true})
	if g.Owner != "dana" {
		t.Fatalf("owner must survive updates, got %q", g.Owner)
	}
}
