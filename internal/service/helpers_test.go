package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/game"
	"gameserver/internal/notify"
	"gameserver/internal/repository"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store  *repository.MemoryStore
	broker *notify.LocalBroker
	clock  *fakeClock
	audit  *AuditService
	svc    *MatchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	return newFixtureWithStore(t, store, store)
}

// newFixtureWithStore позволяет подменить хранилище для матчей (обертки с отказами),
// оставляя доступ к исходному MemoryStore для проверок
func newFixtureWithStore(t *testing.T, mem *repository.MemoryStore, store MatchStore) *fixture {
	t.Helper()
	if err := mem.SeedGames(context.Background(), domain.DefaultGames()); err != nil {
		t.Fatalf("SeedGames: %v", err)
	}

	var seq atomic.Int64
	f := &fixture{
		store:  mem,
		broker: notify.NewLocalBroker(),
		clock:  newFakeClock(),
		audit:  NewAuditService(mem),
	}
	f.svc = NewMatchService(store, game.Default("test-secret"),
		WithBroker(f.broker),
		WithAudit(f.audit),
		WithClock(f.clock.Now),
		WithIDGenerator(func() string { return fmt.Sprintf("m%d", seq.Add(1)) }),
		WithStoreTimeout(time.Second),
	)
	return f
}

func cell(i int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"cell":%d}`, i))
}

// startTicTacToe создает матч alice против bob и возвращает его в IN_PROGRESS
func (f *fixture) startTicTacToe(t *testing.T) *domain.Match {
	t.Helper()
	ctx := context.Background()

	m, err := f.svc.CreateMatch(ctx, domain.GameTicTacToe, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	m, err = f.svc.JoinMatch(ctx, m.ID, "bob")
	if err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}
	return m
}

func (f *fixture) play(t *testing.T, matchID string, moves ...struct {
	player string
	cell   int
}) *domain.Match {
	t.Helper()
	var m *domain.Match
	for i, mv := range moves {
		var err error
		m, err = f.svc.SubmitMove(context.Background(), matchID, mv.player, cell(mv.cell))
		if err != nil {
			t.Fatalf("move %d (%s -> %d): %v", i, mv.player, mv.cell, err)
		}
	}
	return m
}

type mv = struct {
	player string
	cell   int
}
