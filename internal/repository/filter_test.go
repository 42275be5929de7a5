package repository

import (
	"strings"
	"testing"
	"time"

	"gameserver/internal/domain"
)

func TestBuildMatchListQuery_Empty(t *testing.T) {
	sql, args, err := buildMatchListQuery(domain.MatchFilter{}).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if strings.Contains(sql, "WHERE") {
		t.Fatalf("unexpected WHERE in %q", sql)
	}
	if !strings.Contains(sql, "ORDER BY created_at DESC, id") {
		t.Fatalf("missing ordering in %q", sql)
	}
	if !strings.Contains(sql, "LIMIT 50") {
		t.Fatalf("expected default limit in %q", sql)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildMatchListQuery_AllFields(t *testing.T) {
	cutoff := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := domain.MatchFilter{
		Status:        domain.MatchWaiting,
		GameType:      domain.GameTicTacToe,
		PlayerID:      "alice",
		CreatedBefore: cutoff,
		UpdatedBefore: cutoff,
		Limit:         1000,
	}

	sql, args, err := buildMatchListQuery(f).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}

	for _, part := range []string{
		"status = $1",
		"game_type = $2",
		"$3 = ANY(players)",
		"created_at < $4",
		"updated_at < $5",
		"LIMIT 200",
	} {
		if !strings.Contains(sql, part) {
			t.Errorf("expected %q in %q", part, sql)
		}
	}

	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}
	if args[0] != "WAITING" || args[1] != "tic-tac-toe" || args[2] != "alice" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestListLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultListLimit},
		{-3, defaultListLimit},
		{10, 10},
		{maxListLimit + 1, maxListLimit},
	}
	for _, tt := range tests {
		if got := listLimit(tt.in); got != tt.want {
			t.Errorf("listLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
