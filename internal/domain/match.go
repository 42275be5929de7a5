package domain

import (
	"encoding/json"
	"slices"
	"time"
)

type MatchStatus string

const (
	MatchWaiting    MatchStatus = "WAITING"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchAbandoned  MatchStatus = "ABANDONED"
)

// IsTerminal - из COMPLETED и ABANDONED матч больше не меняется
func (s MatchStatus) IsTerminal() bool {
	return s == MatchCompleted || s == MatchAbandoned
}

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchWaiting, MatchInProgress, MatchCompleted, MatchAbandoned:
		return true
	}
	return false
}

// автор для операций, которые инициирует сам сервер (например, таймаут ожидания)
const SystemActor = "system"

// Одна игровая сессия. status, current_player, players, completed_at и
// rating_changes пишет только сервис матчей; game_state принадлежит модулю правил.
type Match struct {
	ID            string          `db:"id" json:"id"`
	GameType      string          `db:"game_type" json:"game_type"`
	Players       []string        `db:"players" json:"players"`
	Status        MatchStatus     `db:"status" json:"status"`
	CurrentPlayer string          `db:"current_player" json:"current_player,omitempty"`
	GameState     json.RawMessage `db:"game_state" json:"game_state,omitempty"`
	Winner        *string         `db:"winner" json:"winner,omitempty"`
	RatingChanges map[string]int  `db:"rating_changes" json:"rating_changes,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	Version       int64           `db:"version" json:"version"`
}

func (m *Match) HasPlayer(playerID string) bool {
	return slices.Contains(m.Players, playerID)
}

// глубокая копия: сервис работает с копией, а прочитанный снимок остается
// эталоном для сравнения версий
func (m *Match) Clone() *Match {
	c := *m
	c.Players = slices.Clone(m.Players)
	if m.GameState != nil {
		c.GameState = slices.Clone(m.GameState)
	}
	if m.Winner != nil {
		w := *m.Winner
		c.Winner = &w
	}
	if m.RatingChanges != nil {
		c.RatingChanges = cloneCounts(m.RatingChanges)
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Фильтр для выборки списка матчей; пустые поля не учитываются
type MatchFilter struct {
	Status        MatchStatus
	GameType      string
	PlayerID      string
	CreatedBefore time.Time
	UpdatedBefore time.Time
	Limit         int
}
