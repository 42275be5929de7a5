package domain

import "encoding/json"

// Описание типа игры (справочные данные, в основном только на чтение).
// Rules непрозрачен для ядра и хранится байт-в-байт. У засеянных при старте
// игр владельца нет, их меняют только администраторы.
type Game struct {
	Name        string          `db:"name" json:"name"`
	Owner       string          `db:"owner" json:"owner,omitempty"`
	DisplayName string          `db:"display_name" json:"display_name"`
	Rules       json.RawMessage `db:"rules" json:"rules"`
	MinPlayers  int             `db:"min_players" json:"min_players"`
	MaxPlayers  int             `db:"max_players" json:"max_players"`
	IsActive    bool            `db:"is_active" json:"is_active"`
}

// Типы игр, которые поставляются вместе с сервером
const (
	GameTicTacToe = "tic-tac-toe"
	GameDrawCard  = "draw-a-card"
	GameRPS       = "rps"
)

// проверяет границы количества игроков
func (g *Game) Validate() error {
	if g.Name == "" {
		return ErrInvalidGame
	}
	if g.MinPlayers < 1 || g.MaxPlayers < g.MinPlayers {
		return ErrInvalidGame
	}
	return nil
}

// DefaultGames - каталог, который засевается в хранилище при старте
func DefaultGames() []*Game {
	return []*Game{
		{
			Name:        GameTicTacToe,
			DisplayName: "Tic Tac Toe",
			Rules:       json.RawMessage(`{"board":"3x3"}`),
			MinPlayers:  2,
			MaxPlayers:  2,
			IsActive:    true,
		},
		// матч стартует, как только набран minPlayers, поэтому по умолчанию
		// играют вдвоем; партию на 3-4 игроков включают через каталог
		{
			Name:        GameDrawCard,
			DisplayName: "Draw a Card",
			Rules:       json.RawMessage(`{"hand_size":3}`),
			MinPlayers:  2,
			MaxPlayers:  2,
			IsActive:    true,
		},
		{
			Name:        GameRPS,
			DisplayName: "Rock Paper Scissors",
			Rules:       json.RawMessage(`{"max_rounds":5}`),
			MinPlayers:  2,
			MaxPlayers:  2,
			IsActive:    true,
		},
	}
}
