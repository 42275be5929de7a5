package game

import (
	"encoding/json"
	"fmt"

	"gameserver/internal/domain"
)

const (
	markX = "X"
	markO = "O"
)

var tttLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // строки
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // столбцы
	{0, 4, 8}, {2, 4, 6}, // диагонали
}

// крестики-нолики 3x3, первый в составе играет X
type TicTacToe struct{}

type tttState struct {
	Board   [9]string `json:"board"`
	Players [2]string `json:"players"`
	Moves   int       `json:"moves"`
}

type tttMove struct {
	Cell *int `json:"cell"`
}

func NewTicTacToe() *TicTacToe {
	return &TicTacToe{}
}

func (TicTacToe) Name() string {
	return domain.GameTicTacToe
}

func (TicTacToe) SupportsPlayers(n int) bool {
	return n == 2
}

func (TicTacToe) InitialState(players []string) (json.RawMessage, error) {
	if len(players) != 2 {
		return nil, fmt.Errorf("%w: tic-tac-toe needs 2 players, got %d", ErrBadState, len(players))
	}
	return encodeState(tttState{Players: [2]string{players[0], players[1]}})
}

func (t TicTacToe) ValidateMove(state json.RawMessage, playerID string, move json.RawMessage) (json.RawMessage, error) {
	var s tttState
	if err := decodeState(state, &s); err != nil {
		return nil, err
	}
	if _, over := s.winner(); over || s.Moves >= len(s.Board) {
		return nil, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}

	active := s.Players[s.Moves%2]
	if playerID != active {
		return nil, ErrNotYourTurn
	}

	var mv tttMove
	if err := decodeMove(move, &mv); err != nil {
		return nil, err
	}
	if mv.Cell == nil {
		return nil, fmt.Errorf("%w: cell is required", ErrIllegalMove)
	}
	cell := *mv.Cell
	if cell < 0 || cell >= len(s.Board) {
		return nil, fmt.Errorf("%w: cell %d out of range", ErrIllegalMove, cell)
	}
	if s.Board[cell] != "" {
		return nil, fmt.Errorf("%w: cell %d is occupied", ErrIllegalMove, cell)
	}

	mark := markX
	if s.Moves%2 == 1 {
		mark = markO
	}
	s.Board[cell] = mark
	s.Moves++

	return encodeState(s)
}

func (TicTacToe) Outcome(state json.RawMessage) (domain.Outcome, error) {
	var s tttState
	if err := decodeState(state, &s); err != nil {
		return domain.Outcome{}, err
	}
	if winner, ok := s.winner(); ok {
		return domain.Win(winner), nil
	}
	if s.Moves >= len(s.Board) {
		return domain.Draw(), nil
	}
	return domain.Ongoing(), nil
}

func (TicTacToe) NextPlayer(state json.RawMessage, players []string) (string, error) {
	var s tttState
	if err := decodeState(state, &s); err != nil {
		return "", err
	}
	return rosterTurn(players, s.Moves)
}

// возвращает игрока, собравшего линию
func (s *tttState) winner() (string, bool) {
	for _, line := range tttLines {
		a, b, c := s.Board[line[0]], s.Board[line[1]], s.Board[line[2]]
		if a == "" || a != b || b != c {
			continue
		}
		if a == markX {
			return s.Players[0], true
		}
		return s.Players[1], true
	}
	return "", false
}
