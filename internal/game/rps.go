package game

import (
	"encoding/json"
	"fmt"

	"gameserver/internal/domain"
)

const (
	rpsMaxRounds = 5
	rpsHidden    = "hidden"
)

// камень-ножницы-бумага по очереди: в каждом раунде игроки бросают в порядке
// состава, первый решенный раунд заканчивает матч, 5 ничьих подряд - ничья
type RPS struct{}

type rpsState struct {
	Players   [2]string         `json:"players"`
	Round     int               `json:"round"`
	Moves     map[string]string `json:"moves"`
	LastMoves map[string]string `json:"last_moves,omitempty"`
	Winner    string            `json:"winner,omitempty"`
}

type rpsMove struct {
	Move string `json:"move"`
}

func NewRPS() *RPS {
	return &RPS{}
}

func (RPS) Name() string {
	return domain.GameRPS
}

func (RPS) SupportsPlayers(n int) bool {
	return n == 2
}

func (RPS) InitialState(players []string) (json.RawMessage, error) {
	if len(players) != 2 {
		return nil, fmt.Errorf("%w: rps needs 2 players, got %d", ErrBadState, len(players))
	}
	return encodeState(rpsState{
		Players: [2]string{players[0], players[1]},
		Moves:   map[string]string{},
	})
}

func (RPS) ValidateMove(state json.RawMessage, playerID string, move json.RawMessage) (json.RawMessage, error) {
	var s rpsState
	if err := decodeState(state, &s); err != nil {
		return nil, err
	}
	if s.Winner != "" || s.Round >= rpsMaxRounds {
		return nil, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	if s.Moves == nil {
		s.Moves = map[string]string{}
	}
	if playerID != s.Players[len(s.Moves)%2] {
		return nil, ErrNotYourTurn
	}

	var mv rpsMove
	if err := decodeMove(move, &mv); err != nil {
		return nil, err
	}
	if mv.Move != "rock" && mv.Move != "paper" && mv.Move != "scissors" {
		return nil, fmt.Errorf("%w: unknown throw %q", ErrIllegalMove, mv.Move)
	}
	s.Moves[playerID] = mv.Move

	if len(s.Moves) < 2 {
		return encodeState(s)
	}

	// раунд завершен
	p1, p2 := s.Players[0], s.Players[1]
	s.Round++
	switch decide(s.Moves[p1], s.Moves[p2]) {
	case "win":
		s.Winner = p1
	case "lose":
		s.Winner = p2
	}
	s.LastMoves = s.Moves
	s.Moves = map[string]string{}

	return encodeState(s)
}

func (RPS) Outcome(state json.RawMessage) (domain.Outcome, error) {
	var s rpsState
	if err := decodeState(state, &s); err != nil {
		return domain.Outcome{}, err
	}
	if s.Winner != "" {
		return domain.Win(s.Winner), nil
	}
	if s.Round >= rpsMaxRounds {
		return domain.Draw(), nil
	}
	return domain.Ongoing(), nil
}

func (RPS) NextPlayer(state json.RawMessage, players []string) (string, error) {
	var s rpsState
	if err := decodeState(state, &s); err != nil {
		return "", err
	}
	return rosterTurn(players, len(s.Moves))
}

// ход соперника в текущем раунде не раскрывается до конца раунда
func (RPS) Redact(state json.RawMessage, viewerID string) json.RawMessage {
	var s rpsState
	if err := decodeState(state, &s); err != nil {
		return state
	}
	for p := range s.Moves {
		if p != viewerID {
			s.Moves[p] = rpsHidden
		}
	}
	out, err := encodeState(s)
	if err != nil {
		return state
	}
	return out
}

// определяет результат одного раунда для первого игрока
func decide(moveA, moveB string) string {
	if moveA == moveB {
		return "draw"
	}

	switch moveA {
	case "rock":
		if moveB == "scissors" {
			return "win"
		}
	case "paper":
		if moveB == "rock" {
			return "win"
		}
	case "scissors":
		if moveB == "paper" {
			return "win"
		}
	}

	return "lose"
}
