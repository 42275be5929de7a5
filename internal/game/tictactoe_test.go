package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"gameserver/internal/domain"
)

func cellMove(i int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"cell":%d}`, i))
}

// проигрывает последовательность ходов и проверяет, что после каждого
// нетерминального хода очередь совпадает с NextPlayer
func playMoves(t *testing.T, rl Rules, players []string, moves []struct {
	player string
	move   json.RawMessage
}) (json.RawMessage, domain.Outcome) {
	t.Helper()

	state, err := rl.InitialState(players)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	out := domain.Ongoing()
	for i, mv := range moves {
		state, err = rl.ValidateMove(state, mv.player, mv.move)
		if err != nil {
			t.Fatalf("ход %d (%s): %v", i, mv.player, err)
		}
		out, err = rl.Outcome(state)
		if err != nil {
			t.Fatalf("Outcome: %v", err)
		}
		if out.IsTerminal() {
			if i != len(moves)-1 {
				t.Fatalf("партия закончилась раньше времени на ходу %d", i)
			}
			break
		}
		next, err := rl.NextPlayer(state, players)
		if err != nil {
			t.Fatalf("NextPlayer: %v", err)
		}
		if i+1 < len(moves) && moves[i+1].player != next {
			t.Fatalf("после хода %d ожидался %s, NextPlayer вернул %s", i, moves[i+1].player, next)
		}
	}
	return state, out
}

type step = struct {
	player string
	move   json.RawMessage
}

func TestTicTacToe_WinningLine(t *testing.T) {
	players := []string{"A", "B"}
	_, out := playMoves(t, NewTicTacToe(), players, []step{
		{"A", cellMove(4)},
		{"B", cellMove(0)},
		{"A", cellMove(1)},
		{"B", cellMove(2)},
		{"A", cellMove(7)},
	})
	if out.Kind != domain.OutcomeWin || out.Winner != "A" {
		t.Fatalf("ожидалась победа A, получили %+v", out)
	}
}

func TestTicTacToe_Draw(t *testing.T) {
	// X O X / X O O / O X X
	players := []string{"A", "B"}
	_, out := playMoves(t, NewTicTacToe(), players, []step{
		{"A", cellMove(0)},
		{"B", cellMove(1)},
		{"A", cellMove(2)},
		{"B", cellMove(4)},
		{"A", cellMove(3)},
		{"B", cellMove(5)},
		{"A", cellMove(7)},
		{"B", cellMove(6)},
		{"A", cellMove(8)},
	})
	if out.Kind != domain.OutcomeDraw {
		t.Fatalf("ожидалась ничья, получили %+v", out)
	}
}

func TestTicTacToe_Errors(t *testing.T) {
	ttt := NewTicTacToe()
	state, err := ttt.InitialState([]string{"A", "B"})
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}

	if _, err := ttt.ValidateMove(state, "B", cellMove(0)); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("ожидалось ErrNotYourTurn, получили %v", err)
	}

	state, err = ttt.ValidateMove(state, "A", cellMove(4))
	if err != nil {
		t.Fatalf("ход A: %v", err)
	}

	tests := []struct {
		name string
		move json.RawMessage
	}{
		{"occupied", cellMove(4)},
		{"out of range", cellMove(9)},
		{"negative", cellMove(-1)},
		{"missing cell", json.RawMessage(`{}`)},
		{"garbage", json.RawMessage(`not json`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ttt.ValidateMove(state, "B", tt.move); !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("ожидалось ErrIllegalMove, получили %v", err)
			}
		})
	}
}

func TestTicTacToe_InitialStateDeterministic(t *testing.T) {
	ttt := NewTicTacToe()
	a, _ := ttt.InitialState([]string{"A", "B"})
	b, _ := ttt.InitialState([]string{"A", "B"})
	if string(a) != string(b) {
		t.Fatalf("стартовое состояние должно быть детерминированным")
	}
	if _, err := ttt.InitialState([]string{"A"}); !errors.Is(err, ErrBadState) {
		t.Fatalf("ожидалось ErrBadState для одного игрока, получили %v", err)
	}
}

func TestTicTacToe_CorruptState(t *testing.T) {
	ttt := NewTicTacToe()
	if _, err := ttt.Outcome(json.RawMessage(`{"board":`)); !errors.Is(err, ErrBadState) {
		t.Fatalf("ожидалось ErrBadState, получили %v", err)
	}
}
