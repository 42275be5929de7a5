package game

import (
	"encoding/json"
	"errors"
	"testing"

	"gameserver/internal/domain"
)

func throw(m string) json.RawMessage {
	return json.RawMessage(`{"move":"` + m + `"}`)
}

func TestRPS_DecidedRoundEndsMatch(t *testing.T) {
	_, out := playMoves(t, NewRPS(), []string{"p1", "p2"}, []step{
		{"p1", throw("rock")},
		{"p2", throw("rock")},
		{"p1", throw("paper")},
		{"p2", throw("scissors")},
	})
	if out.Kind != domain.OutcomeWin || out.Winner != "p2" {
		t.Fatalf("ожидалась победа p2, получили %+v", out)
	}
}

func TestRPS_FiveDrawsIsDraw(t *testing.T) {
	var steps []step
	for i := 0; i < rpsMaxRounds; i++ {
		steps = append(steps, step{"p1", throw("paper")}, step{"p2", throw("paper")})
	}
	_, out := playMoves(t, NewRPS(), []string{"p1", "p2"}, steps)
	if out.Kind != domain.OutcomeDraw {
		t.Fatalf("ожидалась ничья, получили %+v", out)
	}
}

func TestRPS_Errors(t *testing.T) {
	rps := NewRPS()
	state, _ := rps.InitialState([]string{"p1", "p2"})

	if _, err := rps.ValidateMove(state, "p2", throw("rock")); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("ожидалось ErrNotYourTurn, получили %v", err)
	}
	if _, err := rps.ValidateMove(state, "p1", throw("lizard")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("ожидалось ErrIllegalMove, получили %v", err)
	}
}

func TestRPS_RedactHidesPendingThrow(t *testing.T) {
	rps := NewRPS()
	state, _ := rps.InitialState([]string{"p1", "p2"})
	state, err := rps.ValidateMove(state, "p1", throw("rock"))
	if err != nil {
		t.Fatalf("ход p1: %v", err)
	}

	var view rpsState
	if err := json.Unmarshal(rps.Redact(state, "p2"), &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view.Moves["p1"] != rpsHidden {
		t.Fatalf("ход p1 не должен быть виден p2, получили %q", view.Moves["p1"])
	}

	if err := json.Unmarshal(rps.Redact(state, "p1"), &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view.Moves["p1"] != "rock" {
		t.Fatalf("свой ход игрок видит, получили %q", view.Moves["p1"])
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"rock", "scissors", "win"},
		{"paper", "rock", "win"},
		{"scissors", "paper", "win"},
		{"rock", "paper", "lose"},
		{"rock", "rock", "draw"},
	}
	for _, tt := range tests {
		if got := decide(tt.a, tt.b); got != tt.want {
			t.Fatalf("decide(%s, %s) = %s, ожидалось %s", tt.a, tt.b, got, tt.want)
		}
	}
}
