package game

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gameserver/internal/domain"
)

func cardStateOf(t *testing.T, raw json.RawMessage) cardState {
	t.Helper()
	var s cardState
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return s
}

func cardMoveJSON(card string) json.RawMessage {
	b, _ := json.Marshal(cardMove{Card: card})
	return b
}

func TestDrawCard_DealIsDeterministic(t *testing.T) {
	dc := NewDrawCard("test-secret")
	players := []string{"alice", "bob", "carol"}

	a, err := dc.InitialState(players)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	b, _ := dc.InitialState(players)
	if string(a) != string(b) {
		t.Fatalf("раздача должна зависеть только от порядка игроков")
	}

	s := cardStateOf(t, a)
	seen := map[string]bool{}
	for _, p := range players {
		if len(s.Hands[p]) != drawHandSize {
			t.Fatalf("у %s %d карт, ожидалось %d", p, len(s.Hands[p]), drawHandSize)
		}
		for _, c := range s.Hands[p] {
			if seen[c] {
				t.Fatalf("карта %s раздана дважды", c)
			}
			seen[c] = true
		}
	}
}

func TestDrawCard_FullGame(t *testing.T) {
	dc := NewDrawCard("test-secret")
	players := []string{"alice", "bob"}

	state, err := dc.InitialState(players)
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}

	for turn := 0; ; turn++ {
		if turn > 10 {
			t.Fatalf("партия не завершилась")
		}
		active, err := dc.NextPlayer(state, players)
		if err != nil {
			t.Fatalf("NextPlayer: %v", err)
		}
		s := cardStateOf(t, state)
		card := s.Hands[active][0]

		state, err = dc.ValidateMove(state, active, cardMoveJSON(strings.ToLower(card)))
		if err != nil {
			t.Fatalf("ход %d: %v", turn, err)
		}
		out, err := dc.Outcome(state)
		if err != nil {
			t.Fatalf("Outcome: %v", err)
		}
		if out.IsTerminal() {
			final := cardStateOf(t, state)
			total := 0
			for _, n := range final.Tricks {
				total += n
			}
			if total != drawHandSize {
				t.Fatalf("разыграно %d взяток, ожидалось %d", total, drawHandSize)
			}
			if out.Kind == domain.OutcomeWin && final.Tricks[out.Winner]*2 <= drawHandSize {
				t.Fatalf("победитель %s взял только %d взяток", out.Winner, final.Tricks[out.Winner])
			}
			if turn != drawHandSize*len(players)-1 {
				t.Fatalf("партия закончилась на ходу %d", turn)
			}
			return
		}
	}
}

func TestDrawCard_MoveErrors(t *testing.T) {
	dc := NewDrawCard("test-secret")
	players := []string{"alice", "bob"}
	state, _ := dc.InitialState(players)
	s := cardStateOf(t, state)

	if _, err := dc.ValidateMove(state, "bob", cardMoveJSON(s.Hands["bob"][0])); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("ожидалось ErrNotYourTurn, получили %v", err)
	}
	if _, err := dc.ValidateMove(state, "alice", cardMoveJSON(s.Hands["bob"][0])); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("ожидалось ErrIllegalMove для чужой карты, получили %v", err)
	}
	if _, err := dc.ValidateMove(state, "alice", json.RawMessage(`{"card":"ZZ"}`)); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("ожидалось ErrIllegalMove, получили %v", err)
	}
}

func TestDrawCard_TrickGoesToHighestCard(t *testing.T) {
	state := json.RawMessage(`{
		"players":["a","b"],
		"hands":{"a":["2C"],"b":["2S"]},
		"trick":[],
		"trick_no":2,
		"tricks":{"a":1,"b":1},
		"hand_size":3
	}`)
	dc := NewDrawCard("test-secret")

	state, err := dc.ValidateMove(state, "a", cardMoveJSON("2C"))
	if err != nil {
		t.Fatalf("ход a: %v", err)
	}
	state, err = dc.ValidateMove(state, "b", cardMoveJSON("2S"))
	if err != nil {
		t.Fatalf("ход b: %v", err)
	}
	out, _ := dc.Outcome(state)
	if out.Kind != domain.OutcomeWin || out.Winner != "b" {
		t.Fatalf("пики старше треф при равном ранге, ожидалась победа b, получили %+v", out)
	}
}

func TestDrawCard_TiedTricksIsDraw(t *testing.T) {
	state := json.RawMessage(`{
		"players":["a","b","c"],
		"hands":{"a":[],"b":[],"c":[]},
		"trick":[],
		"trick_no":3,
		"tricks":{"a":1,"b":1,"c":1},
		"hand_size":3
	}`)
	out, err := NewDrawCard("test-secret").Outcome(state)
	if err != nil {
		t.Fatalf("Outcome: %v", err)
	}
	if out.Kind != domain.OutcomeDraw {
		t.Fatalf("ожидалась ничья, получили %+v", out)
	}
}

func TestDrawCard_RedactHidesOtherHands(t *testing.T) {
	dc := NewDrawCard("test-secret")
	state, _ := dc.InitialState([]string{"alice", "bob"})
	full := cardStateOf(t, state)

	view := cardStateOf(t, dc.Redact(state, "alice"))
	if strings.Join(view.Hands["alice"], ",") != strings.Join(full.Hands["alice"], ",") {
		t.Fatalf("свою руку игрок должен видеть полностью")
	}
	for _, c := range view.Hands["bob"] {
		if c != hiddenCard {
			t.Fatalf("чужая карта раскрыта: %s", c)
		}
	}
	// исходное состояние не меняется
	if cardStateOf(t, state).Hands["bob"][0] == hiddenCard {
		t.Fatalf("Redact не должен менять исходное состояние")
	}
}

func TestDrawCard_DealDependsOnServerSecret(t *testing.T) {
	players := []string{"alice", "bob"}

	a, _ := NewDrawCard("secret-a").InitialState(players)
	again, _ := NewDrawCard("secret-a").InitialState(players)
	b, _ := NewDrawCard("secret-b").InitialState(players)

	if string(a) != string(again) {
		t.Fatalf("одинаковый секрет должен давать одинаковую раздачу")
	}
	if string(a) == string(b) {
		t.Fatalf("разные секреты должны давать разные раздачи")
	}
}
