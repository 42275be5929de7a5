package game

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strings"

	"gameserver/internal/domain"
)

const (
	cardRanks    = "23456789TJQKA"
	cardSuits    = "CDHS" // порядок мастей для разрешения равных рангов
	drawHandSize = 3
	hiddenCard   = "??"
)

// "Вытяни карту": каждому раздается по 3 карты из колоды, перемешанной
// детерминированно от секрета сервера и порядка игроков. Взятку берет старшая карта,
// ведущий взятки r - players[r % n]. Больше взяток - победа, поровну - ничья.
type DrawCard struct {
	// без секрета раздачу может пересчитать любой, кто знает состав
	secret []byte
}

type playedCard struct {
	Player string `json:"player"`
	Card   string `json:"card"`
}

type cardState struct {
	Players   []string            `json:"players"`
	Hands     map[string][]string `json:"hands"`
	Trick     []playedCard        `json:"trick"`
	LastTrick []playedCard        `json:"last_trick,omitempty"`
	TrickNo   int                 `json:"trick_no"`
	Tricks    map[string]int      `json:"tricks"`
	HandSize  int                 `json:"hand_size"`
}

type cardMove struct {
	Card string `json:"card"`
}

func NewDrawCard(secret string) *DrawCard {
	return &DrawCard{secret: []byte(secret)}
}

func (DrawCard) Name() string {
	return domain.GameDrawCard
}

func (DrawCard) SupportsPlayers(n int) bool {
	return n >= 2 && n <= 4
}

func (d DrawCard) InitialState(players []string) (json.RawMessage, error) {
	if len(players) < 2 || len(players)*drawHandSize > len(cardRanks)*len(cardSuits) {
		return nil, fmt.Errorf("%w: draw-a-card cannot deal to %d players", ErrBadState, len(players))
	}

	deck := shuffledDeck(d.secret, players)
	s := cardState{
		Players:  slices.Clone(players),
		Hands:    make(map[string][]string, len(players)),
		Tricks:   make(map[string]int, len(players)),
		Trick:    []playedCard{},
		HandSize: drawHandSize,
	}
	// раздаем по одной карте по кругу
	for i := 0; i < drawHandSize*len(players); i++ {
		p := players[i%len(players)]
		s.Hands[p] = append(s.Hands[p], deck[i])
	}
	for _, p := range players {
		s.Tricks[p] = 0
	}
	return encodeState(s)
}

func (d DrawCard) ValidateMove(state json.RawMessage, playerID string, move json.RawMessage) (json.RawMessage, error) {
	var s cardState
	if err := decodeState(state, &s); err != nil {
		return nil, err
	}
	if s.TrickNo >= s.HandSize {
		return nil, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	if playerID != s.active() {
		return nil, ErrNotYourTurn
	}

	var mv cardMove
	if err := decodeMove(move, &mv); err != nil {
		return nil, err
	}
	card := strings.ToUpper(strings.TrimSpace(mv.Card))
	hand := s.Hands[playerID]
	idx := slices.Index(hand, card)
	if idx < 0 {
		return nil, fmt.Errorf("%w: card %q is not in hand", ErrIllegalMove, mv.Card)
	}

	s.Hands[playerID] = slices.Delete(slices.Clone(hand), idx, idx+1)
	s.Trick = append(s.Trick, playedCard{Player: playerID, Card: card})

	// взятка закрывается, когда сыграли все
	if len(s.Trick) == len(s.Players) {
		best := s.Trick[0]
		for _, pc := range s.Trick[1:] {
			if cardValue(pc.Card) > cardValue(best.Card) {
				best = pc
			}
		}
		s.Tricks[best.Player]++
		s.LastTrick = s.Trick
		s.Trick = []playedCard{}
		s.TrickNo++
	}

	return encodeState(s)
}

func (DrawCard) Outcome(state json.RawMessage) (domain.Outcome, error) {
	var s cardState
	if err := decodeState(state, &s); err != nil {
		return domain.Outcome{}, err
	}
	if s.TrickNo < s.HandSize {
		return domain.Ongoing(), nil
	}

	var leader string
	best, ties := -1, 0
	for _, p := range s.Players {
		switch n := s.Tricks[p]; {
		case n > best:
			leader, best, ties = p, n, 1
		case n == best:
			ties++
		}
	}
	if ties > 1 {
		return domain.Draw(), nil
	}
	return domain.Win(leader), nil
}

func (DrawCard) NextPlayer(state json.RawMessage, players []string) (string, error) {
	var s cardState
	if err := decodeState(state, &s); err != nil {
		return "", err
	}
	return rosterTurn(players, s.TrickNo+len(s.Trick))
}

// чужие руки заменяются рубашками той же длины
func (DrawCard) Redact(state json.RawMessage, viewerID string) json.RawMessage {
	var s cardState
	if err := decodeState(state, &s); err != nil {
		return state
	}
	for p, hand := range s.Hands {
		if p == viewerID {
			continue
		}
		hidden := make([]string, len(hand))
		for i := range hidden {
			hidden[i] = hiddenCard
		}
		s.Hands[p] = hidden
	}
	out, err := encodeState(s)
	if err != nil {
		return state
	}
	return out
}

func (s *cardState) active() string {
	if len(s.Players) == 0 {
		return ""
	}
	return s.Players[(s.TrickNo+len(s.Trick))%len(s.Players)]
}

func cardValue(card string) int {
	if len(card) != 2 {
		return -1
	}
	return strings.IndexByte(cardRanks, card[0])*len(cardSuits) + strings.IndexByte(cardSuits, card[1])
}

func shuffledDeck(secret []byte, players []string) []string {
	deck := make([]string, 0, len(cardRanks)*len(cardSuits))
	for _, r := range cardRanks {
		for _, s := range cardSuits {
			deck = append(deck, string(r)+string(s))
		}
	}

	h := fnv.New64a()
	h.Write(secret)
	h.Write([]byte{0})
	for _, p := range players {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
