package game

import (
	"encoding/json"
	"fmt"
)

func decodeState(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty state", ErrBadState)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadState, err)
	}
	return nil
}

func decodeMove(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty move", ErrIllegalMove)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: malformed move: %v", ErrIllegalMove, err)
	}
	return nil
}

func encodeState(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

func rosterTurn(players []string, turn int) (string, error) {
	if len(players) == 0 {
		return "", fmt.Errorf("%w: empty roster", ErrBadState)
	}
	return players[turn%len(players)], nil
}
