package domain

import "errors"

// Ошибки матчей. Conflict и Timeout временные: вызывающий может перечитать
// матч и повторить запрос. Остальные - ошибки вызывающего или отказ хранилища.
var (
	ErrUnknownGame      = errors.New("unknown game")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrFull             = errors.New("match is full")
	ErrFinished         = errors.New("match is finished")
	ErrConflict         = errors.New("match was modified concurrently")
	ErrTimeout          = errors.New("store operation timed out")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrMatchNotFound  = errors.New("match not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrNotParticipant = errors.New("player is not in this match")
	ErrNotGameOwner   = errors.New("only the game owner can change it")
	ErrInvalidGame    = errors.New("invalid game definition")
)

// IsTransient сообщает, можно ли безопасно повторить операцию
func IsTransient(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrTimeout)
}
