package game

import (
	"encoding/json"
	"errors"

	"gameserver/internal/domain"
)

// Ошибки хода. Ход с такой ошибкой не меняет матч и не повторяется
// автоматически - клиент должен отправить исправленный ход.
var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("illegal move")

	// состояние или конфигурация не читаются модулем - рассинхрон данных
	ErrBadState = errors.New("corrupt game state")
)

// Rules - контракт модуля правил одного типа игры.
// Состояние игры принадлежит модулю, ядро хранит его как непрозрачный JSON.
type Rules interface {
	Name() string

	// стартовое состояние для матча, который только что перешел в IN_PROGRESS;
	// детерминировано для одного и того же порядка игроков
	InitialState(players []string) (json.RawMessage, error)

	// проверяет ход и возвращает новое состояние
	ValidateMove(state json.RawMessage, playerID string, move json.RawMessage) (json.RawMessage, error)

	// вызывается один раз после каждого успешного хода
	Outcome(state json.RawMessage) (domain.Outcome, error)

	// чистая функция состояния и состава - без времени и внешних данных,
	// чтобы повтор той же последовательности ходов давал тот же порядок
	NextPlayer(state json.RawMessage, players []string) (string, error)
}

// PlayerLimits - необязательная возможность: модуль сообщает, с каким
// количеством игроков он умеет играть
type PlayerLimits interface {
	SupportsPlayers(n int) bool
}

// Redactor - необязательная возможность: скрывает от зрителя приватную часть
// состояния (чужие карты, еще не раскрытый ход)
type Redactor interface {
	Redact(state json.RawMessage, viewerID string) json.RawMessage
}
