// Package rating считает изменения рейтинга по итогу завершенного матча.
// Пакет ничего не знает о матчах и хранилище: на входе рейтинги, итог и состав.
package rating

import (
	"errors"
	"fmt"
	"math"

	"gameserver/internal/domain"
)

const (
	DefaultK     = 32
	DefaultFloor = 0
)

// ошибка входных данных - нарушен инвариант у вызывающего (рассинхрон реестра и данных)
var ErrInvalidInput = errors.New("invalid rating input")

// Engine - попарный Эло, обобщенный на ничьи и больше двух игроков
type Engine struct {
	K     float64
	Floor int
}

func NewEngine() Engine {
	return Engine{K: DefaultK, Floor: DefaultFloor}
}

// ComputeDeltas с параметрами по умолчанию
func ComputeDeltas(ratings map[string]int, outcome domain.Outcome, roster []string) (map[string]int, error) {
	return NewEngine().ComputeDeltas(ratings, outcome, roster)
}

// ComputeDeltas возвращает целое изменение рейтинга для каждого игрока состава.
// Для двух игроков сумма изменений всегда ровно ноль, рейтинг не опускается ниже Floor.
func (e Engine) ComputeDeltas(ratings map[string]int, outcome domain.Outcome, roster []string) (map[string]int, error) {
	if err := e.validate(ratings, outcome, roster); err != nil {
		return nil, err
	}

	n := len(roster)
	deltas := make(map[string]int, n)
	if n == 1 {
		deltas[roster[0]] = 0
		return deltas, nil
	}

	for _, a := range roster {
		var sum float64
		for _, b := range roster {
			if a == b {
				continue
			}
			sum += e.K * (actualScore(outcome, a, b) - expectedScore(ratings[a], ratings[b]))
		}
		deltas[a] = int(math.Round(sum / float64(n-1)))
	}

	if n == 2 {
		e.balancePair(ratings, deltas, roster[0], roster[1])
		return deltas, nil
	}

	for _, p := range roster {
		deltas[p] = e.clamp(ratings[p], deltas[p])
	}
	return deltas, nil
}

// E_a = 1 / (1 + 10^((R_b - R_a)/400))
func expectedScore(ra, rb int) float64 {
	return 1 / (1 + math.Pow(10, float64(rb-ra)/400))
}

// при победе одного из нескольких проигравшие между собой считаются сыгравшими вничью
func actualScore(outcome domain.Outcome, a, b string) float64 {
	if outcome.Kind == domain.OutcomeDraw {
		return 0.5
	}
	switch outcome.Winner {
	case a:
		return 1
	case b:
		return 0
	default:
		return 0.5
	}
}

// остаток округления переносится на больший по модулю delta, а отсечение по
// полу у одного отражается на другом, чтобы сумма осталась нулевой
func (e Engine) balancePair(ratings, deltas map[string]int, a, b string) {
	if rem := deltas[a] + deltas[b]; rem != 0 {
		if abs(deltas[a]) >= abs(deltas[b]) {
			deltas[a] -= rem
		} else {
			deltas[b] -= rem
		}
	}

	if clamped := e.clamp(ratings[a], deltas[a]); clamped != deltas[a] {
		deltas[a] = clamped
		deltas[b] = -clamped
	}
	if clamped := e.clamp(ratings[b], deltas[b]); clamped != deltas[b] {
		deltas[b] = clamped
		deltas[a] = -clamped
	}
}

func (e Engine) clamp(rating, delta int) int {
	if rating+delta < e.Floor {
		return e.Floor - rating
	}
	return delta
}

func (e Engine) validate(ratings map[string]int, outcome domain.Outcome, roster []string) error {
	if len(roster) == 0 {
		return fmt.Errorf("%w: empty roster", ErrInvalidInput)
	}
	if !outcome.IsTerminal() {
		return fmt.Errorf("%w: outcome is not terminal", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(roster))
	for _, p := range roster {
		if seen[p] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidInput, p)
		}
		seen[p] = true

		r, ok := ratings[p]
		if !ok {
			return fmt.Errorf("%w: no rating for %q", ErrInvalidInput, p)
		}
		if r < e.Floor {
			return fmt.Errorf("%w: rating of %q is below floor", ErrInvalidInput, p)
		}
	}
	if outcome.Kind == domain.OutcomeWin && !seen[outcome.Winner] {
		return fmt.Errorf("%w: winner %q is not in roster", ErrInvalidInput, outcome.Winner)
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
