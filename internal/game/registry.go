package game

import (
	"fmt"
	"sort"

	"gameserver/internal/domain"
)

// Реестр модулей правил по имени типа игры. Заполняется один раз при старте
// и дальше только читается, поэтому блокировки не нужны.
type Registry struct {
	rules map[string]Rules
}

func NewRegistry(rules ...Rules) *Registry {
	r := &Registry{rules: make(map[string]Rules, len(rules))}
	for _, rl := range rules {
		if _, dup := r.rules[rl.Name()]; dup {
			panic(fmt.Sprintf("game: duplicate rules %q", rl.Name()))
		}
		r.rules[rl.Name()] = rl
	}
	return r
}

// Default - все модули, которые поставляются с сервером.
// deckSecret подмешивается в перемешивание колоды карточных игр.
func Default(deckSecret string) *Registry {
	return NewRegistry(
		NewTicTacToe(),
		NewDrawCard(deckSecret),
		NewRPS(),
	)
}

func (r *Registry) Get(name string) (Rules, bool) {
	rl, ok := r.rules[name]
	return rl, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckGame проверяет, что описание игры из хранилища можно сыграть этим реестром
func (r *Registry) CheckGame(g *domain.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	rl, ok := r.Get(g.Name)
	if !ok {
		return fmt.Errorf("%w: no rules for %q", domain.ErrUnknownGame, g.Name)
	}
	if lim, ok := rl.(PlayerLimits); ok {
		for _, n := range []int{g.MinPlayers, g.MaxPlayers} {
			if !lim.SupportsPlayers(n) {
				return fmt.Errorf("%w: %s cannot be played by %d players", domain.ErrInvalidGame, g.Name, n)
			}
		}
	}
	return nil
}
