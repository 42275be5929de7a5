package domain

// Итог партии по мнению модуля правил
type OutcomeKind int

const (
	OutcomeOngoing OutcomeKind = iota
	OutcomeWin
	OutcomeDraw
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

type Outcome struct {
	Kind   OutcomeKind
	Winner string // только для OutcomeWin
}

func Ongoing() Outcome { return Outcome{Kind: OutcomeOngoing} }

func Draw() Outcome { return Outcome{Kind: OutcomeDraw} }

func Win(playerID string) Outcome { return Outcome{Kind: OutcomeWin, Winner: playerID} }

// IsTerminal - партия закончена (победа или ничья)
func (o Outcome) IsTerminal() bool {
	return o.Kind == OutcomeWin || o.Kind == OutcomeDraw
}
