package sim

import (
	"battlesim/internal/game"
)

// Phase is one step of a player's turn.
type Phase int

const (
	PhaseDeployment Phase = iota
	PhaseCommand
	PhaseMovement
	PhaseShooting
	PhaseCharge
	PhaseFight
	PhaseScoring
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseDeployment:
		return "deployment"
	case PhaseCommand:
		return "command"
	case PhaseMovement:
		return "movement"
	case PhaseShooting:
		return "shooting"
	case PhaseCharge:
		return "charge"
	case PhaseFight:
		return "fight"
	case PhaseScoring:
		return "scoring"
	case PhaseEnd:
		return "end"
	}
	return "unknown"
}

// Event is one logged occurrence during a battle. Target and Result are set
// only for attack events.
type Event struct {
	Turn    int          `json:"turn"`
	Player  int          `json:"player"`
	Phase   string       `json:"phase"`
	Unit    string       `json:"unit,omitempty"`
	Target  string       `json:"target,omitempty"`
	Message string       `json:"message"`
	Result  *game.Result `json:"result,omitempty"`
}

// Report is the final outcome of one battle.
type Report struct {
	Winner          string  `json:"winner"` // army name or "Draw"
	WinnerPlayer    int     `json:"winner_player"` // -1 on draw
	Turns           int     `json:"turns"`
	Tabled          bool    `json:"tabled"`
	VictoryPoints   [2]int  `json:"victory_points"`
	PointsRemaining [2]int  `json:"points_remaining"`
	UnitsRemaining  [2]int  `json:"units_remaining"`
	WoundsDealt     [2]int  `json:"wounds_dealt"`
	Events          []Event `json:"events,omitempty"`
}

// Army is a named roster for one player.
type Army struct {
	Name  string       `json:"name" yaml:"name"`
	Units []*game.Unit `json:"units" yaml:"units"`
}

// PointsRemaining sums the points value of the army's living units,
// pro-rated by surviving models.
func (a Army) PointsRemaining() int {
	total := 0
	for _, u := range a.Units {
		if u.Destroyed() || u.ModelCount == 0 {
			continue
		}
		total += u.Points * u.ModelsRemaining() / u.ModelCount
	}
	return total
}

// UnitsRemaining counts living units.
func (a Army) UnitsRemaining() int {
	n := 0
	for _, u := range a.Units {
		if !u.Destroyed() {
			n++
		}
	}
	return n
}

// Tabled reports whether the army has no living units left.
func (a Army) Tabled() bool { return a.UnitsRemaining() == 0 }

// Clone deep-copies the roster for an independent run.
func (a Army) Clone() Army {
	return Army{Name: a.Name, Units: game.CloneArmy(a.Units)}
}
