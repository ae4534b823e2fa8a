package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"battlesim/internal/battlefield"
	"battlesim/internal/engine"
	"battlesim/internal/game"
)

// objectiveControlRange is how close models must be to hold an objective.
const objectiveControlRange = 3.0

// chargeStopDistance is where a successful charge ends relative to the
// target.
const chargeStopDistance = 0.5

// DefaultMaxTurns matches the standard five battle round mission.
const DefaultMaxTurns = 5

// Simulator runs one battle between two armies on a battlefield. Construct
// with NewSimulator and call Run once; a Simulator is single-use because it
// mutates the armies it holds.
type Simulator struct {
	Field    *battlefield.Battlefield
	Zones    [2]battlefield.Zone
	Armies   [2]Army
	MaxTurns int

	rng    *rand.Rand
	log    *zap.Logger
	events []Event

	vp          [2]int
	woundsDealt [2]int
}

// NewSimulator wires a battle up. A nil logger disables logging.
func NewSimulator(field *battlefield.Battlefield, zones [2]battlefield.Zone, armies [2]Army, rng *rand.Rand, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		Field:    field,
		Zones:    zones,
		Armies:   armies,
		MaxTurns: DefaultMaxTurns,
		rng:      rng,
		log:      log,
	}
}

func (s *Simulator) record(turn, player int, phase Phase, unit, target, msg string, res *game.Result) {
	s.events = append(s.events, Event{
		Turn: turn, Player: player, Phase: phase.String(),
		Unit: unit, Target: target, Message: msg, Result: res,
	})
}

// Run plays the battle to completion and returns the report.
func (s *Simulator) Run() Report {
	s.deploy()

	turns := 0
	tabled := false
	for turn := 1; turn <= s.MaxTurns; turn++ {
		turns = turn
		for player := 0; player < 2; player++ {
			s.playerTurn(turn, player)
			if s.Armies[0].Tabled() || s.Armies[1].Tabled() {
				tabled = true
				break
			}
		}
		s.scoreObjectives(turn)
		if tabled {
			break
		}
	}

	return s.report(turns, tabled)
}

func (s *Simulator) deploy() {
	for player := 0; player < 2; player++ {
		deployArmy(s.rng, s.Field, s.Zones[player], s.Armies[player].Units)
		for _, u := range s.Armies[player].Units {
			s.record(0, player, PhaseDeployment, u.Name, "",
				fmt.Sprintf("deployed at (%.1f, %.1f)", u.Position.X, u.Position.Y), nil)
		}
	}
	s.log.Debug("deployment complete",
		zap.Int("units_p0", len(s.Armies[0].Units)),
		zap.Int("units_p1", len(s.Armies[1].Units)))
}

func (s *Simulator) playerTurn(turn, player int) {
	allies := s.Armies[player].Units
	enemies := s.Armies[1-player].Units

	for _, u := range allies {
		if !u.Destroyed() {
			u.ResetPhaseFlags()
		}
	}

	s.commandPhase(turn, player, allies)
	s.movementPhase(turn, player, allies, enemies)
	s.shootingPhase(turn, player, allies, enemies)
	s.chargePhase(turn, player, allies, enemies)
	s.fightPhase(turn)
}

// commandPhase runs battleshock: any unit at or below half its starting
// models tests 2d6 against leadership and is shocked on a failure. A shocked
// unit sits out the rest of the turn and contributes no objective control.
func (s *Simulator) commandPhase(turn, player int, allies []*game.Unit) {
	for _, u := range allies {
		if u.Destroyed() || u.ModelCount == 0 {
			continue
		}
		if u.ModelsRemaining()*2 > u.ModelCount {
			continue
		}
		roll := engine.TwoD6(s.rng)
		if roll < u.Stats.Leadership {
			u.State = game.StateBattleShocked
			s.record(turn, player, PhaseCommand, u.Name, "",
				fmt.Sprintf("battle-shock failed (%d vs Ld %d)", roll, u.Stats.Leadership), nil)
		} else {
			s.record(turn, player, PhaseCommand, u.Name, "",
				fmt.Sprintf("battle-shock passed (%d vs Ld %d)", roll, u.Stats.Leadership), nil)
		}
	}
}

func (s *Simulator) movementPhase(turn, player int, allies, enemies []*game.Unit) {
	for _, u := range allies {
		if u.Destroyed() || u.State == game.StateBattleShocked {
			continue
		}
		move := float64(u.Stats.Movement)
		switch decideMove(u, enemies, s.Field) {
		case orderHold:
			// Locked in or nothing worth doing.
		case orderRetreat:
			dest := allyCentroid(u, allies)
			u.Position = clampToField(battlefield.MoveToward(u.Position, dest, move), s.Field)
			u.HasMoved = true
			u.HasFallenBack = true
			u.State = game.StateFallBack
			u.InMelee = false
			s.record(turn, player, PhaseMovement, u.Name, "", "fell back", nil)
		case orderHoldRange:
			e := nearestEnemy(u, enemies)
			if e == nil {
				break
			}
			ideal := 0.75 * float64(u.MaxWeaponRange())
			d := u.DistanceTo(e)
			switch {
			case d > float64(u.MaxWeaponRange()):
				u.Position = clampToField(battlefield.MoveToward(u.Position, e.Position, move), s.Field)
				u.HasMoved = true
			case d < ideal:
				away := u.Position.Add(u.Position.Sub(e.Position))
				u.Position = clampToField(battlefield.MoveToward(u.Position, away, move), s.Field)
				u.HasMoved = true
			}
		case orderAdvanceOnEnemy:
			e := nearestEnemy(u, enemies)
			if e == nil {
				break
			}
			d := u.DistanceTo(e)
			// Out of any realistic charge this turn: advance for the
			// extra d6 and accept the shooting penalty.
			if d > move+chargeRange {
				move += float64(engine.D6(s.rng))
				u.HasAdvanced = true
			}
			dest := battlefield.MoveToward(u.Position, e.Position, move)
			// Stop outside engagement range; melee happens via the charge.
			if dest.DistanceTo(e.Position) < game.EngagementRange {
				dest = battlefield.MoveToward(u.Position, e.Position, d-game.EngagementRange)
			}
			u.Position = clampToField(dest, s.Field)
			u.HasMoved = true
		case orderTakeObjective:
			dest := nearestObjective(u, s.Field)
			u.Position = clampToField(battlefield.MoveToward(u.Position, dest, move), s.Field)
			u.HasMoved = true
		}
	}
}

func (s *Simulator) shootingPhase(turn, player int, allies, enemies []*game.Unit) {
	for _, u := range allies {
		if u.Destroyed() || u.State == game.StateBattleShocked || u.HasFallenBack || len(u.RangedWeapons) == 0 {
			continue
		}
		if u.InEngagementRange(enemies) {
			continue
		}
		target := pickShootingTarget(u, enemies, s.Field)
		if target == nil {
			continue
		}
		ov := game.Overrides{
			Cover: s.Field.InCover(target.Position),
		}
		if u.HasAdvanced {
			ov.HitMod--
		}
		var total game.Result
		for _, w := range u.RangedWeapons {
			if target.Destroyed() || !w.InRange(u.DistanceTo(target)) {
				continue
			}
			total.Add(game.ResolveAttack(s.rng, u, w, target, ov))
			u.HasShot = true
		}
		s.woundsDealt[player] += total.Damage
		if total.Damage > 0 {
			s.record(turn, player, PhaseShooting, u.Name, target.Name,
				fmt.Sprintf("%d damage, %d models slain", total.Damage, total.ModelsKilled), &total)
		}
		if target.Destroyed() {
			s.record(turn, player, PhaseShooting, u.Name, target.Name, "unit destroyed", nil)
		}
	}
}

// chargePhase rolls 2d6 per declared charge; success requires reaching the
// declared target, and a successful charger ends half an inch away, locking
// both units in melee.
func (s *Simulator) chargePhase(turn, player int, allies, enemies []*game.Unit) {
	for _, u := range allies {
		if u.Destroyed() || u.State == game.StateBattleShocked || u.HasFallenBack || u.HasAdvanced || len(u.MeleeWeapons) == 0 {
			continue
		}
		if u.InEngagementRange(enemies) {
			continue
		}
		target := pickChargeTarget(u, enemies)
		if target == nil {
			continue
		}
		dist := u.DistanceTo(target)
		roll := engine.TwoD6(s.rng)
		if float64(roll) < dist {
			s.record(turn, player, PhaseCharge, u.Name, target.Name,
				fmt.Sprintf("charge failed (%d vs %.1f)", roll, dist), nil)
			continue
		}
		u.Position = clampToField(
			battlefield.MoveToward(u.Position, target.Position, dist-chargeStopDistance), s.Field)
		u.InMelee = true
		target.InMelee = true
		s.record(turn, player, PhaseCharge, u.Name, target.Name,
			fmt.Sprintf("charge made (%d vs %.1f)", roll, dist), nil)
	}
}

// fightPhase activates every engaged unit from both sides in descending
// Movement order. Each unit swings all melee weapons at the nearest enemy
// in engagement range.
func (s *Simulator) fightPhase(turn int) {
	var fighters []*game.Unit
	for p := 0; p < 2; p++ {
		for _, u := range s.Armies[p].Units {
			if u.Destroyed() || u.State == game.StateBattleShocked || u.HasFought || len(u.MeleeWeapons) == 0 {
				continue
			}
			if u.InEngagementRange(s.Armies[1-p].Units) {
				fighters = append(fighters, u)
			}
		}
	}
	sort.SliceStable(fighters, func(i, j int) bool {
		return fighters[i].Stats.Movement > fighters[j].Stats.Movement
	})

	for _, u := range fighters {
		if u.Destroyed() {
			continue
		}
		enemies := s.Armies[1-u.Player].Units
		target := nearestEnemy(u, enemies)
		if target == nil || u.DistanceTo(target) > game.EngagementRange {
			continue
		}
		for _, w := range u.MeleeWeapons {
			if target.Destroyed() {
				break
			}
			res := game.ResolveAttack(s.rng, u, w, target, game.Overrides{})
			s.woundsDealt[u.Player] += res.Damage
			s.record(turn, u.Player, PhaseFight, u.Name, target.Name,
				fmt.Sprintf("%s: %d damage, %d models slain", w.Name, res.Damage, res.ModelsKilled), &res)
		}
		u.HasFought = true
		if target.Destroyed() {
			u.InMelee = u.InEngagementRange(enemies)
			s.record(turn, u.Player, PhaseFight, u.Name, target.Name, "unit destroyed", nil)
		}
	}
}

// scoreObjectives runs at the end of each battle round. Control is the
// strict majority of objective control (OC per model, battle-shocked units
// count zero) within range; ties leave the marker unclaimed.
func (s *Simulator) scoreObjectives(turn int) {
	for i := range s.Field.Objectives {
		o := &s.Field.Objectives[i]
		var oc [2]int
		for p := 0; p < 2; p++ {
			for _, u := range s.Armies[p].Units {
				if u.Destroyed() || u.State == game.StateBattleShocked {
					continue
				}
				if u.Position.DistanceTo(o.Position) <= objectiveControlRange {
					oc[p] += u.Stats.OC * u.ModelsRemaining()
				}
			}
		}
		switch {
		case oc[0] > oc[1]:
			o.ControlledBy = 0
		case oc[1] > oc[0]:
			o.ControlledBy = 1
		default:
			o.ControlledBy = battlefield.NoOwner
		}
		if o.ControlledBy != battlefield.NoOwner {
			s.vp[o.ControlledBy] += o.Value
			s.record(turn, o.ControlledBy, PhaseScoring, "", "",
				fmt.Sprintf("%s held for %d VP", o.Name, o.Value), nil)
		}
	}
}

func (s *Simulator) report(turns int, tabled bool) Report {
	r := Report{
		WinnerPlayer:  -1,
		Winner:        "Draw",
		Turns:         turns,
		Tabled:        tabled,
		VictoryPoints: s.vp,
		WoundsDealt:   s.woundsDealt,
		Events:        s.events,
	}
	for p := 0; p < 2; p++ {
		r.PointsRemaining[p] = s.Armies[p].PointsRemaining()
		r.UnitsRemaining[p] = s.Armies[p].UnitsRemaining()
	}

	switch {
	case s.vp[0] != s.vp[1]:
		if s.vp[0] > s.vp[1] {
			r.WinnerPlayer = 0
		} else {
			r.WinnerPlayer = 1
		}
	case r.PointsRemaining[0] != r.PointsRemaining[1]:
		if r.PointsRemaining[0] > r.PointsRemaining[1] {
			r.WinnerPlayer = 0
		} else {
			r.WinnerPlayer = 1
		}
	}
	if r.WinnerPlayer >= 0 {
		r.Winner = s.Armies[r.WinnerPlayer].Name
	}

	s.log.Info("battle finished",
		zap.String("winner", r.Winner),
		zap.Int("turns", r.Turns),
		zap.Bool("tabled", r.Tabled),
		zap.Int("vp_p0", r.VictoryPoints[0]),
		zap.Int("vp_p1", r.VictoryPoints[1]))
	return r
}
