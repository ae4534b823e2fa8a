package sim

import (
	"math/rand"
	"testing"

	"battlesim/internal/battlefield"
	"battlesim/internal/game"
)

func marine(id string, player int, pos battlefield.Position) *game.Unit {
	return &game.Unit{
		ID: id, Name: id, Player: player,
		Stats: game.UnitStats{
			Movement: 6, Toughness: 4, Save: 3, Wounds: 2,
			Leadership: 6, OC: 2,
		},
		ModelCount: 5, WoundsPerModel: 2, CurrentWounds: 10,
		Points:   100,
		Position: pos,
		RangedWeapons: []game.Weapon{
			{Name: "bolt rifle", Ranged: true, Range: 24, Attacks: "2", Skill: 3, Strength: 4, AP: -1, Damage: "1"},
		},
		MeleeWeapons: []game.Weapon{
			{Name: "close combat weapon", Attacks: "2", Skill: 3, Strength: 4, Damage: "1"},
		},
	}
}

func standardField() *battlefield.Battlefield {
	f := battlefield.New(44, 60)
	f.AddObjective(battlefield.Objective{Name: "center", Position: battlefield.Position{X: 22, Y: 30}, Value: 5})
	return f
}

func standardZones() [2]battlefield.Zone {
	return [2]battlefield.Zone{
		{Shape: battlefield.ZoneRectangle, Rect: battlefield.Rect{XMin: 0, XMax: 44, YMin: 0, YMax: 12}},
		{Shape: battlefield.ZoneRectangle, Rect: battlefield.Rect{XMin: 0, XMax: 44, YMin: 48, YMax: 60}},
	}
}

func TestBattleTerminatesWithinMaxTurns(t *testing.T) {
	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{marine("red-1", 0, battlefield.Position{}), marine("red-2", 0, battlefield.Position{})}},
		{Name: "Blue", Units: []*game.Unit{marine("blue-1", 1, battlefield.Position{}), marine("blue-2", 1, battlefield.Position{})}},
	}
	s := NewSimulator(standardField(), standardZones(), armies, rand.New(rand.NewSource(1)), nil)
	r := s.Run()

	if r.Turns < 1 || r.Turns > DefaultMaxTurns {
		t.Fatalf("Turns = %d, want 1..%d", r.Turns, DefaultMaxTurns)
	}
	if r.Winner == "" {
		t.Error("report must always name a winner or Draw")
	}
	if len(r.Events) == 0 {
		t.Error("battle produced no events")
	}
}

func TestDeploymentStaysInZone(t *testing.T) {
	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{marine("red-1", 0, battlefield.Position{})}},
		{Name: "Blue", Units: []*game.Unit{marine("blue-1", 1, battlefield.Position{})}},
	}
	zones := standardZones()
	s := NewSimulator(standardField(), zones, armies, rand.New(rand.NewSource(2)), nil)
	s.deploy()

	for p := 0; p < 2; p++ {
		for _, u := range s.Armies[p].Units {
			if !zones[p].Contains(u.Position) {
				t.Errorf("player %d unit deployed at %v outside its zone", p, u.Position)
			}
		}
	}
}

func TestTablingEndsTheBattle(t *testing.T) {
	// One wounded grot against three full squads: the grot dies well
	// before turn five.
	grot := marine("grot", 1, battlefield.Position{})
	grot.ModelCount = 1
	grot.WoundsPerModel = 1
	grot.CurrentWounds = 1
	grot.Stats.Save = 7
	grot.Stats.Toughness = 1
	grot.MeleeWeapons = nil

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{
			marine("red-1", 0, battlefield.Position{}),
			marine("red-2", 0, battlefield.Position{}),
			marine("red-3", 0, battlefield.Position{}),
		}},
		{Name: "Grots", Units: []*game.Unit{grot}},
	}
	// Close deployment so shooting connects on turn one.
	zones := [2]battlefield.Zone{
		{Shape: battlefield.ZoneRectangle, Rect: battlefield.Rect{XMin: 20, XMax: 24, YMin: 18, YMax: 22}},
		{Shape: battlefield.ZoneRectangle, Rect: battlefield.Rect{XMin: 20, XMax: 24, YMin: 28, YMax: 32}},
	}
	s := NewSimulator(standardField(), zones, armies, rand.New(rand.NewSource(3)), nil)
	r := s.Run()

	if !r.Tabled {
		t.Fatalf("expected tabling, got %+v", r)
	}
	if r.Winner != "Red" {
		t.Errorf("Winner = %q, want Red", r.Winner)
	}
	if r.UnitsRemaining[1] != 0 {
		t.Errorf("loser has %d units remaining", r.UnitsRemaining[1])
	}
}

func TestObjectiveTieClaimsNothing(t *testing.T) {
	f := standardField()
	a := marine("a", 0, battlefield.Position{X: 22, Y: 29})
	b := marine("b", 1, battlefield.Position{X: 22, Y: 31})

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{a}},
		{Name: "Blue", Units: []*game.Unit{b}},
	}
	s := NewSimulator(f, standardZones(), armies, rand.New(rand.NewSource(4)), nil)
	s.scoreObjectives(1)

	if f.Objectives[0].ControlledBy != battlefield.NoOwner {
		t.Errorf("ControlledBy = %d, want unclaimed on equal OC", f.Objectives[0].ControlledBy)
	}
	if s.vp != [2]int{0, 0} {
		t.Errorf("vp = %v, want no score on a tie", s.vp)
	}
}

func TestBattleShockedUnitsCountNoOC(t *testing.T) {
	f := standardField()
	a := marine("a", 0, battlefield.Position{X: 22, Y: 29})
	a.State = game.StateBattleShocked
	b := marine("b", 1, battlefield.Position{X: 22, Y: 31})
	b.ModelCount = 10
	b.CurrentWounds = 4 // below half strength but still contributes until shocked
	b.WoundsPerModel = 2

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{a}},
		{Name: "Blue", Units: []*game.Unit{b}},
	}
	s := NewSimulator(f, standardZones(), armies, rand.New(rand.NewSource(5)), nil)
	s.scoreObjectives(1)

	if f.Objectives[0].ControlledBy != 1 {
		t.Errorf("ControlledBy = %d, want 1 (shocked opponent counts zero)", f.Objectives[0].ControlledBy)
	}
	if s.vp[1] != 5 {
		t.Errorf("vp[1] = %d, want objective value 5", s.vp[1])
	}
}

func TestCommandPhaseShocksOnlyDepletedUnits(t *testing.T) {
	full := marine("full", 0, battlefield.Position{})
	depleted := marine("depleted", 0, battlefield.Position{})
	depleted.CurrentWounds = 4 // 2 of 5 models left
	depleted.Stats.Leadership = 13 // 2d6 cannot reach: guaranteed failure

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{full, depleted}},
		{Name: "Blue", Units: []*game.Unit{marine("b", 1, battlefield.Position{})}},
	}
	s := NewSimulator(standardField(), standardZones(), armies, rand.New(rand.NewSource(6)), nil)
	s.commandPhase(1, 0, armies[0].Units)

	if full.State != game.StateActive {
		t.Error("full-strength unit must not test")
	}
	if depleted.State != game.StateBattleShocked {
		t.Error("depleted unit with unreachable leadership must be shocked")
	}
}

func TestBattleShockedUnitSitsOutTheTurn(t *testing.T) {
	shaken := marine("shaken", 0, battlefield.Position{X: 22, Y: 20})
	shaken.CurrentWounds = 4       // 2 of 5 models: must test
	shaken.Stats.Leadership = 13   // 2d6 cannot reach: always shocked
	enemy := marine("enemy", 1, battlefield.Position{X: 22, Y: 35})

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{shaken}},
		{Name: "Blue", Units: []*game.Unit{enemy}},
	}
	s := NewSimulator(standardField(), standardZones(), armies, rand.New(rand.NewSource(8)), nil)
	before := shaken.Position
	s.playerTurn(1, 0)

	if shaken.State != game.StateBattleShocked {
		t.Fatalf("state = %v, want battle-shocked", shaken.State)
	}
	if shaken.Position != before {
		t.Errorf("shocked unit moved from %v to %v", before, shaken.Position)
	}
	if shaken.HasShot {
		t.Error("shocked unit must not shoot")
	}
	if enemy.CurrentWounds != 10 {
		t.Errorf("enemy took %d damage from a shocked unit", 10-enemy.CurrentWounds)
	}
	for _, ev := range s.events {
		if ev.Phase != PhaseCommand.String() && ev.Unit == "shaken" {
			t.Errorf("shocked unit produced a %s event", ev.Phase)
		}
	}
}

func TestShootingCommitsAllGunsToOneTarget(t *testing.T) {
	gunner := marine("gunner", 0, battlefield.Position{X: 22, Y: 20})
	gunner.MeleeWeapons = nil
	gunner.RangedWeapons = []game.Weapon{
		{Name: "bolt rifle", Ranged: true, Range: 24, Attacks: "2", Skill: 2, Strength: 8, AP: -3, Damage: "2"},
		{Name: "plasma pistol", Ranged: true, Range: 12, Attacks: "1", Skill: 2, Strength: 8, AP: -3, Damage: "2"},
	}
	target := marine("target", 1, battlefield.Position{X: 22, Y: 30})
	target.Stats.Save = 7

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{gunner}},
		{Name: "Blue", Units: []*game.Unit{target}},
	}
	s := NewSimulator(standardField(), standardZones(), armies, rand.New(rand.NewSource(9)), nil)
	s.shootingPhase(1, 0, armies[0].Units, armies[1].Units)

	events := 0
	for _, ev := range s.events {
		if ev.Phase == PhaseShooting.String() && ev.Result != nil {
			events++
			if ev.Result.Damage == 0 {
				t.Error("shooting event recorded with zero damage")
			}
			if ev.Target != "target" {
				t.Errorf("event target = %q", ev.Target)
			}
		}
	}
	if events > 1 {
		t.Errorf("shooting produced %d damage events, want one aggregated per unit", events)
	}
}

func TestZeroDamageShootingLogsNothing(t *testing.T) {
	gunner := marine("gunner", 0, battlefield.Position{X: 22, Y: 20})
	gunner.MeleeWeapons = nil
	gunner.RangedWeapons = []game.Weapon{
		{Name: "bolter", Ranged: true, Range: 24, Attacks: "2", Skill: 3, Strength: 4, Damage: "1"},
	}
	bunker := marine("bunker", 1, battlefield.Position{X: 22, Y: 30})
	bunker.Stats.Save = 2
	bunker.Rules.SaveMod = -1 // save threshold 1: cannot fail

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{gunner}},
		{Name: "Blue", Units: []*game.Unit{bunker}},
	}
	s := NewSimulator(standardField(), standardZones(), armies, rand.New(rand.NewSource(10)), nil)
	s.shootingPhase(1, 0, armies[0].Units, armies[1].Units)

	for _, ev := range s.events {
		if ev.Phase == PhaseShooting.String() {
			t.Errorf("zero-damage shooting logged %q", ev.Message)
		}
	}
}

func TestArmyPointsRemaining(t *testing.T) {
	u := marine("u", 0, battlefield.Position{})
	a := Army{Name: "Red", Units: []*game.Unit{u}}
	if got := a.PointsRemaining(); got != 100 {
		t.Fatalf("full army points = %d, want 100", got)
	}
	u.TakeDamage(4) // 3 of 5 models remain
	if got := a.PointsRemaining(); got != 60 {
		t.Errorf("points after losses = %d, want 60", got)
	}
	u.TakeDamage(100)
	if got := a.PointsRemaining(); got != 0 {
		t.Errorf("destroyed unit points = %d, want 0", got)
	}
}

func TestRetreatBreaksMeleeAndMarksFallBack(t *testing.T) {
	runner := marine("runner", 0, battlefield.Position{X: 10, Y: 10})
	runner.MeleeWeapons = nil // ranged unit, will fall back when engaged
	anchor := marine("anchor", 0, battlefield.Position{X: 30, Y: 10})
	enemy := marine("enemy", 1, battlefield.Position{X: 10.5, Y: 10})

	armies := [2]Army{
		{Name: "Red", Units: []*game.Unit{runner, anchor}},
		{Name: "Blue", Units: []*game.Unit{enemy}},
	}
	s := NewSimulator(standardField(), standardZones(), armies, rand.New(rand.NewSource(7)), nil)
	s.movementPhase(1, 0, armies[0].Units, armies[1].Units)

	if !runner.HasFallenBack || runner.State != game.StateFallBack {
		t.Fatal("engaged ranged unit must fall back")
	}
	if runner.Position.X <= 10 {
		t.Errorf("runner at %v did not move toward its anchor", runner.Position)
	}

	// Fallen-back units sit out the shooting phase.
	s.shootingPhase(1, 0, armies[0].Units, armies[1].Units)
	if runner.HasShot {
		t.Error("fallen-back unit must not shoot")
	}
}
