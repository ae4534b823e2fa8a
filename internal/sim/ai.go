package sim

import (
	"math/rand"

	"battlesim/internal/battlefield"
	"battlesim/internal/game"
)

// The AI is a fixed heuristic, not a search: units hold, retreat, advance or
// grab objectives based on role, and pick targets by a simple score. It is
// deliberately deterministic given the dice.

// moveOrder is what the movement heuristic decided for one unit.
type moveOrder int

const (
	orderHold moveOrder = iota
	orderRetreat
	orderAdvanceOnEnemy
	orderHoldRange
	orderTakeObjective
)

// chargeRange is the farthest a charge may be declared from.
const chargeRange = 12.0

// deployArmy places every unit at a random point in its zone, avoiding
// impassable terrain when the dice allow it.
func deployArmy(rng *rand.Rand, field *battlefield.Battlefield, zone battlefield.Zone, units []*game.Unit) {
	for _, u := range units {
		p := zone.SamplePoint(rng)
		for i := 0; i < 10; i++ {
			t := field.TerrainAt(p)
			if t == nil || t.Kind != battlefield.Impassable {
				break
			}
			p = zone.SamplePoint(rng)
		}
		u.Position = p
	}
}

// decideMove picks the movement order for a unit. Engaged units either hold
// (durable melee units stay locked) or fall back toward their own lines;
// pure gunlines keep their distance; melee units close; everyone else plays
// the objectives.
func decideMove(u *game.Unit, enemies []*game.Unit, field *battlefield.Battlefield) moveOrder {
	if u.InEngagementRange(enemies) {
		if len(u.MeleeWeapons) > 0 && u.WoundsPerModel > 3 {
			return orderHold
		}
		return orderRetreat
	}
	if len(u.MeleeWeapons) == 0 && u.MaxWeaponRange() > 0 {
		return orderHoldRange
	}
	if len(u.MeleeWeapons) > 0 {
		return orderAdvanceOnEnemy
	}
	if len(field.Objectives) > 0 {
		return orderTakeObjective
	}
	return orderHold
}

// nearestEnemy returns the closest living enemy, or nil.
func nearestEnemy(u *game.Unit, enemies []*game.Unit) *game.Unit {
	var best *game.Unit
	bestDist := 0.0
	for _, e := range enemies {
		if e.Destroyed() {
			continue
		}
		d := u.DistanceTo(e)
		if best == nil || d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// allyCentroid is the mean position of living allies other than u; used as
// the fall-back direction. With no allies left it returns u's own position.
func allyCentroid(u *game.Unit, allies []*game.Unit) battlefield.Position {
	var sum battlefield.Position
	n := 0
	for _, a := range allies {
		if a == u || a.Destroyed() {
			continue
		}
		sum = sum.Add(a.Position)
		n++
	}
	if n == 0 {
		return u.Position
	}
	return battlefield.Position{X: sum.X / float64(n), Y: sum.Y / float64(n)}
}

// nearestObjective returns the closest objective not already held by the
// unit's player, falling back to the closest of all.
func nearestObjective(u *game.Unit, field *battlefield.Battlefield) battlefield.Position {
	var best *battlefield.Objective
	bestDist := 0.0
	for i := range field.Objectives {
		o := &field.Objectives[i]
		if o.ControlledBy == u.Player {
			continue
		}
		d := u.Position.DistanceTo(o.Position)
		if best == nil || d < bestDist {
			best, bestDist = o, d
		}
	}
	if best == nil && len(field.Objectives) > 0 {
		best = &field.Objectives[0]
		for i := range field.Objectives {
			o := &field.Objectives[i]
			if u.Position.DistanceTo(o.Position) < u.Position.DistanceTo(best.Position) {
				best = o
			}
		}
	}
	if best == nil {
		return u.Position
	}
	return best.Position
}

// scoreTarget ranks an enemy for shooting or charging. Wounded units and
// characters are preferred; closer is better, with a steeper distance
// penalty when weighing a charge.
func scoreTarget(u *game.Unit, e *game.Unit, charge bool) float64 {
	score := 0.0
	if start := e.StartingWounds(); start > 0 && e.CurrentWounds*2 < start {
		score += 50
	}
	if e.IsCharacter {
		score += 30
	}
	d := u.DistanceTo(e)
	if charge {
		score += 30 - 2*d
	} else {
		prox := 30 - d
		if prox > 0 {
			score += prox
		}
	}
	return score
}

// pickShootingTarget scores every visible enemy within the unit's longest
// weapon range and returns the best, or nil. The unit commits all its guns
// to the one target.
func pickShootingTarget(u *game.Unit, enemies []*game.Unit, field *battlefield.Battlefield) *game.Unit {
	var best *game.Unit
	bestScore := 0.0
	maxRange := float64(u.MaxWeaponRange())
	for _, e := range enemies {
		if e.Destroyed() {
			continue
		}
		if u.DistanceTo(e) > maxRange {
			continue
		}
		if !field.HasLineOfSight(u.Position, e.Position) {
			continue
		}
		s := scoreTarget(u, e, false)
		if best == nil || s > bestScore {
			best, bestScore = e, s
		}
	}
	return best
}

// pickChargeTarget returns the best enemy within charge declaration range.
func pickChargeTarget(u *game.Unit, enemies []*game.Unit) *game.Unit {
	var best *game.Unit
	bestScore := 0.0
	for _, e := range enemies {
		if e.Destroyed() {
			continue
		}
		if u.DistanceTo(e) > chargeRange {
			continue
		}
		s := scoreTarget(u, e, true)
		if best == nil || s > bestScore {
			best, bestScore = e, s
		}
	}
	return best
}

// clampToField keeps a position on the table.
func clampToField(p battlefield.Position, field *battlefield.Battlefield) battlefield.Position {
	if p.X < 0 {
		p.X = 0
	}
	if p.X > field.Width {
		p.X = field.Width
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > field.Length {
		p.Y = field.Length
	}
	return p
}
