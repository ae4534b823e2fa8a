package game

import (
	"math/rand"

	"battlesim/internal/engine"
)

// Result is the outcome of resolving one weapon attack sequence.
type Result struct {
	Attacks        int `json:"attacks"`
	Hits           int `json:"hits"`
	CriticalHits   int `json:"critical_hits"`
	SustainedExtra int `json:"sustained_extra"`
	Wounds         int `json:"wounds"`
	CriticalWounds int `json:"critical_wounds"`
	MortalWounds   int `json:"mortal_wounds"`
	FailedSaves    int `json:"failed_saves"`
	FNPPrevented   int `json:"fnp_prevented"`
	Damage         int `json:"damage"`
	ModelsKilled   int `json:"models_killed"`
}

// Add accumulates another result, for multi-weapon activations.
func (r *Result) Add(o Result) {
	r.Attacks += o.Attacks
	r.Hits += o.Hits
	r.CriticalHits += o.CriticalHits
	r.SustainedExtra += o.SustainedExtra
	r.Wounds += o.Wounds
	r.CriticalWounds += o.CriticalWounds
	r.MortalWounds += o.MortalWounds
	r.FailedSaves += o.FailedSaves
	r.FNPPrevented += o.FNPPrevented
	r.Damage += o.Damage
	r.ModelsKilled += o.ModelsKilled
}

// woundTarget is the strength-vs-toughness table.
func woundTarget(strength, toughness int) int {
	switch {
	case strength >= toughness*2:
		return 2
	case strength > toughness:
		return 3
	case strength == toughness:
		return 4
	case strength*2 > toughness:
		return 5
	default:
		return 6
	}
}

// saveThreshold picks the best available save for the defender against the
// weapon's AP. Armor is degraded by AP and adjusted by save modifiers and
// cover; an invulnerable save ignores all of that and is used when lower.
// Thresholds above 6 cannot succeed; at or below 1 always succeed.
func saveThreshold(defender *Unit, w Weapon, m Mods) int {
	armor := defender.Stats.Save - w.AP - m.APMod + m.SaveMod
	if m.Cover && !m.IgnoresCover {
		armor--
	}
	if inv := defender.Stats.InvSave; inv > 0 && inv < armor {
		return inv
	}
	return armor
}

// rollStep rolls one d6 against threshold and applies the reroll policy.
// Returns the final die and whether it succeeded. A natural 1 always fails
// regardless of modifiers.
func rollStep(rng *rand.Rand, threshold int, policy RerollPolicy) (die int, ok bool) {
	die = engine.D6(rng)
	switch {
	case policy == RerollAll,
		policy == RerollOnes && die == 1,
		policy == RerollFailed && die < threshold:
		die = engine.D6(rng)
	}
	return die, die != 1 && die >= threshold
}

// Resolve runs the full attack sequence for one weapon against one target:
// attack generation, to-hit, to-wound, saves, damage and allocation. Damage
// is applied to the defender's wound pool; the returned Result records what
// happened at every step. Zero attacks resolve to a zero Result without
// touching the RNG further.
func Resolve(rng *rand.Rand, attacker *Unit, w Weapon, defender *Unit, m Mods) Result {
	var res Result
	if attacker.Destroyed() || defender.Destroyed() {
		return res
	}

	attacksPerModel := engine.Roll(rng, w.Attacks)
	if m.Blast {
		attacksPerModel += defender.ModelsRemaining() / 5
	}
	res.Attacks = attacksPerModel * attacker.ModelsRemaining()
	if res.Attacks <= 0 {
		return res
	}

	// To-hit. Torrent weapons hit automatically and never crit.
	hits := 0
	critHits := 0
	if m.Torrent {
		hits = res.Attacks
	} else {
		hitTarget := engine.Clamp(w.Skill-m.HitMod, 2, 6)
		for i := 0; i < res.Attacks; i++ {
			die, ok := rollStep(rng, hitTarget, m.RerollHits)
			if !ok {
				continue
			}
			hits++
			if die == 6 {
				critHits++
				res.SustainedExtra += m.SustainedHits
			}
		}
		hits += res.SustainedExtra
	}
	res.Hits = hits
	res.CriticalHits = critHits

	// To-wound. Lethal hits skip the wound roll entirely.
	wounds := 0
	critWounds := 0
	mortals := 0

	base := woundTarget(w.Strength, defender.Stats.Toughness)
	if m.AntiThreshold > 0 && m.AntiThreshold < base {
		base = m.AntiThreshold
	}
	target := engine.Clamp(base-m.WoundMod, 2, 6)
	if m.Transhuman && target < 4 {
		target = 4
	}

	normalHits := hits
	if m.LethalHits {
		wounds += critHits
		normalHits -= critHits
	}
	for i := 0; i < normalHits; i++ {
		die, ok := rollStep(rng, target, m.RerollWounds)
		if !ok {
			continue
		}
		if die == 6 {
			critWounds++
			if m.DevastatingWounds {
				mortals++
				continue // bypasses the save entirely
			}
		}
		wounds++
	}
	if m.MortalWoundsOnCrit {
		mortals += critWounds
	}
	res.Wounds = wounds
	res.CriticalWounds = critWounds
	res.MortalWounds = mortals

	// Saves.
	failed := 0
	st := saveThreshold(defender, w, m)
	for i := 0; i < wounds; i++ {
		if st > 6 {
			failed++
			continue
		}
		if st <= 1 {
			continue // save cannot fail
		}
		if _, ok := rollStep(rng, st, m.RerollSaves); !ok {
			failed++
		}
	}
	res.FailedSaves = failed

	// Damage. Mortal wounds bypass saves only; each is still an independent
	// damage instance rolled on the weapon's damage expression.
	total := 0
	for i := 0; i < failed+mortals; i++ {
		dmg := engine.Roll(rng, w.Damage) + m.DamageMod
		if dmg < 1 {
			dmg = 1
		}
		if m.HalveDamage {
			dmg /= 2
			if dmg < 1 {
				dmg = 1
			}
		}
		total += dmg
	}

	// Feel No Pain: one die per point of damage; a roll at or above the
	// threshold prevents that point.
	if m.FeelNoPain > 0 && total > 0 {
		kept := 0
		for i := 0; i < total; i++ {
			if engine.D6(rng) >= m.FeelNoPain {
				res.FNPPrevented++
			} else {
				kept++
			}
		}
		total = kept
	}

	res.Damage = total
	res.ModelsKilled = defender.TakeDamage(total)
	return res
}

// ResolveAttack combines modifier resolution and the attack sequence for
// one weapon.
func ResolveAttack(rng *rand.Rand, attacker *Unit, w Weapon, defender *Unit, ov Overrides) Result {
	return Resolve(rng, attacker, w, defender, ResolveModifiers(attacker, w, defender, ov))
}
