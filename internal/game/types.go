package game

import (
	"strings"

	"battlesim/internal/battlefield"
)

// UnitState is a unit's lifecycle state. Destroyed is terminal.
type UnitState int

const (
	StateActive UnitState = iota
	StateFallBack
	StateBattleShocked
	StateDestroyed
)

func (s UnitState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFallBack:
		return "fall_back"
	case StateBattleShocked:
		return "battle_shocked"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// UnitStats are the per-model characteristics. Immutable for the battle.
type UnitStats struct {
	Movement   int `json:"movement" yaml:"movement"`
	Toughness  int `json:"toughness" yaml:"toughness"`
	Save       int `json:"save" yaml:"save"` // 2-6; 7 means no save
	Wounds     int `json:"wounds" yaml:"wounds"`
	Leadership int `json:"leadership" yaml:"leadership"`
	OC         int `json:"oc" yaml:"oc"`
	InvSave    int `json:"inv_save,omitempty" yaml:"inv_save,omitempty"` // 0 if none
}

// Weapon is a single weapon profile. AP is stored as it reads on the
// datasheet, i.e. -1 for AP-1; the save threshold worsens by subtracting it.
type Weapon struct {
	Name     string      `json:"name" yaml:"name"`
	Ranged   bool        `json:"ranged" yaml:"ranged"`
	Range    int         `json:"range" yaml:"range"`
	Attacks  string      `json:"attacks" yaml:"attacks"`
	Skill    int         `json:"skill" yaml:"skill"`
	Strength int         `json:"strength" yaml:"strength"`
	AP       int         `json:"ap" yaml:"ap"`
	Damage   string      `json:"damage" yaml:"damage"`
	Rules    WeaponRules `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// InRange reports whether a target at distance can be attacked. Melee
// weapons reach engagement range only.
func (w Weapon) InRange(distance float64) bool {
	if !w.Ranged {
		return distance <= EngagementRange
	}
	return distance <= float64(w.Range)
}

// EngagementRange is the distance at which units are locked in melee.
const EngagementRange = 1.0

// Unit is a squad on the battlefield. Created once at setup and mutated in
// place each phase; cloned (never rebuilt) for independent batch runs.
type Unit struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Player  int    `json:"player"` // 0 or 1
	Faction string `json:"faction,omitempty"`

	Stats          UnitStats `json:"stats"`
	ModelCount     int       `json:"model_count"`
	WoundsPerModel int       `json:"wounds_per_model"`
	CurrentWounds  int       `json:"current_wounds"`

	RangedWeapons []Weapon `json:"ranged_weapons,omitempty"`
	MeleeWeapons  []Weapon `json:"melee_weapons,omitempty"`

	Rules    UnitRules `json:"rules,omitempty"`
	Keywords []string  `json:"keywords,omitempty"`

	Position battlefield.Position `json:"position"`

	// Phase-scoped flags, reset at the start of the owner's turn.
	HasMoved      bool `json:"-"`
	HasAdvanced   bool `json:"-"`
	HasFallenBack bool `json:"-"`
	HasShot       bool `json:"-"`
	HasFought     bool `json:"-"`
	InMelee       bool `json:"in_melee"`

	State UnitState `json:"state"`

	IsCharacter bool `json:"is_character,omitempty"`
	Points      int  `json:"points,omitempty"`
}

func (u *Unit) Destroyed() bool {
	return u.CurrentWounds <= 0 || u.State == StateDestroyed
}

// StartingWounds is the wound pool at full strength.
func (u *Unit) StartingWounds() int {
	return u.ModelCount * u.WoundsPerModel
}

// ModelsRemaining is ceil(CurrentWounds / WoundsPerModel).
func (u *Unit) ModelsRemaining() int {
	if u.CurrentWounds <= 0 || u.WoundsPerModel <= 0 {
		return 0
	}
	return (u.CurrentWounds + u.WoundsPerModel - 1) / u.WoundsPerModel
}

// TakeDamage removes damage from the wound pool, floored at zero, and
// returns the number of models that died. Reaching zero wounds is terminal.
func (u *Unit) TakeDamage(damage int) int {
	if damage <= 0 {
		return 0
	}
	before := u.ModelsRemaining()
	u.CurrentWounds -= damage
	if u.CurrentWounds <= 0 {
		u.CurrentWounds = 0
		u.State = StateDestroyed
	}
	return before - u.ModelsRemaining()
}

func (u *Unit) DistanceTo(other *Unit) float64 {
	return u.Position.DistanceTo(other.Position)
}

// InEngagementRange reports whether any living enemy is within melee reach.
func (u *Unit) InEngagementRange(enemies []*Unit) bool {
	for _, e := range enemies {
		if e.Destroyed() {
			continue
		}
		if u.DistanceTo(e) <= EngagementRange {
			return true
		}
	}
	return false
}

func (u *Unit) HasKeyword(kw string) bool {
	for _, k := range u.Keywords {
		if strings.EqualFold(k, kw) {
			return true
		}
	}
	return false
}

// MaxWeaponRange is the longest ranged weapon reach, 0 for melee-only units.
func (u *Unit) MaxWeaponRange() int {
	max := 0
	for _, w := range u.RangedWeapons {
		if w.Range > max {
			max = w.Range
		}
	}
	return max
}

// ResetPhaseFlags clears the per-turn transient flags. Melee lock and
// lifecycle state persist across turns.
func (u *Unit) ResetPhaseFlags() {
	u.HasMoved = false
	u.HasAdvanced = false
	u.HasFallenBack = false
	u.HasShot = false
	u.HasFought = false
	if u.State == StateFallBack || u.State == StateBattleShocked {
		u.State = StateActive
	}
}

// Clone returns an independent copy for a fresh run. Weapon and keyword
// slices are shared: they are immutable for the battle's duration.
func (u *Unit) Clone() *Unit {
	c := *u
	return &c
}

// CloneArmy clones every unit in a roster.
func CloneArmy(units []*Unit) []*Unit {
	out := make([]*Unit, len(units))
	for i, u := range units {
		out[i] = u.Clone()
	}
	return out
}
