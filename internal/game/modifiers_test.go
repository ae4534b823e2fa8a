package game

import "testing"

func testUnit(player int) *Unit {
	return &Unit{
		ID:     "u1",
		Name:   "Test Squad",
		Player: player,
		Stats: UnitStats{
			Movement: 6, Toughness: 4, Save: 3, Wounds: 2,
			Leadership: 6, OC: 2,
		},
		ModelCount:     5,
		WoundsPerModel: 2,
		CurrentWounds:  10,
	}
}

func TestResolveModifiersStacking(t *testing.T) {
	att := testUnit(0)
	att.Rules.HitMod = 1
	def := testUnit(1)
	def.Rules.Stealth = true

	w := Weapon{Name: "bolter", Ranged: true, Rules: WeaponRules{HitMod: 1}}
	m := ResolveModifiers(att, w, def, Overrides{HitMod: -1})

	// +1 weapon, +1 attacker, -1 stealth, -1 override.
	if m.HitMod != 0 {
		t.Errorf("HitMod = %d, want 0", m.HitMod)
	}
}

func TestResolveModifiersRerollPrecedence(t *testing.T) {
	att := testUnit(0)
	att.Rules.RerollHits = RerollOnes
	def := testUnit(1)

	w := Weapon{Rules: WeaponRules{RerollHits: RerollFailed}}
	m := ResolveModifiers(att, w, def, Overrides{})
	if m.RerollHits != RerollFailed {
		t.Errorf("RerollHits = %v, want failed (most permissive grant wins)", m.RerollHits)
	}
}

func TestTwinLinkedImpliesWoundReroll(t *testing.T) {
	att := testUnit(0)
	def := testUnit(1)

	w := Weapon{Rules: WeaponRules{TwinLinked: true}}
	m := ResolveModifiers(att, w, def, Overrides{})
	if m.RerollWounds != RerollFailed {
		t.Errorf("RerollWounds = %v, want failed", m.RerollWounds)
	}

	// A broader existing grant is not narrowed.
	w.Rules.RerollWounds = RerollAll
	m = ResolveModifiers(att, w, def, Overrides{})
	if m.RerollWounds != RerollAll {
		t.Errorf("RerollWounds = %v, want all", m.RerollWounds)
	}
}

func TestAntiKeywordSelection(t *testing.T) {
	att := testUnit(0)
	def := testUnit(1)
	def.Keywords = []string{"Infantry", "Vehicle"}

	w := Weapon{Rules: WeaponRules{Anti: map[string]int{
		"vehicle":  4,
		"infantry": 3,
		"monster":  2, // not on the defender
	}}}
	m := ResolveModifiers(att, w, def, Overrides{})
	if m.AntiThreshold != 3 {
		t.Errorf("AntiThreshold = %d, want 3 (lowest matching)", m.AntiThreshold)
	}

	def.Keywords = nil
	m = ResolveModifiers(att, w, def, Overrides{})
	if m.AntiThreshold != 0 {
		t.Errorf("AntiThreshold = %d, want 0 when nothing matches", m.AntiThreshold)
	}
}

func TestFeelNoPainOverride(t *testing.T) {
	att := testUnit(0)
	def := testUnit(1)
	def.Rules.FeelNoPain = 6

	m := ResolveModifiers(att, Weapon{}, def, Overrides{})
	if m.FeelNoPain != 6 {
		t.Errorf("FeelNoPain = %d, want defender's 6", m.FeelNoPain)
	}

	m = ResolveModifiers(att, Weapon{}, def, Overrides{FeelNoPain: 5})
	if m.FeelNoPain != 5 {
		t.Errorf("FeelNoPain = %d, want override 5", m.FeelNoPain)
	}
}

func TestUnitModelsRemaining(t *testing.T) {
	u := testUnit(0)
	if got := u.ModelsRemaining(); got != 5 {
		t.Fatalf("ModelsRemaining = %d, want 5", got)
	}

	// 3 damage off a 10-wound pool leaves 7: one model dead, one wounded.
	if killed := u.TakeDamage(3); killed != 1 {
		t.Errorf("TakeDamage(3) killed %d models, want 1", killed)
	}
	if got := u.ModelsRemaining(); got != 4 {
		t.Errorf("ModelsRemaining after 3 damage = %d, want 4 (wounded model counts)", got)
	}
	// 1 more damage finishes the wounded model.
	if killed := u.TakeDamage(1); killed != 1 {
		t.Errorf("TakeDamage(1) killed %d models, want 1", killed)
	}
	if got := u.ModelsRemaining(); got != 3 {
		t.Errorf("ModelsRemaining after 4 damage = %d, want 3", got)
	}

	u.TakeDamage(100)
	if !u.Destroyed() || u.CurrentWounds != 0 {
		t.Errorf("unit should be destroyed at zero wounds, state=%v wounds=%d", u.State, u.CurrentWounds)
	}
	if u.TakeDamage(5) != 0 {
		t.Error("damage to a destroyed unit must kill nothing")
	}
}

func TestResetPhaseFlags(t *testing.T) {
	u := testUnit(0)
	u.HasMoved = true
	u.HasShot = true
	u.State = StateBattleShocked

	u.ResetPhaseFlags()
	if u.HasMoved || u.HasShot {
		t.Error("phase flags must clear on reset")
	}
	if u.State != StateActive {
		t.Errorf("state = %v, want active (shock is one turn)", u.State)
	}

	u.State = StateDestroyed
	u.ResetPhaseFlags()
	if u.State != StateDestroyed {
		t.Error("destroyed is terminal; reset must not revive")
	}
}
