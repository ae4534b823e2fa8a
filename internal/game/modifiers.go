package game

// RerollPolicy says which dice in a roll step may be rerolled. Each die is
// rerolled at most once; the second result stands.
type RerollPolicy int

const (
	RerollNone RerollPolicy = iota
	RerollOnes
	RerollFailed
	RerollAll
)

func (p RerollPolicy) String() string {
	switch p {
	case RerollNone:
		return "none"
	case RerollOnes:
		return "ones"
	case RerollFailed:
		return "failed"
	case RerollAll:
		return "all"
	}
	return "unknown"
}

// merge keeps the more permissive of two policies. The ordering of the enum
// is the permissiveness ordering.
func (p RerollPolicy) merge(o RerollPolicy) RerollPolicy {
	if o > p {
		return o
	}
	return p
}

// WeaponRules are the special rules a weapon can carry.
type WeaponRules struct {
	Torrent            bool           `json:"torrent,omitempty" yaml:"torrent,omitempty"`
	LethalHits         bool           `json:"lethal_hits,omitempty" yaml:"lethal_hits,omitempty"`
	SustainedHits      int            `json:"sustained_hits,omitempty" yaml:"sustained_hits,omitempty"`
	DevastatingWounds  bool           `json:"devastating_wounds,omitempty" yaml:"devastating_wounds,omitempty"`
	TwinLinked         bool           `json:"twin_linked,omitempty" yaml:"twin_linked,omitempty"`
	Blast              bool           `json:"blast,omitempty" yaml:"blast,omitempty"`
	IgnoresCover       bool           `json:"ignores_cover,omitempty" yaml:"ignores_cover,omitempty"`
	AutoWoundOnCrit    bool           `json:"auto_wound_on_crit,omitempty" yaml:"auto_wound_on_crit,omitempty"`
	MortalWoundsOnCrit bool           `json:"mortal_wounds_on_crit,omitempty" yaml:"mortal_wounds_on_crit,omitempty"`
	Anti               map[string]int `json:"anti,omitempty" yaml:"anti,omitempty"` // keyword -> wound threshold

	RerollHits   RerollPolicy `json:"reroll_hits,omitempty" yaml:"reroll_hits,omitempty"`
	RerollWounds RerollPolicy `json:"reroll_wounds,omitempty" yaml:"reroll_wounds,omitempty"`

	HitMod    int `json:"hit_mod,omitempty" yaml:"hit_mod,omitempty"`
	WoundMod  int `json:"wound_mod,omitempty" yaml:"wound_mod,omitempty"`
	APMod     int `json:"ap_mod,omitempty" yaml:"ap_mod,omitempty"`
	DamageMod int `json:"damage_mod,omitempty" yaml:"damage_mod,omitempty"`
}

// UnitRules are unit-wide abilities affecting attacks the unit makes or
// suffers.
type UnitRules struct {
	FeelNoPain       int  `json:"feel_no_pain,omitempty" yaml:"feel_no_pain,omitempty"` // 0 = none
	Stealth          bool `json:"stealth,omitempty" yaml:"stealth,omitempty"`
	MinusToBeHit     bool `json:"minus_to_be_hit,omitempty" yaml:"minus_to_be_hit,omitempty"`
	MinusToBeWounded bool `json:"minus_to_be_wounded,omitempty" yaml:"minus_to_be_wounded,omitempty"`
	Transhuman       bool `json:"transhuman,omitempty" yaml:"transhuman,omitempty"`
	HalveDamage      bool `json:"halve_damage,omitempty" yaml:"halve_damage,omitempty"`

	RerollHits   RerollPolicy `json:"reroll_hits,omitempty" yaml:"reroll_hits,omitempty"`
	RerollWounds RerollPolicy `json:"reroll_wounds,omitempty" yaml:"reroll_wounds,omitempty"`
	RerollSaves  RerollPolicy `json:"reroll_saves,omitempty" yaml:"reroll_saves,omitempty"`

	HitMod   int `json:"hit_mod,omitempty" yaml:"hit_mod,omitempty"`
	WoundMod int `json:"wound_mod,omitempty" yaml:"wound_mod,omitempty"`
	SaveMod  int `json:"save_mod,omitempty" yaml:"save_mod,omitempty"`

	ExtraHitsOnCrit    int  `json:"extra_hits_on_crit,omitempty" yaml:"extra_hits_on_crit,omitempty"`
	AutoWoundOnCrit    bool `json:"auto_wound_on_crit,omitempty" yaml:"auto_wound_on_crit,omitempty"`
	MortalWoundsOnCrit bool `json:"mortal_wounds_on_crit,omitempty" yaml:"mortal_wounds_on_crit,omitempty"`
}

// Overrides are situational adjustments supplied by the caller for one
// resolution, e.g. the advancing to-hit penalty or a stratagem.
type Overrides struct {
	HitMod    int `json:"hit_mod,omitempty"`
	WoundMod  int `json:"wound_mod,omitempty"`
	SaveMod   int `json:"save_mod,omitempty"`
	DamageMod int `json:"damage_mod,omitempty"`
	APMod     int `json:"ap_mod,omitempty"`

	LethalHits        bool `json:"lethal_hits,omitempty"`
	DevastatingWounds bool `json:"devastating_wounds,omitempty"`
	FeelNoPain        int  `json:"feel_no_pain,omitempty"` // >0 replaces the defender's FNP
	Cover             bool `json:"cover,omitempty"`
}

// Mods is the fully resolved modifier set for one attacker-weapon-defender
// triple. Resolve consumes exactly this; it never looks back at the rules.
type Mods struct {
	HitMod    int
	WoundMod  int
	SaveMod   int
	APMod     int
	DamageMod int

	RerollHits   RerollPolicy
	RerollWounds RerollPolicy
	RerollSaves  RerollPolicy

	Torrent            bool
	LethalHits         bool
	SustainedHits      int
	DevastatingWounds  bool
	Blast              bool
	IgnoresCover       bool
	MortalWoundsOnCrit bool

	Transhuman  bool
	HalveDamage bool
	FeelNoPain  int

	AntiThreshold int // 0 = no applicable Anti-X

	Cover bool
}

// ResolveModifiers flattens weapon rules, attacker rules, defender rules and
// caller overrides into one Mods. Numeric modifiers stack additively;
// boolean abilities OR together; reroll policies keep the most permissive
// grant.
func ResolveModifiers(attacker *Unit, w Weapon, defender *Unit, ov Overrides) Mods {
	wr := w.Rules
	ar := attacker.Rules
	dr := defender.Rules

	m := Mods{
		HitMod:   wr.HitMod + ar.HitMod + ov.HitMod,
		WoundMod: wr.WoundMod + ar.WoundMod + ov.WoundMod,
		SaveMod:  dr.SaveMod + ov.SaveMod,
		APMod:    wr.APMod + ov.APMod,

		DamageMod: wr.DamageMod + ov.DamageMod,

		Torrent:           wr.Torrent,
		LethalHits:        wr.LethalHits || wr.AutoWoundOnCrit || ar.AutoWoundOnCrit || ov.LethalHits,
		SustainedHits:     wr.SustainedHits + ar.ExtraHitsOnCrit,
		DevastatingWounds: wr.DevastatingWounds || ov.DevastatingWounds,
		Blast:             wr.Blast,
		IgnoresCover:      wr.IgnoresCover,

		MortalWoundsOnCrit: wr.MortalWoundsOnCrit || ar.MortalWoundsOnCrit,

		Transhuman:  dr.Transhuman,
		HalveDamage: dr.HalveDamage,
		FeelNoPain:  dr.FeelNoPain,

		Cover: ov.Cover,
	}

	// Defensive to-hit penalties stack with attacker bonuses.
	if dr.Stealth || dr.MinusToBeHit {
		m.HitMod--
	}
	if dr.MinusToBeWounded {
		m.WoundMod--
	}

	m.RerollHits = wr.RerollHits.merge(ar.RerollHits)
	m.RerollWounds = wr.RerollWounds.merge(ar.RerollWounds)
	if wr.TwinLinked {
		m.RerollWounds = m.RerollWounds.merge(RerollFailed)
	}
	m.RerollSaves = dr.RerollSaves

	if ov.FeelNoPain > 0 {
		m.FeelNoPain = ov.FeelNoPain
	}

	// Anti-X: lowest matching threshold wins; it caps the wound roll only
	// when stricter than the strength-vs-toughness result.
	for kw, threshold := range wr.Anti {
		if threshold <= 0 || !defender.HasKeyword(kw) {
			continue
		}
		if m.AntiThreshold == 0 || threshold < m.AntiThreshold {
			m.AntiThreshold = threshold
		}
	}

	return m
}
