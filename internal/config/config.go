package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"battlesim/internal/battlefield"
	"battlesim/internal/engine"
	"battlesim/internal/game"
	"battlesim/internal/sim"
)

// Scenario is the YAML shape of a battle setup file.
type Scenario struct {
	Name        string       `yaml:"name"`
	MaxTurns    int          `yaml:"max_turns"`
	Battlefield FieldConfig  `yaml:"battlefield"`
	Zones       []ZoneConfig `yaml:"zones"`
}

type FieldConfig struct {
	Width      float64           `yaml:"width"`
	Length     float64           `yaml:"length"`
	Terrain    []TerrainConfig   `yaml:"terrain"`
	Objectives []ObjectiveConfig `yaml:"objectives"`
}

type TerrainConfig struct {
	Name          string  `yaml:"name"`
	Kind          string  `yaml:"kind"`
	X             float64 `yaml:"x"`
	Y             float64 `yaml:"y"`
	Width         float64 `yaml:"width"`
	Length        float64 `yaml:"length"`
	Rotation      float64 `yaml:"rotation"`
	Height        float64 `yaml:"height"`
	ProvidesCover bool    `yaml:"provides_cover"`
	BlocksLOS     bool    `yaml:"blocks_los"`
}

type ObjectiveConfig struct {
	Name  string  `yaml:"name"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Value int     `yaml:"value"`
}

type ZoneConfig struct {
	Name   string  `yaml:"name"`
	Shape  string  `yaml:"shape"`
	XMin   float64 `yaml:"x_min"`
	XMax   float64 `yaml:"x_max"`
	YMin   float64 `yaml:"y_min"`
	YMax   float64 `yaml:"y_max"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	Rects  []struct {
		XMin float64 `yaml:"x_min"`
		XMax float64 `yaml:"x_max"`
		YMin float64 `yaml:"y_min"`
		YMax float64 `yaml:"y_max"`
	} `yaml:"rects"`
	Points []struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"points"`
}

// ArmyFile is the YAML shape of a roster file. Stat values are strings so
// datasheets can carry "3+", "D6", "-" and friends verbatim.
type ArmyFile struct {
	Name    string       `yaml:"name"`
	Faction string       `yaml:"faction"`
	Units   []UnitConfig `yaml:"units"`
}

type UnitConfig struct {
	Name      string            `yaml:"name"`
	Models    int               `yaml:"models"`
	Points    int               `yaml:"points"`
	Character bool              `yaml:"character"`
	Stats     map[string]string `yaml:"stats"`
	Keywords  []string          `yaml:"keywords"`
	Abilities []string          `yaml:"abilities"`
	Weapons   []WeaponConfig    `yaml:"weapons"`
}

type WeaponConfig struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"` // "ranged" or "melee"
	Range     string   `yaml:"range"`
	Attacks   string   `yaml:"attacks"`
	Skill     string   `yaml:"skill"`
	Strength  string   `yaml:"strength"`
	AP        string   `yaml:"ap"`
	Damage    string   `yaml:"damage"`
	Abilities []string `yaml:"abilities"`
}

// LoadScenario reads and decodes a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadArmy reads and decodes a roster file.
func LoadArmy(path string) (*ArmyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read army: %w", err)
	}
	var a ArmyFile
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse army %s: %w", path, err)
	}
	if len(a.Units) == 0 {
		return nil, fmt.Errorf("army %s: no units", path)
	}
	return &a, nil
}

// BuildField turns a scenario into a battlefield, applying defaults for
// anything omitted.
func (s *Scenario) BuildField() *battlefield.Battlefield {
	fc := s.Battlefield
	if fc.Width <= 0 {
		fc.Width = 44
	}
	if fc.Length <= 0 {
		fc.Length = 60
	}
	f := battlefield.New(fc.Width, fc.Length)
	for _, t := range fc.Terrain {
		f.AddTerrain(battlefield.TerrainFeature{
			Name:          t.Name,
			Kind:          parseTerrainKind(t.Kind),
			Center:        battlefield.Position{X: t.X, Y: t.Y},
			Width:         t.Width,
			Length:        t.Length,
			Rotation:      t.Rotation,
			Height:        t.Height,
			ProvidesCover: t.ProvidesCover,
			BlocksLOS:     t.BlocksLOS,
		})
	}
	if len(fc.Objectives) == 0 {
		// Standard mission: three markers across the midline.
		for i, x := range []float64{fc.Width * 0.25, fc.Width * 0.5, fc.Width * 0.75} {
			f.AddObjective(battlefield.Objective{
				Name:     fmt.Sprintf("objective-%d", i+1),
				Position: battlefield.Position{X: x, Y: fc.Length / 2},
				Value:    5,
			})
		}
	}
	for _, o := range fc.Objectives {
		v := o.Value
		if v <= 0 {
			v = 5
		}
		f.AddObjective(battlefield.Objective{
			Name:     o.Name,
			Position: battlefield.Position{X: o.X, Y: o.Y},
			Value:    v,
		})
	}
	return f
}

// BuildZones returns the two deployment zones, defaulting to board-edge
// strips sized off the battlefield when the scenario names fewer than two.
func (s *Scenario) BuildZones(f *battlefield.Battlefield) [2]battlefield.Zone {
	var zones [2]battlefield.Zone
	for i := 0; i < 2; i++ {
		if i < len(s.Zones) {
			zones[i] = buildZone(s.Zones[i])
			continue
		}
		if i == 0 {
			zones[i] = battlefield.Zone{
				Name:  "south",
				Shape: battlefield.ZoneRectangle,
				Rect:  battlefield.Rect{XMin: 0, XMax: f.Width, YMin: 0, YMax: f.Length * 0.2},
			}
		} else {
			zones[i] = battlefield.Zone{
				Name:  "north",
				Shape: battlefield.ZoneRectangle,
				Rect:  battlefield.Rect{XMin: 0, XMax: f.Width, YMin: f.Length * 0.8, YMax: f.Length},
			}
		}
	}
	return zones
}

// buildZone maps one zone config. An unrecognized shape becomes a
// zero-area rectangle, which sampling resolves through its fallback point.
func buildZone(zc ZoneConfig) battlefield.Zone {
	z := battlefield.Zone{Name: zc.Name}
	switch strings.ToLower(zc.Shape) {
	case "rectangle", "":
		z.Shape = battlefield.ZoneRectangle
		z.Rect = battlefield.Rect{XMin: zc.XMin, XMax: zc.XMax, YMin: zc.YMin, YMax: zc.YMax}
	case "sector":
		z.Shape = battlefield.ZoneSector
		z.Center = battlefield.Position{X: zc.X, Y: zc.Y}
		z.Radius = zc.Radius
	case "compound":
		z.Shape = battlefield.ZoneCompound
		for _, r := range zc.Rects {
			z.Rects = append(z.Rects, battlefield.Rect{XMin: r.XMin, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax})
		}
	case "polygon":
		z.Shape = battlefield.ZonePolygon
		for _, p := range zc.Points {
			z.Points = append(z.Points, battlefield.Position{X: p.X, Y: p.Y})
		}
	default:
		z.Shape = battlefield.ZoneRectangle
	}
	return z
}

func parseTerrainKind(s string) battlefield.TerrainKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light_cover", "light cover", "crater", "woods":
		return battlefield.LightCover
	case "heavy_cover", "heavy cover", "ruins":
		return battlefield.HeavyCover
	case "obscuring":
		return battlefield.Obscuring
	case "impassable":
		return battlefield.Impassable
	default:
		return battlefield.Open
	}
}

// BuildArmy converts a roster file into runtime units for the given player.
// Stat strings go through the shared parser so placeholders fall back to the
// datasheet defaults.
func (a *ArmyFile) BuildArmy(player int) sim.Army {
	army := sim.Army{Name: a.Name}
	for i, uc := range a.Units {
		army.Units = append(army.Units, buildUnit(uc, player, i, a.Faction))
	}
	return army
}

// BuildUnit converts a single unit config, for callers that resolve
// matchups without a full roster.
func BuildUnit(uc UnitConfig, player int) *game.Unit {
	return buildUnit(uc, player, 0, "")
}

func buildUnit(uc UnitConfig, player, idx int, faction string) *game.Unit {
	models := uc.Models
	if models <= 0 {
		models = 1
	}
	rules, invuln := ParseUnitAbilities(uc.Abilities)
	wounds := engine.ParseStat(uc.Stats["wounds"], engine.DefaultWounds)

	u := &game.Unit{
		ID:      fmt.Sprintf("p%d-%d", player, idx),
		Name:    uc.Name,
		Player:  player,
		Faction: faction,
		Stats: game.UnitStats{
			Movement:   engine.ParseStat(uc.Stats["movement"], engine.DefaultMovement),
			Toughness:  engine.ParseStat(uc.Stats["toughness"], engine.DefaultToughness),
			Save:       engine.ParseStat(uc.Stats["save"], engine.DefaultSave),
			Wounds:     wounds,
			Leadership: engine.ParseStat(uc.Stats["leadership"], engine.DefaultLeader),
			OC:         engine.ParseStat(uc.Stats["oc"], engine.DefaultOC),
			InvSave:    invuln,
		},
		ModelCount:     models,
		WoundsPerModel: wounds,
		CurrentWounds:  models * wounds,
		Rules:          rules,
		Keywords:       uc.Keywords,
		IsCharacter:    uc.Character,
		Points:         uc.Points,
	}
	if inv := engine.ParseStat(uc.Stats["invulnerable"], 0); inv > 0 {
		u.Stats.InvSave = inv
	}

	for _, wc := range uc.Weapons {
		w := game.Weapon{
			Name:     wc.Name,
			Ranged:   !strings.EqualFold(wc.Type, "melee"),
			Range:    engine.ParseStat(wc.Range, 0),
			Attacks:  wc.Attacks,
			Skill:    engine.ParseStat(wc.Skill, engine.DefaultSkill),
			Strength: engine.ParseStat(wc.Strength, engine.DefaultStrength),
			AP:       parseAP(wc.AP),
			Damage:   wc.Damage,
			Rules:    ParseWeaponAbilities(wc.Abilities),
		}
		if w.Attacks == "" {
			w.Attacks = "1"
		}
		if w.Damage == "" {
			w.Damage = "1"
		}
		if w.Ranged {
			u.RangedWeapons = append(u.RangedWeapons, w)
		} else {
			u.MeleeWeapons = append(u.MeleeWeapons, w)
		}
	}
	return u
}

// parseAP normalizes AP to the negative convention: "-1", "1" and "AP-1"
// all mean one point of armor penetration.
func parseAP(s string) int {
	v := engine.ParseStat(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "AP"), 0)
	if v > 0 {
		v = -v
	}
	return v
}
