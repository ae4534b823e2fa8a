package battlefield

import "math"

// Position is a point on the battlefield in inches.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Position) DistanceTo(o Position) float64 {
	dx, dy := p.X-o.X, p.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Position) Add(o Position) Position { return Position{p.X + o.X, p.Y + o.Y} }
func (p Position) Sub(o Position) Position { return Position{p.X - o.X, p.Y - o.Y} }

// MoveToward returns the point reached moving from `from` straight at `to`,
// capped at maxDist inches.
func MoveToward(from, to Position, maxDist float64) Position {
	d := from.DistanceTo(to)
	if d == 0 || maxDist <= 0 {
		return from
	}
	step := math.Min(d, maxDist)
	dir := to.Sub(from)
	return Position{from.X + dir.X/d*step, from.Y + dir.Y/d*step}
}

// TerrainKind classifies a terrain feature.
type TerrainKind int

const (
	Open TerrainKind = iota
	LightCover
	HeavyCover
	Obscuring
	Impassable
)

func (k TerrainKind) String() string {
	switch k {
	case Open:
		return "open"
	case LightCover:
		return "light_cover"
	case HeavyCover:
		return "heavy_cover"
	case Obscuring:
		return "obscuring"
	case Impassable:
		return "impassable"
	}
	return "unknown"
}

// TerrainFeature is a terrain piece. Created once at setup, never mutated
// during simulation.
type TerrainFeature struct {
	Name          string
	Kind          TerrainKind
	Center        Position
	Width         float64
	Length        float64
	Rotation      float64
	Height        float64
	ProvidesCover bool
	BlocksLOS     bool
}

// Radius approximates the footprint as a circle for distance queries.
func (f TerrainFeature) Radius() float64 {
	return math.Max(f.Width, f.Length) / 2
}

// NoOwner marks an objective nobody controls.
const NoOwner = -1

// Objective is a scoring marker. ControlledBy is updated once per turn by
// the scoring step.
type Objective struct {
	Name         string
	Position     Position
	Value        int
	ControlledBy int
}

// Battlefield owns all terrain and objectives and answers LOS/cover queries.
type Battlefield struct {
	Width      float64
	Length     float64
	Terrain    []TerrainFeature
	Objectives []Objective
}

// New returns an empty battlefield. The standard table is 44x60.
func New(width, length float64) *Battlefield {
	return &Battlefield{Width: width, Length: length}
}

func (b *Battlefield) AddTerrain(f TerrainFeature) {
	b.Terrain = append(b.Terrain, f)
}

func (b *Battlefield) AddObjective(o Objective) {
	o.ControlledBy = NoOwner
	b.Objectives = append(b.Objectives, o)
}

// TerrainAt returns the first terrain feature whose footprint contains pos,
// or nil.
func (b *Battlefield) TerrainAt(pos Position) *TerrainFeature {
	for i := range b.Terrain {
		f := &b.Terrain[i]
		if pos.DistanceTo(f.Center) <= f.Radius() {
			return f
		}
	}
	return nil
}

// HasLineOfSight reports whether from can see to. Deliberately approximate:
// only the midpoint of the segment is tested against LOS-blocking terrain,
// matching tabletop eyeballing rather than true segment intersection.
func (b *Battlefield) HasLineOfSight(from, to Position) bool {
	mid := Position{(from.X + to.X) / 2, (from.Y + to.Y) / 2}
	for i := range b.Terrain {
		f := &b.Terrain[i]
		if !f.BlocksLOS {
			continue
		}
		if mid.DistanceTo(f.Center) <= f.Radius() {
			return false
		}
	}
	return true
}

// InCover reports whether a model at pos benefits from cover.
func (b *Battlefield) InCover(pos Position) bool {
	t := b.TerrainAt(pos)
	return t != nil && t.ProvidesCover
}
