package battlefield

import (
	"math"
	"math/rand"
)

// ZoneShape enumerates the supported deployment zone geometries. The set is
// closed; shape dispatch is an exhaustive switch, not string comparison.
type ZoneShape int

const (
	ZoneRectangle ZoneShape = iota
	ZoneSector              // circle sector approximated as center+radius
	ZoneCompound            // union of rectangles
	ZonePolygon
)

func (s ZoneShape) String() string {
	switch s {
	case ZoneRectangle:
		return "rectangle"
	case ZoneSector:
		return "sector"
	case ZoneCompound:
		return "compound"
	case ZonePolygon:
		return "polygon"
	}
	return "unknown"
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	XMin, XMax float64
	YMin, YMax float64
}

func (r Rect) contains(p Position) bool {
	return r.XMin <= p.X && p.X <= r.XMax && r.YMin <= p.Y && p.Y <= r.YMax
}

// Zone is a deployment zone. Exactly the fields for its Shape are set;
// immutable after construction.
type Zone struct {
	Name  string
	Shape ZoneShape

	Rect   Rect     // ZoneRectangle
	Center Position // ZoneSector
	Radius float64  // ZoneSector
	Rects  []Rect   // ZoneCompound
	Points []Position // ZonePolygon, in order
}

// Contains reports whether p lies inside the zone.
func (z Zone) Contains(p Position) bool {
	switch z.Shape {
	case ZoneRectangle:
		return z.Rect.contains(p)
	case ZoneSector:
		return p.DistanceTo(z.Center) <= z.Radius
	case ZoneCompound:
		for _, r := range z.Rects {
			if r.contains(p) {
				return true
			}
		}
		return false
	case ZonePolygon:
		return polygonContains(z.Points, p)
	}
	return false
}

// polygonContains is standard even-odd ray casting.
func polygonContains(pts []Position, p Position) bool {
	if len(pts) < 3 {
		return false
	}
	inside := false
	j := len(pts) - 1
	for i := 0; i < len(pts); i++ {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

const maxSampleAttempts = 100

// SamplePoint draws a uniform random point inside the zone via rejection
// sampling, at most 100 attempts. On exhaustion (degenerate zones) it falls
// back to Fallback: best effort, never an error.
func (z Zone) SamplePoint(rng *rand.Rand) Position {
	for i := 0; i < maxSampleAttempts; i++ {
		p, ok := z.candidate(rng)
		if ok && z.Contains(p) {
			return p
		}
	}
	return z.Fallback()
}

func (z Zone) candidate(rng *rand.Rand) (Position, bool) {
	switch z.Shape {
	case ZoneRectangle:
		return sampleRect(rng, z.Rect)
	case ZoneSector:
		if z.Radius <= 0 {
			return Position{}, false
		}
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * z.Radius
		return Position{z.Center.X + dist*math.Cos(angle), z.Center.Y + dist*math.Sin(angle)}, true
	case ZoneCompound:
		if len(z.Rects) == 0 {
			return Position{}, false
		}
		return sampleRect(rng, z.Rects[rng.Intn(len(z.Rects))])
	case ZonePolygon:
		box, ok := boundingBox(z.Points)
		if !ok {
			return Position{}, false
		}
		return sampleRect(rng, box)
	}
	return Position{}, false
}

func sampleRect(rng *rand.Rand, r Rect) (Position, bool) {
	if r.XMax <= r.XMin || r.YMax <= r.YMin {
		return Position{}, false
	}
	return Position{
		r.XMin + rng.Float64()*(r.XMax-r.XMin),
		r.YMin + rng.Float64()*(r.YMax-r.YMin),
	}, true
}

func boundingBox(pts []Position) (Rect, bool) {
	if len(pts) < 3 {
		return Rect{}, false
	}
	box := Rect{pts[0].X, pts[0].X, pts[0].Y, pts[0].Y}
	for _, p := range pts[1:] {
		box.XMin = math.Min(box.XMin, p.X)
		box.XMax = math.Max(box.XMax, p.X)
		box.YMin = math.Min(box.YMin, p.Y)
		box.YMax = math.Max(box.YMax, p.Y)
	}
	return box, box.XMax > box.XMin && box.YMax > box.YMin
}

// Fallback is the deterministic position used when sampling exhausts its
// attempts: the zone's center of mass, or a fixed board point for
// degenerate zones.
func (z Zone) Fallback() Position {
	switch z.Shape {
	case ZoneRectangle:
		return Position{(z.Rect.XMin + z.Rect.XMax) / 2, (z.Rect.YMin + z.Rect.YMax) / 2}
	case ZoneSector:
		return z.Center
	case ZoneCompound:
		if len(z.Rects) > 0 {
			r := z.Rects[0]
			return Position{(r.XMin + r.XMax) / 2, (r.YMin + r.YMax) / 2}
		}
	case ZonePolygon:
		if box, ok := boundingBox(z.Points); ok {
			return Position{(box.XMin + box.XMax) / 2, (box.YMin + box.YMax) / 2}
		}
	}
	return Position{22, 15}
}
