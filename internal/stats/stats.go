package stats

import (
	"math"
	"sort"
)

// Summary is the descriptive statistics of one sample of per-run values.
type Summary struct {
	Runs   int     `json:"runs"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	CV     float64 `json:"cv"` // coefficient of variation; 0 when mean is 0

	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// Summarize computes a Summary over the sample. An empty sample yields the
// zero Summary.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	varSum := 0.0
	for _, v := range sorted {
		d := v - mean
		varSum += d * d
	}
	std := math.Sqrt(varSum / float64(n))

	s := Summary{
		Runs:   n,
		Mean:   mean,
		Min:    sorted[0],
		Max:    sorted[n-1],
		StdDev: std,
		P10:    percentile(sorted, 10),
		P25:    percentile(sorted, 25),
		P50:    percentile(sorted, 50),
		P75:    percentile(sorted, 75),
		P90:    percentile(sorted, 90),
	}
	if mean != 0 {
		s.CV = std / mean
	}
	return s
}

// percentile interpolates linearly on an already sorted sample.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Reliability is the fraction of runs reaching at least ratio of the mean,
// as a percentage. A unit whose damage collapses in the bad runs scores low
// even when its mean looks healthy.
func Reliability(values []float64, ratio float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}
	threshold := ratio * mean
	hit := 0
	for _, v := range values {
		if v >= threshold {
			hit++
		}
	}
	return 100 * float64(hit) / float64(len(values))
}

// Grade is a letter band from S (best) down to F.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// ReliabilityGrade bands a reliability percentage.
func ReliabilityGrade(pct float64) Grade {
	switch {
	case pct >= 90:
		return GradeS
	case pct >= 75:
		return GradeA
	case pct >= 60:
		return GradeB
	case pct >= 45:
		return GradeC
	case pct >= 30:
		return GradeD
	default:
		return GradeF
	}
}

// EfficiencyGrade bands a points-trade ratio: points of enemy destroyed per
// point spent.
func EfficiencyGrade(ratio float64) Grade {
	switch {
	case ratio >= 2.0:
		return GradeS
	case ratio >= 1.5:
		return GradeA
	case ratio >= 1.0:
		return GradeB
	case ratio >= 0.75:
		return GradeC
	case ratio >= 0.5:
		return GradeD
	default:
		return GradeF
	}
}

// ThreatScore blends raw output with consistency. damageScore should be
// normalized to 0-100 by the caller; consistency is 100*(1-CV) clamped to
// 0-100.
func ThreatScore(damageScore, cv float64) float64 {
	consistency := 100 * (1 - cv)
	if consistency < 0 {
		consistency = 0
	}
	if consistency > 100 {
		consistency = 100
	}
	return 0.7*damageScore + 0.3*consistency
}
