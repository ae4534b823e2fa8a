package engine

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// Stat defaults applied when source data carries placeholders like "-" or
// "N/A". These values materially change outcomes, so they are fixed here
// rather than chosen per call site.
const (
	DefaultQuantity  = 0 // attacks, AP, points
	DefaultSkill     = 4 // BS/WS "4+"
	DefaultStrength  = 4
	DefaultToughness = 4
	DefaultSave      = 7 // 7 means no save
	DefaultWounds    = 1
	DefaultMovement  = 6
	DefaultLeader    = 7
	DefaultOC        = 1
)

var diceRe = regexp.MustCompile(`(?i)^\s*(\d+)?\s*d\s*(\d+)(\s*([+\-x*])\s*(\d+))?\s*$`)

// Roll evaluates a dice expression with r. Supported forms: N, NdM, NdM+K,
// NdM-K, NdM xK / NdM*K. Placeholders ("", "-", "N/A") and junk evaluate
// to 0; the result is never negative.
func Roll(r *rand.Rand, expr string) int {
	count, sides, op, k, ok := parseExpr(expr)
	if !ok {
		return 0
	}
	if sides == 0 {
		return count // plain integer
	}
	total := 0
	for i := 0; i < count; i++ {
		total += 1 + r.Intn(sides)
	}
	return applyOp(total, op, k)
}

// Expected evaluates an expression deterministically, replacing each die
// with its mean (D6 counts 3.5, D3 counts 2) and truncating. Used where
// heuristics need a stable value, e.g. movement-range estimates. Minimum 1
// for any parseable dice expression.
func Expected(expr string) int {
	count, sides, op, k, ok := parseExpr(expr)
	if !ok {
		return 0
	}
	if sides == 0 {
		return count
	}
	var mean float64
	switch sides {
	case 3:
		mean = 2
	default:
		mean = float64(sides+1) / 2
	}
	total := int(float64(count) * mean)
	total = applyOp(total, op, k)
	if total < 1 {
		total = 1
	}
	return total
}

func parseExpr(expr string) (count, sides int, op string, k int, ok bool) {
	expr = strings.TrimSpace(expr)
	switch strings.ToUpper(expr) {
	case "", "-", "N/A":
		return 0, 0, "", 0, false
	}
	if n, err := strconv.Atoi(expr); err == nil {
		return n, 0, "", 0, true
	}
	m := diceRe.FindStringSubmatch(expr)
	if m == nil {
		return 0, 0, "", 0, false
	}
	count = 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ = strconv.Atoi(m[2])
	if sides <= 0 {
		return 0, 0, "", 0, false
	}
	if m[3] != "" {
		op = m[4]
		k, _ = strconv.Atoi(m[5])
	}
	return count, sides, op, k, true
}

func applyOp(total int, op string, k int) int {
	switch op {
	case "+":
		total += k
	case "-":
		total -= k
	case "x", "*":
		total *= k
	}
	if total < 0 {
		total = 0
	}
	return total
}

// ParseStat parses loosely formatted stat values from source data: "3+"
// becomes 3, "4++" becomes 4, placeholders fall back to def.
func ParseStat(value string, def int) int {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "", "-", "N/A", "USER":
		return def
	}
	value = strings.ReplaceAll(value, "+", "")
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// D6 rolls a single six-sided die.
func D6(r *rand.Rand) int { return 1 + r.Intn(6) }

// TwoD6 rolls two dice and sums them (charge distance, leadership tests).
func TwoD6(r *rand.Rand) int { return D6(r) + D6(r) }
