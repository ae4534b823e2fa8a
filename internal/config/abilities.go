package config

import (
	"regexp"
	"strconv"
	"strings"

	"battlesim/internal/game"
)

// Ability text on datasheets is free-form ("Sustained Hits 2", "Anti-Vehicle
// 4+", "Feel No Pain 5+"). The parsers below map the known vocabulary onto
// structured rule flags; anything unrecognized is ignored rather than
// rejected, so exotic abilities degrade to no-ops instead of load failures.

var (
	sustainedRe   = regexp.MustCompile(`(?i)sustained\s+hits\s+(\d+)`)
	antiRe        = regexp.MustCompile(`(?i)anti[-\s]+([a-z ]+?)\s+(\d)\+`)
	fnpRe         = regexp.MustCompile(`(?i)feel\s+no\s+pain\s+(\d)\+`)
	invulnRe      = regexp.MustCompile(`(?i)invulnerable\s+save\s*:?\s*(\d)\+`)
	mortalCritRe  = regexp.MustCompile(`(?i)mortal\s+wounds?\s+on\s+(?:a\s+)?6`)
	rerollHitRe   = regexp.MustCompile(`(?i)re-?roll\s+(all\s+|failed\s+)?hit\s+rolls(\s+of\s+1)?`)
	rerollWoundRe = regexp.MustCompile(`(?i)re-?roll\s+(all\s+|failed\s+)?wound\s+rolls(\s+of\s+1)?`)
	rerollSaveRe  = regexp.MustCompile(`(?i)re-?roll\s+(all\s+|failed\s+)?sav(?:e|ing)\s+(?:rolls|throws)(\s+of\s+1)?`)
)

// rerollPolicy maps a re-roll grant's submatches ("all"/"failed" qualifier,
// "of 1" suffix) onto a policy. An unqualified grant means failed rolls.
func rerollPolicy(m []string) game.RerollPolicy {
	if m[2] != "" {
		return game.RerollOnes
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(m[1])), "all") {
		return game.RerollAll
	}
	return game.RerollFailed
}

// ParseWeaponAbilities folds a list of ability strings into weapon rules.
func ParseWeaponAbilities(abilities []string) game.WeaponRules {
	var r game.WeaponRules
	for _, raw := range abilities {
		a := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case a == "":
		case strings.Contains(a, "lethal hits"):
			r.LethalHits = true
		case strings.Contains(a, "devastating wounds"):
			r.DevastatingWounds = true
		case strings.Contains(a, "twin-linked") || strings.Contains(a, "twin linked"):
			r.TwinLinked = true
		case a == "torrent":
			r.Torrent = true
		case a == "blast":
			r.Blast = true
		case strings.Contains(a, "ignores cover"):
			r.IgnoresCover = true
		case sustainedRe.MatchString(a):
			m := sustainedRe.FindStringSubmatch(a)
			r.SustainedHits, _ = strconv.Atoi(m[1])
		case antiRe.MatchString(a):
			m := antiRe.FindStringSubmatch(a)
			threshold, _ := strconv.Atoi(m[2])
			if r.Anti == nil {
				r.Anti = make(map[string]int)
			}
			r.Anti[strings.TrimSpace(m[1])] = threshold
		case mortalCritRe.MatchString(a):
			r.MortalWoundsOnCrit = true
		case rerollHitRe.MatchString(a):
			p := rerollPolicy(rerollHitRe.FindStringSubmatch(a))
			if p > r.RerollHits {
				r.RerollHits = p
			}
		case rerollWoundRe.MatchString(a):
			p := rerollPolicy(rerollWoundRe.FindStringSubmatch(a))
			if p > r.RerollWounds {
				r.RerollWounds = p
			}
		}
	}
	return r
}

// ParseUnitAbilities folds unit-level ability strings into unit rules. The
// invulnerable save lives in UnitStats, so it is returned separately (0 when
// absent).
func ParseUnitAbilities(abilities []string) (game.UnitRules, int) {
	var r game.UnitRules
	invuln := 0
	for _, raw := range abilities {
		a := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case a == "":
		case strings.Contains(a, "stealth"):
			r.Stealth = true
		case strings.Contains(a, "halve damage") || strings.Contains(a, "necrodermis"):
			r.HalveDamage = true
		case strings.Contains(a, "transhuman"):
			r.Transhuman = true
		case strings.Contains(a, "-1 to be hit"):
			r.MinusToBeHit = true
		case strings.Contains(a, "-1 to be wounded"):
			r.MinusToBeWounded = true
		case fnpRe.MatchString(a):
			m := fnpRe.FindStringSubmatch(a)
			r.FeelNoPain, _ = strconv.Atoi(m[1])
		case invulnRe.MatchString(a):
			m := invulnRe.FindStringSubmatch(a)
			invuln, _ = strconv.Atoi(m[1])
		case rerollSaveRe.MatchString(a):
			p := rerollPolicy(rerollSaveRe.FindStringSubmatch(a))
			if p > r.RerollSaves {
				r.RerollSaves = p
			}
		case rerollHitRe.MatchString(a):
			p := rerollPolicy(rerollHitRe.FindStringSubmatch(a))
			if p > r.RerollHits {
				r.RerollHits = p
			}
		case rerollWoundRe.MatchString(a):
			p := rerollPolicy(rerollWoundRe.FindStringSubmatch(a))
			if p > r.RerollWounds {
				r.RerollWounds = p
			}
		}
	}
	return r, invuln
}
