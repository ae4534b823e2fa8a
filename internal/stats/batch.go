package stats

import (
	"math/rand"
	"runtime"
	"sync"

	"battlesim/internal/battlefield"
	"battlesim/internal/game"
	"battlesim/internal/sim"
)

// DefaultRuns is the sample size used when a config leaves Runs unset.
const DefaultRuns = 1000

// MatchupConfig drives a batch of independent attack resolutions of one
// unit's ranged weapons into one target.
type MatchupConfig struct {
	Attacker  *game.Unit
	Defender  *game.Unit
	Overrides game.Overrides // situational modifiers applied to every run
	Runs      int
	Seed      int64
	Workers   int // defaults to GOMAXPROCS
}

// MatchupReport is the aggregate of a matchup batch.
type MatchupReport struct {
	Attacker string `json:"attacker"`
	Defender string `json:"defender"`
	Runs     int    `json:"runs"`

	Damage Summary `json:"damage"`
	Kills  Summary `json:"kills"`

	KillRate       float64 `json:"kill_rate"`        // % of runs destroying the target outright
	ZeroDamageRate float64 `json:"zero_damage_rate"` // % of runs dealing nothing
	HitRate        float64 `json:"hit_rate"`         // hits per attack, %
	WoundRate      float64 `json:"wound_rate"`       // wounds per hit, %

	Reliability75    float64 `json:"reliability_75"`
	ReliabilityGrade Grade   `json:"reliability_grade"`
	PointsTrade      float64 `json:"points_trade"`
	EfficiencyGrade  Grade   `json:"efficiency_grade"`
	Threat           float64 `json:"threat"`
}

func (c *MatchupConfig) normalize() {
	if c.Runs <= 0 {
		c.Runs = DefaultRuns
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

// RunMatchup executes the batch. Each run gets its own RNG seeded from the
// base seed plus the run index, so results are reproducible regardless of
// worker scheduling.
func RunMatchup(cfg MatchupConfig) MatchupReport {
	cfg.normalize()

	damage := make([]float64, cfg.Runs)
	kills := make([]float64, cfg.Runs)
	destroyed := make([]bool, cfg.Runs)
	attacks := make([]int, cfg.Runs)
	hits := make([]int, cfg.Runs)
	wounds := make([]int, cfg.Runs)

	runBatch(cfg.Runs, cfg.Workers, func(i int) {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
		att := cfg.Attacker.Clone()
		def := cfg.Defender.Clone()

		var total game.Result
		for _, w := range att.RangedWeapons {
			total.Add(game.ResolveAttack(rng, att, w, def, cfg.Overrides))
		}
		damage[i] = float64(total.Damage)
		kills[i] = float64(total.ModelsKilled)
		destroyed[i] = def.Destroyed()
		attacks[i] = total.Attacks
		hits[i] = total.Hits
		wounds[i] = total.Wounds + total.MortalWounds
	})

	r := MatchupReport{
		Attacker: cfg.Attacker.Name,
		Defender: cfg.Defender.Name,
		Runs:     cfg.Runs,
		Damage:   Summarize(damage),
		Kills:    Summarize(kills),
	}
	killed, zeroed := 0, 0
	totalAttacks, totalHits, totalWounds := 0, 0, 0
	for i := 0; i < cfg.Runs; i++ {
		if destroyed[i] {
			killed++
		}
		if damage[i] == 0 {
			zeroed++
		}
		totalAttacks += attacks[i]
		totalHits += hits[i]
		totalWounds += wounds[i]
	}
	r.KillRate = 100 * float64(killed) / float64(cfg.Runs)
	r.ZeroDamageRate = 100 * float64(zeroed) / float64(cfg.Runs)
	if totalAttacks > 0 {
		r.HitRate = 100 * float64(totalHits) / float64(totalAttacks)
	}
	if totalHits > 0 {
		r.WoundRate = 100 * float64(totalWounds) / float64(totalHits)
	}
	r.Reliability75 = Reliability(damage, 0.75)
	r.ReliabilityGrade = ReliabilityGrade(r.Reliability75)

	if cfg.Attacker.Points > 0 {
		// Points destroyed per point spent, using mean models killed.
		perModel := 0.0
		if cfg.Defender.ModelCount > 0 {
			perModel = float64(cfg.Defender.Points) / float64(cfg.Defender.ModelCount)
		}
		r.PointsTrade = r.Kills.Mean * perModel / float64(cfg.Attacker.Points)
	}
	r.EfficiencyGrade = EfficiencyGrade(r.PointsTrade)

	// Damage score: mean output against the target's total pool, capped at
	// 100 (one-shot territory).
	damageScore := 0.0
	if pool := cfg.Defender.StartingWounds(); pool > 0 {
		damageScore = 100 * r.Damage.Mean / float64(pool)
		if damageScore > 100 {
			damageScore = 100
		}
	}
	r.Threat = ThreatScore(damageScore, r.Damage.CV)
	return r
}

// BattleConfig drives a batch of full battles.
type BattleConfig struct {
	Field    *battlefield.Battlefield
	Zones    [2]battlefield.Zone
	Armies   [2]sim.Army
	MaxTurns int
	Runs     int
	Seed     int64
	Workers  int
}

// BattleReport aggregates a battle batch.
type BattleReport struct {
	Runs  int    `json:"runs"`
	Names [2]string `json:"names"`

	Wins    [2]int     `json:"wins"`
	Draws   int        `json:"draws"`
	WinRate [2]float64 `json:"win_rate"`

	TabledRate float64 `json:"tabled_rate"`
	AvgTurns   float64 `json:"avg_turns"`

	VictoryPoints   [2]Summary `json:"victory_points"`
	PointsRemaining [2]Summary `json:"points_remaining"`
}

// RunBattles plays the batch. Field and armies are cloned per run; the
// inputs are never mutated.
func RunBattles(cfg BattleConfig) BattleReport {
	if cfg.Runs <= 0 {
		cfg.Runs = DefaultRuns
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	winners := make([]int, cfg.Runs)
	tabled := make([]bool, cfg.Runs)
	turns := make([]float64, cfg.Runs)
	var vp, points [2][]float64
	for p := 0; p < 2; p++ {
		vp[p] = make([]float64, cfg.Runs)
		points[p] = make([]float64, cfg.Runs)
	}

	runBatch(cfg.Runs, cfg.Workers, func(i int) {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
		armies := [2]sim.Army{cfg.Armies[0].Clone(), cfg.Armies[1].Clone()}
		s := sim.NewSimulator(cloneField(cfg.Field), cfg.Zones, armies, rng, nil)
		if cfg.MaxTurns > 0 {
			s.MaxTurns = cfg.MaxTurns
		}
		r := s.Run()

		winners[i] = r.WinnerPlayer
		tabled[i] = r.Tabled
		turns[i] = float64(r.Turns)
		for p := 0; p < 2; p++ {
			vp[p][i] = float64(r.VictoryPoints[p])
			points[p][i] = float64(r.PointsRemaining[p])
		}
	})

	rep := BattleReport{
		Runs:  cfg.Runs,
		Names: [2]string{cfg.Armies[0].Name, cfg.Armies[1].Name},
	}
	turnSum := 0.0
	tabledCount := 0
	for i := 0; i < cfg.Runs; i++ {
		switch winners[i] {
		case 0, 1:
			rep.Wins[winners[i]]++
		default:
			rep.Draws++
		}
		if tabled[i] {
			tabledCount++
		}
		turnSum += turns[i]
	}
	for p := 0; p < 2; p++ {
		rep.WinRate[p] = 100 * float64(rep.Wins[p]) / float64(cfg.Runs)
		rep.VictoryPoints[p] = Summarize(vp[p])
		rep.PointsRemaining[p] = Summarize(points[p])
	}
	rep.TabledRate = 100 * float64(tabledCount) / float64(cfg.Runs)
	rep.AvgTurns = turnSum / float64(cfg.Runs)
	return rep
}

// runBatch fans run indices out over a fixed worker pool. Each fn(i) writes
// only to index i of preallocated slices, so no further synchronization is
// needed.
func runBatch(runs, workers int, fn func(i int)) {
	if workers > runs {
		workers = runs
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < runs; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// cloneField copies the battlefield so per-run objective state stays
// isolated.
func cloneField(f *battlefield.Battlefield) *battlefield.Battlefield {
	c := battlefield.New(f.Width, f.Length)
	c.Terrain = append(c.Terrain, f.Terrain...)
	c.Objectives = append(c.Objectives, f.Objectives...)
	return c
}
