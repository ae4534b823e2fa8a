package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"battlesim/internal/battlefield"
	"battlesim/internal/config"
	"battlesim/internal/sim"
	"battlesim/internal/stats"
)

// ========================= CLI =========================

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "scenario YAML (optional, defaults apply)")
		army1Path    = flag.String("army1", "", "player 1 roster YAML (required)")
		army2Path    = flag.String("army2", "", "player 2 roster YAML (required)")
		mode         = flag.String("mode", "battle", "battle | batch")
		runs         = flag.Int("runs", 1000, "runs for batch mode")
		seed         = flag.Int64("seed", 0, "base RNG seed (0 = time-based)")
		maxTurns     = flag.Int("turns", 0, "override max battle rounds")
		jsonOut      = flag.Bool("json", false, "emit the report as JSON")
		verbose      = flag.Bool("verbose", false, "debug logging and full event log")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	if *army1Path == "" || *army2Path == "" {
		logger.Fatal("both -army1 and -army2 are required")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	scenario := &config.Scenario{}
	if *scenarioPath != "" {
		var err error
		scenario, err = config.LoadScenario(*scenarioPath)
		if err != nil {
			logger.Fatal("load scenario", zap.Error(err))
		}
	}
	a1, err := config.LoadArmy(*army1Path)
	if err != nil {
		logger.Fatal("load army1", zap.Error(err))
	}
	a2, err := config.LoadArmy(*army2Path)
	if err != nil {
		logger.Fatal("load army2", zap.Error(err))
	}

	field := scenario.BuildField()
	zones := scenario.BuildZones(field)
	armies := [2]sim.Army{a1.BuildArmy(0), a2.BuildArmy(1)}

	turns := scenario.MaxTurns
	if *maxTurns > 0 {
		turns = *maxTurns
	}

	switch *mode {
	case "battle":
		runSingle(logger, field, zones, armies, turns, *seed, *jsonOut, *verbose)
	case "batch":
		runBatch(logger, field, zones, armies, turns, *runs, *seed, *jsonOut)
	default:
		logger.Fatal("unknown mode", zap.String("mode", *mode))
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	return logger
}

// ========================= Single battle =========================

func runSingle(logger *zap.Logger, field *battlefield.Battlefield, zones [2]battlefield.Zone, armies [2]sim.Army, turns int, seed int64, jsonOut, verbose bool) {
	s := sim.NewSimulator(field, zones, armies, rand.New(rand.NewSource(seed)), logger)
	if turns > 0 {
		s.MaxTurns = turns
	}
	report := s.Run()

	if jsonOut {
		emitJSON(report)
		return
	}

	if verbose {
		for _, ev := range report.Events {
			line := fmt.Sprintf("[T%d P%d %s] %s", ev.Turn, ev.Player, ev.Phase, ev.Message)
			if ev.Unit != "" {
				line = fmt.Sprintf("[T%d P%d %s] %s: %s", ev.Turn, ev.Player, ev.Phase, ev.Unit, ev.Message)
			}
			fmt.Println(line)
		}
	}

	fmt.Printf("Winner: %s", report.Winner)
	if report.Tabled {
		fmt.Print(" (tabled)")
	}
	fmt.Printf(" after %d rounds\n", report.Turns)
	for p := 0; p < 2; p++ {
		fmt.Printf("  %s: %d VP, %d units (%d pts) remaining, %d wounds dealt\n",
			armies[p].Name, report.VictoryPoints[p], report.UnitsRemaining[p],
			report.PointsRemaining[p], report.WoundsDealt[p])
	}
}

// ========================= Batch =========================

func runBatch(logger *zap.Logger, field *battlefield.Battlefield, zones [2]battlefield.Zone, armies [2]sim.Army, turns, runs int, seed int64, jsonOut bool) {
	report := stats.RunBattles(stats.BattleConfig{
		Field:    field,
		Zones:    zones,
		Armies:   armies,
		MaxTurns: turns,
		Runs:     runs,
		Seed:     seed,
	})
	logger.Info("batch complete", zap.Int("runs", report.Runs))

	if jsonOut {
		emitJSON(report)
		return
	}

	fmt.Printf("%d battles: %s %.1f%% / %s %.1f%% / draws %.1f%%\n",
		report.Runs,
		report.Names[0], report.WinRate[0],
		report.Names[1], report.WinRate[1],
		100*float64(report.Draws)/float64(report.Runs))
	fmt.Printf("avg rounds %.1f, tabled %.1f%%\n", report.AvgTurns, report.TabledRate)
	for p := 0; p < 2; p++ {
		vp := report.VictoryPoints[p]
		fmt.Printf("  %s VP: mean %.1f (p10 %.0f / p50 %.0f / p90 %.0f)\n",
			report.Names[p], vp.Mean, vp.P10, vp.P50, vp.P90)
	}
}

func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}
