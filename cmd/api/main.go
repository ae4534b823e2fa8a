package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"battlesim/internal/battlefield"
	"battlesim/internal/config"
	"battlesim/internal/game"
	"battlesim/internal/sim"
	"battlesim/internal/stats"
)

// ========================= Server state =========================

// battleRecord is one completed battle kept in memory for retrieval and
// event streaming.
type battleRecord struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Seed      int64      `json:"seed"`
	Report    sim.Report `json:"report"`
}

type server struct {
	log *zap.Logger

	mu      sync.RWMutex
	battles map[string]*battleRecord
	nextID  int
}

func newServer(log *zap.Logger) *server {
	return &server{log: log, battles: make(map[string]*battleRecord)}
}

func (s *server) store(seed int64, report sim.Report) *battleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec := &battleRecord{
		ID:        fmt.Sprintf("battle-%d", s.nextID),
		CreatedAt: time.Now().UTC(),
		Seed:      seed,
		Report:    report,
	}
	s.battles[rec.ID] = rec
	return rec
}

func (s *server) get(id string) (*battleRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.battles[id]
	return rec, ok
}

func (s *server) list() []*battleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*battleRecord, 0, len(s.battles))
	for _, rec := range s.battles {
		out = append(out, rec)
	}
	return out
}

// ========================= HTTP helpers =========================

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ========================= Request shapes =========================

// battleRequest carries inline rosters and an optional scenario. Armies use
// the same shapes as the YAML files.
type battleRequest struct {
	Scenario *config.Scenario  `json:"scenario,omitempty"`
	Armies   [2]config.ArmyFile `json:"armies"`
	Seed     int64              `json:"seed,omitempty"`
	MaxTurns int                `json:"max_turns,omitempty"`
	Events   bool               `json:"events,omitempty"`
}

type matchupRequest struct {
	Attacker  config.UnitConfig `json:"attacker"`
	Defender  config.UnitConfig `json:"defender"`
	Overrides game.Overrides    `json:"overrides,omitempty"`
	Runs      int               `json:"runs,omitempty"`
	Seed      int64             `json:"seed,omitempty"`
}

type batchBattleRequest struct {
	battleRequest
	Runs int `json:"runs,omitempty"`
}

func (r *battleRequest) setup() (*battlefield.Battlefield, [2]battlefield.Zone, [2]sim.Army, error) {
	for p := 0; p < 2; p++ {
		if len(r.Armies[p].Units) == 0 {
			return nil, [2]battlefield.Zone{}, [2]sim.Army{}, fmt.Errorf("army %d has no units", p)
		}
	}
	sc := r.Scenario
	if sc == nil {
		sc = &config.Scenario{}
	}
	field := sc.BuildField()
	zones := sc.BuildZones(field)
	armies := [2]sim.Army{r.Armies[0].BuildArmy(0), r.Armies[1].BuildArmy(1)}
	return field, zones, armies, nil
}

func seedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// ========================= Handlers =========================

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleResolve runs one seeded matchup batch: attacker's ranged weapons
// into the defender, with full descriptive statistics.
func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req matchupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Attacker.Name == "" || req.Defender.Name == "" {
		writeError(w, http.StatusBadRequest, "attacker and defender are required")
		return
	}
	report := stats.RunMatchup(stats.MatchupConfig{
		Attacker:  config.BuildUnit(req.Attacker, 0),
		Defender:  config.BuildUnit(req.Defender, 1),
		Overrides: req.Overrides,
		Runs:      req.Runs,
		Seed:      seedOrNow(req.Seed),
	})
	writeJSON(w, http.StatusOK, report)
}

// handleCreateBattle runs a single battle synchronously and stores the
// result; the response carries the record, events included on request.
func (s *server) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req battleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	field, zones, armies, err := req.setup()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	seed := seedOrNow(req.Seed)
	simulator := sim.NewSimulator(field, zones, armies, rand.New(rand.NewSource(seed)), s.log)
	if req.MaxTurns > 0 {
		simulator.MaxTurns = req.MaxTurns
	}
	report := simulator.Run()
	rec := s.store(seed, report)
	s.log.Info("battle stored",
		zap.String("id", rec.ID),
		zap.String("winner", report.Winner),
		zap.Int("events", len(report.Events)))

	if !req.Events {
		trimmed := *rec
		trimmed.Report.Events = nil
		writeJSON(w, http.StatusCreated, &trimmed)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleBatchBattles runs a reproducible batch and returns the aggregate
// only; individual runs are not stored.
func (s *server) handleBatchBattles(w http.ResponseWriter, r *http.Request) {
	var req batchBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	field, zones, armies, err := req.setup()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report := stats.RunBattles(stats.BattleConfig{
		Field:    field,
		Zones:    zones,
		Armies:   armies,
		MaxTurns: req.MaxTurns,
		Runs:     req.Runs,
		Seed:     seedOrNow(req.Seed),
	})
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleListBattles(w http.ResponseWriter, _ *http.Request) {
	type summary struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Winner    string    `json:"winner"`
		Turns     int       `json:"turns"`
	}
	recs := s.list()
	out := make([]summary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, summary{
			ID:        rec.ID,
			CreatedAt: rec.CreatedAt,
			Winner:    rec.Report.Winner,
			Turns:     rec.Report.Turns,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "battle not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ========================= main =========================

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv := newServer(logger)

	r := mux.NewRouter()
	r.HandleFunc("/api/healthz", srv.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/api/sim/resolve", srv.handleResolve).Methods(http.MethodPost)
	r.HandleFunc("/api/sim/matchup", srv.handleBatchBattles).Methods(http.MethodPost)
	r.HandleFunc("/api/battles", srv.handleCreateBattle).Methods(http.MethodPost)
	r.HandleFunc("/api/battles", srv.handleListBattles).Methods(http.MethodGet)
	r.HandleFunc("/api/battles/{id}", srv.handleGetBattle).Methods(http.MethodGet)
	r.HandleFunc("/ws/battles/{id}", srv.handleBattleStream)

	addr := ":" + getenv("PORT", "8080")
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(r)); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
