// Package api provides the HTTP surface for a running skirmish.
// GET endpoints are public (read-only observation), POST endpoints require
// a bearer token, and /api/v1/stream pushes live battle events over a
// websocket.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/skirmish/internal/alert"
	"github.com/talgya/skirmish/internal/battle"
	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/persistence"
	"github.com/talgya/skirmish/internal/turn"
	"github.com/talgya/skirmish/internal/unit"
	"github.com/talgya/skirmish/internal/world"
)

// Server serves battle state over HTTP and streams events to spectators.
type Server struct {
	Battle *battle.Battle
	DB     *persistence.DB // nil disables /api/v1/save
	Hub    *Hub
	Port   int

	// AdminKey is the bearer token for POST endpoints. Empty = POST disabled.
	AdminKey string

	// Mu serializes access to the battle. The driving loop must hold the
	// same mutex; a nil Mu gets a private one (server-only access).
	Mu *sync.Mutex
}

// Start wires the event stream into the battle and begins serving in a
// goroutine.
func (s *Server) Start() {
	if s.Mu == nil {
		s.Mu = &sync.Mutex{}
	}
	if s.Hub == nil {
		s.Hub = NewHub()
	}
	go s.Hub.Run()

	s.Battle.Scheduler.Subscribe(turn.ObserverFunc(func(e turn.Event) {
		s.Hub.Publish("turn_event", turnEventView(e))
	}))
	s.Battle.Alerts.Subscribe(alert.ObserverFunc(func(c alert.DistressCall) {
		s.Hub.Publish("distress_call", alertView(&c))
	}))

	commandLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can watch the battle).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/units", s.handleUnits)
	mux.HandleFunc("/api/v1/unit/", s.handleUnitDetail)
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/alerts", s.handleAlerts)

	// Spectator event stream.
	mux.HandleFunc("/api/v1/stream", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.Hub, w, r)
	})

	// Command endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/end-turn", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handleEndTurn)))
	mux.HandleFunc("/api/v1/pause", s.adminOnly(s.handlePause))
	mux.HandleFunc("/api/v1/move", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handleMove)))
	mux.HandleFunc("/api/v1/attack", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handleAttack)))
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires POST with a valid bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "command endpoints disabled (no SKIRMISH_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// unitView is the wire shape of a unit.
type unitView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Faction      string  `json:"faction"`
	Q            int     `json:"q"`
	R            int     `json:"r"`
	Health       int     `json:"health"`
	MaxHealth    int     `json:"max_health"`
	ActionPoints int     `json:"action_points"`
	Active       bool    `json:"active"`
	Protected    bool    `json:"protected,omitempty"`
	Threat       float64 `json:"threat"`
}

func viewOf(u *unit.Unit) unitView {
	kind := "npc"
	if u.Kind() == unit.KindPlayer {
		kind = "player"
	}
	return unitView{
		ID:           u.Handle().String(),
		Name:         u.EntityName(),
		Kind:         kind,
		Faction:      u.Faction().Name(),
		Q:            u.Position().Q,
		R:            u.Position().R,
		Health:       u.Health(),
		MaxHealth:    u.MaxHealth(),
		ActionPoints: u.ActionPoints(),
		Active:       u.IsActive(),
		Protected:    u.Protected(),
		Threat:       alert.ThreatLevel(u),
	}
}

func turnEventView(e turn.Event) map[string]any {
	v := map[string]any{
		"turn":  e.TurnNumber,
		"state": e.State.String(),
		"phase": string(e.Phase),
	}
	if e.Acting != nil {
		v["acting"] = e.Acting.EntityName()
	}
	return v
}

func alertView(c *alert.DistressCall) map[string]any {
	return map[string]any{
		"victim":          c.Victim.EntityName(),
		"victim_faction":  c.VictimFaction.Name(),
		"attacker":        c.Attacker.EntityName(),
		"q":               c.Position.Q,
		"r":               c.Position.R,
		"damage":          c.Damage,
		"sound_level":     c.SoundLevel(),
		"threat_level":    c.ThreatLevel,
		"health_fraction": c.HealthFraction,
		"created_turn":    c.CreatedTurn,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	writeJSON(w, map[string]any{
		"name":    "Skirmish",
		"turn":    s.Battle.Scheduler.TurnNumber(),
		"state":   s.Battle.Scheduler.State().String(),
		"units":   len(s.Battle.Units()),
		"alerts":  s.Battle.Alerts.Len(),
		"radius":  s.Battle.Grid.Radius,
		"weather": s.Battle.Weather.Current().String(),
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type cellEntry struct {
		Q       int    `json:"q"`
		R       int    `json:"r"`
		Terrain string `json:"terrain"`
		Cost    int    `json:"cost"`
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	cells := make([]cellEntry, 0, s.Battle.Grid.CellCount())
	for _, c := range s.Battle.Grid.Cells {
		cells = append(cells, cellEntry{
			Q:       c.Coord.Q,
			R:       c.Coord.R,
			Terrain: world.TerrainName(c.Terrain),
			Cost:    c.MovementCost(),
		})
	}

	units := make([]unitView, 0, len(s.Battle.Units()))
	for _, u := range s.Battle.Units() {
		units = append(units, viewOf(u))
	}

	writeJSON(w, map[string]any{
		"radius": s.Battle.Grid.Radius,
		"cells":  cells,
		"units":  units,
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	result := make([]unitView, 0, len(s.Battle.Units()))
	for _, u := range s.Battle.Units() {
		result = append(result, viewOf(u))
	}
	writeJSON(w, result)
}

func (s *Server) handleUnitDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing unit id", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(parts[4])
	if err != nil {
		http.Error(w, "invalid unit id", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	u, ok := s.Battle.Unit(id)
	if !ok {
		http.Error(w, "unit not found", http.StatusNotFound)
		return
	}
	writeJSON(w, viewOf(u))
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	type standingEntry struct {
		Source   string `json:"source"`
		Target   string `json:"target"`
		Standing string `json:"standing"`
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	names := make([]string, 0)
	for _, f := range faction.All() {
		names = append(names, f.Name())
	}
	standings := make([]standingEntry, 0)
	for _, e := range s.Battle.Factions.Entries() {
		standings = append(standings, standingEntry{
			Source:   e.Source.Name(),
			Target:   e.Target.Name(),
			Standing: e.Standing.String(),
		})
	}

	writeJSON(w, map[string]any{
		"factions":  names,
		"default":   s.Battle.Factions.DefaultStanding().String(),
		"standings": standings,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	center := world.HexCoord{}
	// Everything on the board is within twice the radius of the center.
	calls := s.Battle.Alerts.AllCallsInRange(center, s.Battle.Grid.Radius*2, uuid.Nil)
	result := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		result = append(result, alertView(c))
	}
	writeJSON(w, result)
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	ok := s.Battle.Scheduler.EndPlayerTurn()
	state := s.Battle.Scheduler.State().String()
	turnNumber := s.Battle.Scheduler.TurnNumber()
	s.Mu.Unlock()

	if !ok {
		http.Error(w, "not the player's turn", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{"state": state, "turn": turnNumber})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	s.Battle.Scheduler.SetPaused(req.Paused)
	state := s.Battle.Scheduler.State().String()
	s.Mu.Unlock()

	writeJSON(w, map[string]string{"state": state})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Q int `json:"q"`
		R int `json:"r"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	ok := s.Battle.MovePlayer(world.HexCoord{Q: req.Q, R: req.R})
	s.Mu.Unlock()

	if !ok {
		http.Error(w, "move rejected", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"moved": true})
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Q int `json:"q"`
		R int `json:"r"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	res, ok := s.Battle.PlayerAttack(world.HexCoord{Q: req.Q, R: req.R})
	s.Mu.Unlock()

	if !ok {
		http.Error(w, "attack rejected", http.StatusConflict)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}

	s.Mu.Lock()
	err := s.DB.SaveBattle(s.Battle)
	s.Mu.Unlock()

	if err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"saved": true})
}
