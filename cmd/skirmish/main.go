// Command skirmish runs a tactical hex-grid battle with a turn cycle, a
// faction relationship matrix, and distress-driven NPC behavior, served
// over an HTTP API with a websocket event stream.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talgya/skirmish/internal/api"
	"github.com/talgya/skirmish/internal/battle"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/persistence"
	"github.com/talgya/skirmish/internal/unit"
	"github.com/talgya/skirmish/internal/world"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Running without a .env file is normal in production.
		slog.Debug("no .env file loaded", "error", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	seed := envInt64("SKIRMISH_SEED", 42)
	dbPath := envStr("SKIRMISH_DB", "data/skirmish.db")
	apiPort := int(envInt64("SKIRMISH_PORT", 8080))
	stepDelay := time.Duration(envInt64("SKIRMISH_STEP_DELAY_MS", 250)) * time.Millisecond
	adminKey := os.Getenv("SKIRMISH_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("SKIRMISH_ADMIN_KEY not set — command endpoints will be disabled")
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Load or Generate Battle ───────────────────────────────────────
	var b *battle.Battle
	if db.HasSave() {
		slog.Info("found saved battle, loading...")
		b, err = db.LoadBattle(entropy.Seeded(seed))
		if err != nil {
			slog.Error("failed to load battle", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no saved battle, generating battlefield...", "seed", seed)
		b = newBattle(seed)
		if err := db.SaveBattle(b); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}
	b.Scheduler.StepDelay = stepDelay

	counts := world.TerrainCounts(b.Grid)
	for t, c := range counts {
		slog.Info("terrain", "type", world.TerrainName(t), "count", c)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	var mu sync.Mutex
	server := &api.Server{
		Battle:   b,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
		Mu:       &mu,
	}
	server.Start()

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Skirmish is on: %d units, turn %d.\n", len(b.Units()), b.Scheduler.TurnNumber())
	fmt.Printf("API: http://localhost:%d/api/v1/status (Ctrl+C to stop)\n", apiPort)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			mu.Lock()
			b.Scheduler.Tick(now)
			mu.Unlock()
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			mu.Lock()
			err := db.SaveBattle(b)
			mu.Unlock()
			if err != nil {
				slog.Error("final save failed", "error", err)
			}
			fmt.Println("Battle stopped. State saved.")
			return
		}
	}
}

// newBattle generates a fresh battlefield and places the opening roster.
func newBattle(seed int64) *battle.Battle {
	gen := world.DefaultGenConfig()
	gen.Seed = seed

	var matrix *faction.Matrix
	if path := os.Getenv("SKIRMISH_STANDINGS"); path != "" {
		m, err := faction.LoadMatrix(path)
		if err != nil {
			slog.Error("failed to load standings file", "path", path, "error", err)
			os.Exit(1)
		}
		slog.Info("standings loaded", "path", path)
		matrix = m
	}

	b := battle.New(battle.Config{
		Gen:      gen,
		Factions: matrix,
		Rolls:    entropy.Seeded(seed),
	})

	spawn := func(cfg unit.Config) {
		cell := b.Grid.Get(cfg.Position)
		if cell == nil || !cell.IsWalkable() || b.Grid.IsOccupied(cfg.Position) {
			cfg.Position = nearestOpenCell(b, cfg.Position)
		}
		u := b.SpawnNPC(cfg)
		slog.Info("unit spawned",
			"name", u.EntityName(),
			"faction", u.Faction().Name(),
			"pos", u.Position(),
		)
	}

	if _, err := b.SpawnPlayer(unit.Config{
		Name:     "Commander",
		Faction:  faction.Player,
		Position: world.HexCoord{},
		Stats: unit.Stats{
			Health: 120, MaxHealth: 120,
			AttackDamage: 14, Armor: 3,
			CritChance: 0.15, CritMultiplier: 2.0,
		},
		ActionPoints: 8,
		VisionRange:  10, HearingRange: 14,
	}); err != nil {
		slog.Error("player spawn failed", "error", err)
		os.Exit(1)
	}

	spawn(unit.Config{
		Name: "Elder Rowan", Faction: faction.Villagers,
		Position: world.HexCoord{Q: 2, R: -1},
		Stats: unit.Stats{
			Health: 40, MaxHealth: 40, AttackDamage: 2,
		},
		ActionPoints: 4, VisionRange: 6, HearingRange: 10,
		Protected: true,
	})
	spawn(unit.Config{
		Name: "Militia Bren", Faction: faction.Villagers,
		Position: world.HexCoord{Q: -2, R: 2},
		Stats: unit.Stats{
			Health: 70, MaxHealth: 70, AttackDamage: 9, Armor: 1,
			CritChance: 0.05, CritMultiplier: 1.5,
		},
		ActionPoints: 6, VisionRange: 9, HearingRange: 12,
	})
	spawn(unit.Config{
		Name: "Raider Skav", Faction: faction.Bandits,
		Position: world.HexCoord{Q: 8, R: -3},
		Stats: unit.Stats{
			Health: 60, MaxHealth: 60, AttackDamage: 11,
			CritChance: 0.10, CritMultiplier: 2.0,
		},
		ActionPoints: 6, VisionRange: 9, HearingRange: 11,
	})
	spawn(unit.Config{
		Name: "Raider Morn", Faction: faction.Bandits,
		Position: world.HexCoord{Q: 9, R: -2},
		Stats: unit.Stats{
			Health: 55, MaxHealth: 55, AttackDamage: 10,
			CritChance: 0.10, CritMultiplier: 2.0,
		},
		ActionPoints: 6, VisionRange: 9, HearingRange: 11,
	})
	spawn(unit.Config{
		Name: "Gray Wolf", Faction: faction.Wildlife,
		Position: world.HexCoord{Q: -6, R: -4},
		Stats: unit.Stats{
			Health: 35, MaxHealth: 35, AttackDamage: 7,
			CritChance: 0.20, CritMultiplier: 1.8,
		},
		ActionPoints: 8, VisionRange: 7, HearingRange: 14,
	})
	spawn(unit.Config{
		Name: "Sellsword Vance", Faction: faction.Mercenaries,
		Position: world.HexCoord{Q: 0, R: 7},
		Stats: unit.Stats{
			Health: 85, MaxHealth: 85, AttackDamage: 12, Armor: 2,
			CritChance: 0.12, CritMultiplier: 2.2,
		},
		ActionPoints: 7, VisionRange: 10, HearingRange: 10,
	})

	return b
}

// nearestOpenCell spirals out from the wanted coordinate until it finds a
// walkable, unoccupied cell. Generated terrain can put water or rock under
// a scripted spawn point.
func nearestOpenCell(b *battle.Battle, want world.HexCoord) world.HexCoord {
	for ring := 1; ring <= b.Grid.Radius; ring++ {
		for q := -ring; q <= ring; q++ {
			for r := -ring; r <= ring; r++ {
				c := want.Add(world.HexCoord{Q: q, R: r})
				cell := b.Grid.Get(c)
				if cell != nil && cell.IsWalkable() && !b.Grid.IsOccupied(c) {
					return c
				}
			}
		}
	}
	return want
}

func logLevel() slog.Level {
	switch os.Getenv("SKIRMISH_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("ignoring malformed env value", "key", key, "value", v)
	}
	return def
}
