// Package persistence provides SQLite-based battle state storage: the
// battlefield cells, the living units, the faction standings, and the turn
// counter, enough to stop a skirmish and resume it later.
package persistence

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/skirmish/internal/battle"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/unit"
	"github.com/talgya/skirmish/internal/world"
)

// DB wraps a SQLite connection for battle state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cells (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		faction INTEGER NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		health INTEGER NOT NULL,
		max_health INTEGER NOT NULL,
		attack INTEGER NOT NULL,
		armor INTEGER NOT NULL,
		crit_chance REAL NOT NULL,
		crit_multiplier REAL NOT NULL,
		protected INTEGER NOT NULL,
		action_points INTEGER NOT NULL,
		max_action_points INTEGER NOT NULL,
		vision_range INTEGER NOT NULL,
		hearing_range INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS standings (
		source INTEGER NOT NULL,
		target INTEGER NOT NULL,
		standing INTEGER NOT NULL,
		PRIMARY KEY (source, target)
	);

	CREATE TABLE IF NOT EXISTS battle_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// unitRow is the flat unit record.
type unitRow struct {
	ID              string  `db:"id"`
	Name            string  `db:"name"`
	Kind            int     `db:"kind"`
	Faction         int     `db:"faction"`
	PosQ            int     `db:"pos_q"`
	PosR            int     `db:"pos_r"`
	Health          int     `db:"health"`
	MaxHealth       int     `db:"max_health"`
	Attack          int     `db:"attack"`
	Armor           int     `db:"armor"`
	CritChance      float64 `db:"crit_chance"`
	CritMultiplier  float64 `db:"crit_multiplier"`
	Protected       int     `db:"protected"`
	ActionPoints    int     `db:"action_points"`
	MaxActionPoints int     `db:"max_action_points"`
	VisionRange     int     `db:"vision_range"`
	HearingRange    int     `db:"hearing_range"`
}

type cellRow struct {
	Q       int `db:"q"`
	R       int `db:"r"`
	Terrain int `db:"terrain"`
}

type standingRow struct {
	Source   int `db:"source"`
	Target   int `db:"target"`
	Standing int `db:"standing"`
}

// SaveBattle performs a full replace of the stored battle state. Distress
// calls are deliberately not persisted: they decay within a few turns and a
// resumed battle starts from a quiet field.
func (db *DB) SaveBattle(b *battle.Battle) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"cells", "units", "standings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	stmt, err := tx.Preparex("INSERT INTO cells (q, r, terrain) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	for _, cell := range b.Grid.Cells {
		if _, err := stmt.Exec(cell.Coord.Q, cell.Coord.R, int(cell.Terrain)); err != nil {
			stmt.Close()
			return fmt.Errorf("insert cell %v: %w", cell.Coord, err)
		}
	}
	stmt.Close()

	stmt, err = tx.Preparex(`INSERT INTO units
		(id, name, kind, faction, pos_q, pos_r, health, max_health, attack,
		 armor, crit_chance, crit_multiplier, protected, action_points,
		 max_action_points, vision_range, hearing_range)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, u := range b.Units() {
		st := u.Stats()
		protected := 0
		if u.Protected() {
			protected = 1
		}
		_, err := stmt.Exec(
			u.Handle().String(), u.EntityName(), int(u.Kind()), int(u.Faction()),
			u.Position().Q, u.Position().R,
			st.Health, st.MaxHealth, st.AttackDamage,
			st.Armor, st.CritChance, st.CritMultiplier,
			protected, u.ActionPoints(), u.MaxActionPoints(),
			u.VisionRange, u.HearingRange,
		)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("insert unit %s: %w", u.EntityName(), err)
		}
	}
	stmt.Close()

	for _, e := range b.Factions.Entries() {
		_, err := tx.Exec(
			"INSERT INTO standings (source, target, standing) VALUES (?, ?, ?)",
			int(e.Source), int(e.Target), int(e.Standing),
		)
		if err != nil {
			return err
		}
	}

	meta := map[string]string{
		"turn_number":      strconv.Itoa(b.Scheduler.TurnNumber()),
		"grid_radius":      strconv.Itoa(b.Grid.Radius),
		"default_standing": strconv.Itoa(int(b.Factions.DefaultStanding())),
	}
	for key, value := range meta {
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO battle_meta (key, value) VALUES (?, ?)",
			key, value,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("battle saved",
		"units", len(b.Units()),
		"cells", b.Grid.CellCount(),
		"turn", b.Scheduler.TurnNumber(),
	)
	return nil
}

// LoadBattle reconstructs a battle from the stored state. rolls may be nil
// for a crypto-backed source. Returns an error when no save exists.
func (db *DB) LoadBattle(rolls entropy.Source) (*battle.Battle, error) {
	turnNumber, err := db.metaInt("turn_number")
	if err != nil {
		return nil, fmt.Errorf("no saved battle: %w", err)
	}
	radius, err := db.metaInt("grid_radius")
	if err != nil {
		return nil, err
	}
	defStanding, err := db.metaInt("default_standing")
	if err != nil {
		return nil, err
	}

	grid := world.NewGrid(radius)
	var cells []cellRow
	if err := db.conn.Select(&cells, "SELECT q, r, terrain FROM cells"); err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	for _, row := range cells {
		grid.Set(&world.Cell{
			Coord:   world.HexCoord{Q: row.Q, R: row.R},
			Terrain: world.Terrain(row.Terrain),
		})
	}

	matrix := faction.NewMatrix(faction.Standing(defStanding))
	var standings []standingRow
	if err := db.conn.Select(&standings, "SELECT source, target, standing FROM standings"); err != nil {
		return nil, fmt.Errorf("load standings: %w", err)
	}
	for _, row := range standings {
		matrix.SetStanding(
			faction.Faction(row.Source),
			faction.Faction(row.Target),
			faction.Standing(row.Standing),
		)
	}

	b := battle.New(battle.Config{Grid: grid, Factions: matrix, Rolls: rolls})
	b.Scheduler.SetTurnNumber(turnNumber)

	var units []unitRow
	if err := db.conn.Select(&units, "SELECT * FROM units"); err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	for _, row := range units {
		u, err := row.restore(b)
		if err != nil {
			return nil, err
		}
		u.SetActionPoints(row.ActionPoints)
	}

	slog.Info("battle loaded", "units", len(units), "turn", turnNumber)
	return b, nil
}

// restore turns a row back into a registered unit.
func (row unitRow) restore(b *battle.Battle) (*unit.Unit, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("unit %q: bad handle: %w", row.Name, err)
	}
	return b.RestoreUnit(id, unit.Config{
		Name:     row.Name,
		Kind:     unit.Kind(row.Kind),
		Faction:  faction.Faction(row.Faction),
		Position: world.HexCoord{Q: row.PosQ, R: row.PosR},
		Stats: unit.Stats{
			Health:         row.Health,
			MaxHealth:      row.MaxHealth,
			AttackDamage:   row.Attack,
			Armor:          row.Armor,
			CritChance:     row.CritChance,
			CritMultiplier: row.CritMultiplier,
		},
		ActionPoints: row.MaxActionPoints,
		VisionRange:  row.VisionRange,
		HearingRange: row.HearingRange,
		Protected:    row.Protected != 0,
	})
}

func (db *DB) metaInt(key string) (int, error) {
	var value string
	if err := db.conn.Get(&value, "SELECT value FROM battle_meta WHERE key = ?", key); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("meta %q: %w", key, err)
	}
	return n, nil
}

// HasSave reports whether the database holds a saved battle.
func (db *DB) HasSave() bool {
	_, err := db.metaInt("turn_number")
	return err == nil
}
