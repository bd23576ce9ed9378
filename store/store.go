// Package store provides SQLite-based persistence for sweep results.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"vle"
)

// DB wraps a SQLite connection for equilibrium result storage.
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
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		eos TEXT NOT NULL,
		components_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		idx INTEGER NOT NULL,
		temperature REAL NOT NULL,
		pressure REAL,
		fixed_json TEXT NOT NULL,
		solved_json TEXT NOT NULL,
		vapor_flag INTEGER NOT NULL,
		liquid_flag INTEGER NOT NULL,
		objective REAL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_points_run ON points(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunRecord identifies one stored sweep.
type RunRecord struct {
	ID         string    `db:"id"`
	Kind       string    `db:"kind"`
	EOS        string    `db:"eos"`
	Components string    `db:"components_json"`
	CreatedAt  time.Time `db:"created_at"`
}

// SaveSweep stores a full sweep under a fresh run id and returns it.
// NaN values round-trip as SQL NULL, since SQLite has no NaN.
func (db *DB) SaveSweep(kind, eosName string, components []string, results []vle.SweepResult) (string, error) {
	runID := uuid.NewString()
	slog.Info("saving sweep", "run", runID, "kind", kind, "points", len(results))

	compJSON, err := json.Marshal(components)
	if err != nil {
		return "", err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, kind, eos, components_json, created_at) VALUES (?, ?, ?, ?, ?)",
		runID, kind, eosName, string(compJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO points
		(run_id, idx, temperature, pressure, fixed_json, solved_json,
		 vapor_flag, liquid_flag, objective, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, r := range results {
		fixedJSON, _ := json.Marshal(r.Fixed)
		solvedJSON, _ := json.Marshal(sanitize(r.Composition))

		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}

		_, err := stmt.Exec(
			runID, i, r.T, nullableFloat(r.Pressure),
			string(fixedJSON), string(solvedJSON),
			int(r.VaporFlag), int(r.LiquidFlag),
			nullableFloat(r.Objective), errText,
		)
		if err != nil {
			return "", fmt.Errorf("insert point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// LoadSweep reads back the points of a run in input order.
func (db *DB) LoadSweep(runID string) ([]vle.SweepResult, error) {
	rows, err := db.conn.Queryx(
		`SELECT idx, temperature, pressure, fixed_json, solved_json,
		        vapor_flag, liquid_flag, objective, error
		 FROM points WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []vle.SweepResult
	for rows.Next() {
		var (
			idx                   int
			temp                  float64
			pressure, objective   *float64
			fixedJSON, solvedJSON string
			vaporFlag, liquidFlag int
			errText               string
		)
		if err := rows.Scan(&idx, &temp, &pressure, &fixedJSON, &solvedJSON,
			&vaporFlag, &liquidFlag, &objective, &errText); err != nil {
			return nil, err
		}

		r := vle.SweepResult{
			T:          temp,
			Pressure:   floatOrNaN(pressure),
			VaporFlag:  vle.PhaseFlag(vaporFlag),
			LiquidFlag: vle.PhaseFlag(liquidFlag),
			Objective:  floatOrNaN(objective),
		}
		if err := json.Unmarshal([]byte(fixedJSON), &r.Fixed); err != nil {
			return nil, fmt.Errorf("point %d fixed composition: %w", idx, err)
		}
		var solved []*float64
		if err := json.Unmarshal([]byte(solvedJSON), &solved); err != nil {
			return nil, fmt.Errorf("point %d solved composition: %w", idx, err)
		}
		r.Composition = make([]float64, len(solved))
		for i, v := range solved {
			r.Composition[i] = floatOrNaN(v)
		}
		if errText != "" {
			r.Err = fmt.Errorf("%s", errText)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Runs lists stored runs, most recent first.
func (db *DB) Runs(limit int) ([]RunRecord, error) {
	rows, err := db.conn.Queryx(
		"SELECT id, kind, eos, components_json, created_at FROM runs ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.EOS, &rec.Components, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// nullableFloat maps NaN to SQL NULL.
func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// sanitize converts NaN entries to JSON null via pointers.
func sanitize(v []float64) []*float64 {
	out := make([]*float64, len(v))
	for i := range v {
		if !math.IsNaN(v[i]) {
			x := v[i]
			out[i] = &x
		}
	}
	return out
}
