// Package provenance persists depth-transition decisions and round summaries
// in SQLite, so every k a record ends up at can be traced back to the judge
// verdict that caused it.
package provenance

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	round       INTEGER NOT NULL,
	record_id   TEXT,
	question    TEXT NOT NULL,
	old_k       TEXT NOT NULL,
	new_k       TEXT NOT NULL,
	score       INTEGER NOT NULL,
	adjustment  TEXT,
	action      TEXT NOT NULL,
	reason      TEXT,
	eval_failed INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transitions_run
ON transitions(run_id, round);

CREATE TABLE IF NOT EXISTS rounds (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	round      INTEGER NOT NULL,
	evaluated  INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	resolved   INTEGER NOT NULL,
	reflected  INTEGER NOT NULL,
	dropped    INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`

// #endregion schema

// #region types

// TransitionEntry is one row of the transitions table.
type TransitionEntry struct {
	RunID      string
	Round      int
	RecordID   string
	Question   string
	OldK       string
	NewK       string
	Score      int
	Adjustment *int
	Action     string
	Reason     string
	EvalFailed bool
	CreatedAt  time.Time
}

// RoundEntry is one row of the rounds table.
type RoundEntry struct {
	RunID     string
	Round     int
	Evaluated int
	Failed    int
	Resolved  int
	Reflected int
	Dropped   int
	CreatedAt time.Time
}

// #endregion types

// #region store

// Store manages the provenance database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region log-transition

// LogTransition writes one depth decision.
func (s *Store) LogTransition(entry TransitionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	failed := 0
	if entry.EvalFailed {
		failed = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO transitions
		 (run_id, round, record_id, question, old_k, new_k, score, adjustment, action, reason, eval_failed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Round,
		nullIfEmpty(entry.RecordID),
		entry.Question,
		entry.OldK,
		entry.NewK,
		entry.Score,
		adjustmentValue(entry.Adjustment),
		entry.Action,
		nullIfEmpty(entry.Reason),
		failed,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log transition: %w", err)
	}
	return nil
}

// #endregion log-transition

// #region log-round

// LogRound writes one round summary.
func (s *Store) LogRound(entry RoundEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO rounds (run_id, round, evaluated, failed, resolved, reflected, dropped, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID, entry.Round, entry.Evaluated, entry.Failed,
		entry.Resolved, entry.Reflected, entry.Dropped,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log round: %w", err)
	}
	return nil
}

// #endregion log-round

// #region queries

// ListTransitions returns a run's transitions in insertion order. An empty
// runID returns every run.
func (s *Store) ListTransitions(runID string) ([]TransitionEntry, error) {
	query := `SELECT run_id, round, record_id, question, old_k, new_k, score, adjustment, action, reason, eval_failed, created_at
	          FROM transitions`
	var args []interface{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var entries []TransitionEntry
	for rows.Next() {
		var e TransitionEntry
		var recordID, adjustment, reason sql.NullString
		var failed int
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Round, &recordID, &e.Question, &e.OldK, &e.NewK,
			&e.Score, &adjustment, &e.Action, &reason, &failed, &createdStr); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.RecordID = recordID.String
		e.Reason = reason.String
		e.EvalFailed = failed != 0
		if adjustment.Valid {
			var n int
			if _, err := fmt.Sscanf(adjustment.String, "%d", &n); err == nil {
				e.Adjustment = &n
			}
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListRounds returns round summaries in insertion order. An empty runID
// returns every run.
func (s *Store) ListRounds(runID string) ([]RoundEntry, error) {
	query := `SELECT run_id, round, evaluated, failed, resolved, reflected, dropped, created_at FROM rounds`
	var args []interface{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var entries []RoundEntry
	for rows.Next() {
		var e RoundEntry
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Round, &e.Evaluated, &e.Failed,
			&e.Resolved, &e.Reflected, &e.Dropped, &createdStr); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion queries

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func adjustmentValue(adj *int) interface{} {
	if adj == nil {
		return nil
	}
	return fmt.Sprintf("%d", *adj)
}

// #endregion helpers
