package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("store: run not found")

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	description       TEXT,
	input_size        INTEGER NOT NULL,
	learning_rate     REAL NOT NULL,
	batch_generations INTEGER NOT NULL,
	max_batches       INTEGER NOT NULL,
	example_count     INTEGER NOT NULL DEFAULT 0,
	probe_json        TEXT NOT NULL,
	target            INTEGER NOT NULL,
	created_at        TEXT NOT NULL,
	finished_at       TEXT,
	batches           INTEGER NOT NULL DEFAULT 0,
	converged         INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS training_log (
	run_id      TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	generation  INTEGER NOT NULL,
	inputs      BLOB NOT NULL,
	expected    INTEGER NOT NULL,
	predicted   INTEGER NOT NULL,
	weights     BLOB NOT NULL,
	bias        REAL NOT NULL,
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store keeps training runs and their logs in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region create-run
// CreateRun inserts a new run in the running state. RunID and CreatedAt are
// filled in when empty.
func (s *Store) CreateRun(rec RunRecord) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Status = StatusRunning

	probeJSON, err := json.Marshal(rec.Probe)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal probe: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, description, input_size, learning_rate, batch_generations,
		                   max_batches, example_count, probe_json, target, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, nullIfEmpty(rec.Description), rec.InputSize, rec.LearningRate,
		rec.BatchGenerations, rec.MaxBatches, rec.ExampleCount, string(probeJSON), rec.Target,
		rec.CreatedAt.UTC().Format(timeLayout), rec.Status,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}
// #endregion create-run

// #region append-log
// AppendLog stores entries after the ones already recorded for the run.
// All entries are written in one transaction.
func (s *Store) AppendLog(runID string, entries []perceptron.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM training_log WHERE run_id = ?`, runID,
	).Scan(&next); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO training_log (run_id, seq, generation, inputs, expected, predicted, weights, bias)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		_, err := stmt.Exec(
			runID, next+i, e.Generation, encodeVector(e.Inputs),
			int(e.Expected), int(e.Predicted), encodeVector(e.Weights), e.Bias,
		)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", next+i, err)
		}
	}

	return tx.Commit()
}
// #endregion append-log

// #region finish-run
// FinishRun records the outcome of a run.
func (s *Store) FinishRun(runID string, out Outcome) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, batches = ?, converged = ?, status = ? WHERE run_id = ?`,
		time.Now().UTC().Format(timeLayout), out.Batches, boolToInt(out.Converged), out.Status, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
// #endregion finish-run

// #region get-run
const runColumns = `r.run_id, r.description, r.input_size, r.learning_rate, r.batch_generations,
	r.max_batches, r.example_count, r.probe_json, r.target, r.created_at, r.finished_at, r.batches, r.converged,
	r.status, (SELECT COUNT(*) FROM training_log l WHERE l.run_id = r.run_id)`

// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs r WHERE r.run_id = ?`, runID)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs r ORDER BY r.created_at DESC, r.rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var rec RunRecord
	var desc, finished sql.NullString
	var probeJSON, createdStr string
	var converged int

	err := sc.Scan(&rec.RunID, &desc, &rec.InputSize, &rec.LearningRate, &rec.BatchGenerations,
		&rec.MaxBatches, &rec.ExampleCount, &probeJSON, &rec.Target, &createdStr, &finished, &rec.Batches,
		&converged, &rec.Status, &rec.LogLen)
	if err != nil {
		return RunRecord{}, err
	}

	rec.Converged = converged != 0
	if desc.Valid {
		rec.Description = desc.String
	}
	if err := json.Unmarshal([]byte(probeJSON), &rec.Probe); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal probe: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(timeLayout, finished.String)
	}
	return rec, nil
}
// #endregion list-runs

// #region log-entries
// LogEntries returns the stored log of a run in append order.
func (s *Store) LogEntries(runID string) ([]perceptron.LogEntry, error) {
	rows, err := s.db.Query(
		`SELECT generation, inputs, expected, predicted, weights, bias
		 FROM training_log WHERE run_id = ? ORDER BY seq ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	var entries []perceptron.LogEntry
	for rows.Next() {
		var e perceptron.LogEntry
		var inBlob, wBlob []byte
		var expected, predicted int
		if err := rows.Scan(&e.Generation, &inBlob, &expected, &predicted, &wBlob, &e.Bias); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Inputs = decodeVector(inBlob)
		e.Weights = decodeVector(wBlob)
		e.Expected = perceptron.Label(expected)
		e.Predicted = perceptron.Label(predicted)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion log-entries

// #region helpers
func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
