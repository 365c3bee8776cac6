// Package store records batch analysis runs in a SQLite database so results
// can be compared across configurations and over time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/shape-tools-mcp/internal/analysis"
	"github.com/ironsheep/shape-tools-mcp/internal/detection"
)

// ErrRunNotFound is returned by Records for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is one invocation of the batch analyzer.
type Run struct {
	ID        string
	StartedAt time.Time
	Backend   string

	// Config is the JSON encoding of the configuration used.
	Config string

	Files []File
}

// File is the outcome for one image of a run.
type File struct {
	Path     string
	Error    string
	Duration time.Duration
	Records  []analysis.ShapeRecord
}

// RunSummary is a row of the run listing.
type RunSummary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Backend   string    `json:"backend"`
	Files     int       `json:"files"`
	Failed    int       `json:"failed"`
	Objects   int       `json:"objects"`
}

// RecordRow is one stored shape record with the file it came from.
type RecordRow struct {
	Path        string           `json:"path"`
	Object      int              `json:"object"`
	Shape       detection.Shape  `json:"shape"`
	Area        float64          `json:"area"`
	Perimeter   float64          `json:"perimeter"`
	Circularity float64          `json:"circularity"`
	Vertices    int              `json:"vertices"`
	Bounds      detection.Bounds `json:"bounds"`
}

// NewRun builds a Run from batch results. cfg is stored as JSON.
func NewRun(backend string, cfg any, results []analysis.FileResult) (*Run, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Backend:   backend,
		Config:    string(data),
		Files:     make([]File, 0, len(results)),
	}
	for _, fr := range results {
		f := File{Path: fr.Path, Duration: fr.Duration}
		if fr.Err != nil {
			f.Error = fr.Err.Error()
		} else if fr.Result != nil {
			f.Records = fr.Result.Records
		}
		run.Files = append(run.Files, f)
	}
	return run, nil
}

// Store is a SQLite-backed run log. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := []struct {
		name  string
		query string
	}{
		{"runs", `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			backend TEXT NOT NULL,
			config TEXT NOT NULL
		);`},
		{"files", `
		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			path TEXT NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			objects INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);`},
		{"records", `
		CREATE TABLE IF NOT EXISTS records (
			file_id INTEGER NOT NULL,
			object INTEGER NOT NULL,
			shape TEXT NOT NULL,
			area REAL NOT NULL,
			perimeter REAL NOT NULL,
			circularity REAL NOT NULL,
			vertices INTEGER NOT NULL,
			x1 INTEGER NOT NULL,
			y1 INTEGER NOT NULL,
			x2 INTEGER NOT NULL,
			y2 INTEGER NOT NULL,
			PRIMARY KEY (file_id, object),
			FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
		);`},
	}
	for _, t := range schema {
		if _, err := s.db.Exec(t.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun writes run and all its files and records in one transaction. A
// run without an ID is given a new one.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, backend, config) VALUES (?, ?, ?, ?)",
		run.ID, run.StartedAt.UTC(), run.Backend, run.Config,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range run.Files {
		var errText sql.NullString
		if f.Error != "" {
			errText = sql.NullString{String: f.Error, Valid: true}
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO files (run_id, path, error, duration_ms, objects) VALUES (?, ?, ?, ?, ?)",
			run.ID, f.Path, errText, f.Duration.Milliseconds(), len(f.Records),
		)
		if err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
		fileID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read file id: %w", err)
		}

		for _, rec := range f.Records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (file_id, object, shape, area, perimeter, circularity, vertices, x1, y1, x2, y2)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				fileID, rec.Index, string(rec.Label), rec.Area, rec.Perimeter, rec.Circularity, rec.Vertices,
				rec.Bounds.X1, rec.Bounds.Y1, rec.Bounds.X2, rec.Bounds.Y2,
			); err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Runs lists every stored run, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.backend,
			COUNT(f.id),
			COALESCE(SUM(CASE WHEN f.error IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(f.objects), 0)
		FROM runs r
		LEFT JOIN files f ON f.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.ID, &rs.StartedAt, &rs.Backend, &rs.Files, &rs.Failed, &rs.Objects); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, rs)
	}
	return runs, rows.Err()
}

// Records returns the shape records of a run in file order, then discovery
// order. Returns ErrRunNotFound for an unknown id.
func (s *Store) Records(ctx context.Context, runID string) ([]RecordRow, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.path, r.object, r.shape, r.area, r.perimeter, r.circularity, r.vertices, r.x1, r.y1, r.x2, r.y2
		FROM records r
		JOIN files f ON f.id = r.file_id
		WHERE f.run_id = ?
		ORDER BY f.id, r.object`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	out := make([]RecordRow, 0)
	for rows.Next() {
		var rr RecordRow
		var shape string
		if err := rows.Scan(&rr.Path, &rr.Object, &shape, &rr.Area, &rr.Perimeter, &rr.Circularity, &rr.Vertices,
			&rr.Bounds.X1, &rr.Bounds.Y1, &rr.Bounds.X2, &rr.Bounds.Y2); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rr.Shape = detection.Shape(shape)
		out = append(out, rr)
	}
	return out, rows.Err()
}
