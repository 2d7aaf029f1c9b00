package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/microtex-data/grainmesh/internal/ebsd"
)

// Run records one pipeline execution against a source map.
type Run struct {
	RunID       string   `json:"run_id"`
	SourcePath  string   `json:"source_path"`
	StepSize    float64  `json:"step_size"`
	Cols        int      `json:"cols"`
	Rows        int      `json:"rows"`
	GrainCount  int      `json:"grain_count"`
	VoidCount   int      `json:"void_count"`
	Operations  []string `json:"operations"`
	CreatedAtNs int64    `json:"created_at_ns"`
}

// GrainSummary is one grain's persisted footprint and mean orientation.
type GrainSummary struct {
	GrainID     int        `json:"grain_id"`
	Cells       int        `json:"cells"`
	Area        float64    `json:"area"`
	Orientation ebsd.Euler `json:"orientation"`
}

// RunStore provides persistence for pipeline runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// InsertRun creates a new run in the database.
// If run.RunID is empty, a new UUID is generated.
func (s *RunStore) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = time.Now().UnixNano()
	}

	ops, err := json.Marshal(run.Operations)
	if err != nil {
		return fmt.Errorf("encode operations: %w", err)
	}

	query := `
		INSERT INTO mesh_runs (
			run_id, source_path, step_size, grid_cols, grid_rows,
			grain_count, void_count, operations, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		run.RunID,
		run.SourcePath,
		run.StepSize,
		run.Cols,
		run.Rows,
		run.GrainCount,
		run.VoidCount,
		string(ops),
		run.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	query := `
		SELECT run_id, source_path, step_size, grid_cols, grid_rows,
		       grain_count, void_count, operations, created_at_ns
		FROM mesh_runs
		WHERE run_id = ?
	`

	var run Run
	var ops string

	err := s.db.QueryRow(query, runID).Scan(
		&run.RunID,
		&run.SourcePath,
		&run.StepSize,
		&run.Cols,
		&run.Rows,
		&run.GrainCount,
		&run.VoidCount,
		&ops,
		&run.CreatedAtNs,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if err := json.Unmarshal([]byte(ops), &run.Operations); err != nil {
		return nil, fmt.Errorf("decode operations: %w", err)
	}

	return &run, nil
}

// ListRuns retrieves all runs, newest first.
func (s *RunStore) ListRuns() ([]*Run, error) {
	query := `
		SELECT run_id, source_path, step_size, grid_cols, grid_rows,
		       grain_count, void_count, operations, created_at_ns
		FROM mesh_runs
		ORDER BY created_at_ns DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var ops string

		err := rows.Scan(
			&run.RunID,
			&run.SourcePath,
			&run.StepSize,
			&run.Cols,
			&run.Rows,
			&run.GrainCount,
			&run.VoidCount,
			&ops,
			&run.CreatedAtNs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if err := json.Unmarshal([]byte(ops), &run.Operations); err != nil {
			return nil, fmt.Errorf("decode operations: %w", err)
		}

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs rows: %w", err)
	}

	return runs, nil
}

// InsertGrainSummaries records the per-grain rows for a run in one transaction.
func (s *RunStore) InsertGrainSummaries(runID string, grains []GrainSummary) error {
	if len(grains) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin grain summaries tx: %w", err)
	}

	query := `
		INSERT INTO run_grains (run_id, grain_id, cells, area, phi_1, phi, phi_2)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, g := range grains {
		if _, err := tx.Exec(query,
			runID, g.GrainID, g.Cells, g.Area,
			g.Orientation.Phi1, g.Orientation.Phi, g.Orientation.Phi2,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert grain %d: %w", g.GrainID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grain summaries tx: %w", err)
	}

	return nil
}

// GrainsForRun retrieves the per-grain rows for a run ordered by grain id.
func (s *RunStore) GrainsForRun(runID string) ([]GrainSummary, error) {
	query := `
		SELECT grain_id, cells, area, phi_1, phi, phi_2
		FROM run_grains
		WHERE run_id = ?
		ORDER BY grain_id ASC
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("query grains for run: %w", err)
	}
	defer rows.Close()

	var grains []GrainSummary
	for rows.Next() {
		var g GrainSummary
		if err := rows.Scan(
			&g.GrainID,
			&g.Cells,
			&g.Area,
			&g.Orientation.Phi1,
			&g.Orientation.Phi,
			&g.Orientation.Phi2,
		); err != nil {
			return nil, fmt.Errorf("scan grain row: %w", err)
		}
		grains = append(grains, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grains for run rows: %w", err)
	}

	return grains, nil
}
