// Package history persists burn-in run reports to a sqlite database
// so past results for a drive survive beyond the log files.
package history

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"disk-burnin/pkg/errors"
	"disk-burnin/pkg/types"
)

// Run is one stored burn-in invocation
type Run struct {
	ID         int64
	Device     string
	Model      string
	Serial     string
	DryRun     bool
	Success    bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// Repository provides database operations for run history
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the history database
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history database")
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveReport stores a run report with its phase outcomes and returns
// the run id
func (r *Repository) SaveReport(report *types.RunReport) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO runs (device, model, serial, dry_run, success, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Device, report.Model, report.Serial,
		boolInt(report.DryRun), boolInt(report.Success()),
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert run")
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get run id")
	}

	for _, o := range report.Outcomes {
		_, err := tx.Exec(
			`INSERT INTO phase_outcomes (run_id, phase, status, elapsed_ms, detail, bad_blocks)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, string(o.Phase), string(o.Status), o.Elapsed.Milliseconds(), o.Detail, o.BadBlocks)
		if err != nil {
			return 0, errors.Wrap(err, "failed to insert phase outcome")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit run")
	}
	return runID, nil
}

// ListRuns returns stored runs, newest first
func (r *Repository) ListRuns() ([]Run, error) {
	rows, err := r.db.Query(
		`SELECT id, device, model, serial, dry_run, success, started_at, finished_at
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var model, serial sql.NullString
		var dryRun, success int
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.Device, &model, &serial,
			&dryRun, &success, &startedAt, &finishedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		run.Model = model.String
		run.Serial = serial.String
		run.DryRun = dryRun != 0
		run.Success = success != 0
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "rows error")
}

// RunOutcomes returns the stored phase outcomes for a run, in phase
// order
func (r *Repository) RunOutcomes(runID int64) ([]types.PhaseOutcome, error) {
	rows, err := r.db.Query(
		`SELECT phase, status, elapsed_ms, detail, bad_blocks
		 FROM phase_outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query outcomes")
	}
	defer rows.Close()

	var outcomes []types.PhaseOutcome
	for rows.Next() {
		var o types.PhaseOutcome
		var phase, status string
		var detail sql.NullString
		var elapsedMs int64

		if err := rows.Scan(&phase, &status, &elapsedMs, &detail, &o.BadBlocks); err != nil {
			return nil, errors.Wrap(err, "failed to scan outcome")
		}
		o.Phase = types.TestPhase(phase)
		o.Status = types.PhaseStatus(status)
		o.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		o.Detail = detail.String
		outcomes = append(outcomes, o)
	}
	return outcomes, errors.Wrap(rows.Err(), "rows error")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
