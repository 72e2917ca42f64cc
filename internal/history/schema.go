package history

// Schema creates the run-history tables
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	device      TEXT NOT NULL,
	model       TEXT,
	serial      TEXT,
	dry_run     INTEGER NOT NULL DEFAULT 0,
	success     INTEGER NOT NULL DEFAULT 0,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS phase_outcomes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     INTEGER NOT NULL REFERENCES runs(id),
	phase      TEXT NOT NULL,
	status     TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	detail     TEXT,
	bad_blocks INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_device ON runs(device);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON phase_outcomes(run_id);
`
