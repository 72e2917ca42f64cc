package history

import (
	"path/filepath"
	"testing"
	"time"

	"disk-burnin/pkg/types"
)

func testReport() *types.RunReport {
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &types.RunReport{
		Device:     "/dev/sdb",
		Model:      "TESTDISK 4000",
		Serial:     "WX123",
		StartedAt:  started,
		FinishedAt: started.Add(9 * time.Hour),
		Outcomes: []types.PhaseOutcome{
			{Phase: types.PhaseSmartShort, Status: types.StatusPassed, Elapsed: 2 * time.Minute},
			{Phase: types.PhaseDestructiveScan, Status: types.StatusFailed, Elapsed: 8 * time.Hour, Detail: "pattern 0xAA", BadBlocks: 12},
			{Phase: types.PhaseSmartExtended, Status: types.StatusPassed, Elapsed: 55 * time.Minute},
		},
	}
}

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_SaveAndList(t *testing.T) {
	repo := openTestRepo(t)

	runID, err := repo.SaveReport(testReport())
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected nonzero run id")
	}

	runs, err := repo.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.Device != "/dev/sdb" || run.Model != "TESTDISK 4000" || run.Serial != "WX123" {
		t.Errorf("run identity mismatch: %+v", run)
	}
	if run.Success {
		t.Error("run with a failed phase must not be stored as success")
	}
	if run.DryRun {
		t.Error("live run stored as dry-run")
	}
}

func TestRepository_RunOutcomesRoundTrip(t *testing.T) {
	repo := openTestRepo(t)

	report := testReport()
	runID, err := repo.SaveReport(report)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	outcomes, err := repo.RunOutcomes(runID)
	if err != nil {
		t.Fatalf("RunOutcomes: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}

	for i, want := range report.Outcomes {
		got := outcomes[i]
		if got.Phase != want.Phase || got.Status != want.Status {
			t.Errorf("outcome %d: got %s/%s, want %s/%s", i, got.Phase, got.Status, want.Phase, want.Status)
		}
		if got.Elapsed != want.Elapsed {
			t.Errorf("outcome %d elapsed: got %v, want %v", i, got.Elapsed, want.Elapsed)
		}
	}
	if outcomes[1].BadBlocks != 12 {
		t.Errorf("bad blocks: got %d, want 12", outcomes[1].BadBlocks)
	}
	if outcomes[1].Detail != "pattern 0xAA" {
		t.Errorf("detail: got %q", outcomes[1].Detail)
	}
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := openTestRepo(t)

	older := testReport()
	newer := testReport()
	newer.StartedAt = older.StartedAt.Add(24 * time.Hour)
	newer.Device = "/dev/sdc"

	if _, err := repo.SaveReport(older); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if _, err := repo.SaveReport(newer); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	runs, err := repo.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Device != "/dev/sdc" {
		t.Errorf("expected newest run first, got %s", runs[0].Device)
	}
}
