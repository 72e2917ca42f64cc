package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"disk-burnin/pkg/types"
)

func sampleReport() *types.RunReport {
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &types.RunReport{
		Device:     "/dev/sdb",
		Model:      "TESTDISK 4000",
		Serial:     "WX123",
		StartedAt:  started,
		FinishedAt: started.Add(9 * time.Hour),
		Outcomes: []types.PhaseOutcome{
			{Phase: types.PhaseSmartShort, Status: types.StatusPassed, Elapsed: 2 * time.Minute},
			{Phase: types.PhaseDestructiveScan, Status: types.StatusFailed, Elapsed: 8 * time.Hour, BadBlocks: 3, Detail: "pattern 0xAA"},
			{Phase: types.PhaseSmartExtended, Status: types.StatusAborted, Detail: "timeout"},
		},
	}
}

func TestRender_ListsEveryPhase(t *testing.T) {
	text := Render(sampleReport())

	for _, phase := range types.Phases {
		if !strings.Contains(text, string(phase)) {
			t.Errorf("report missing phase %s:\n%s", phase, text)
		}
	}
	if !strings.Contains(text, "3 bad blocks") {
		t.Errorf("report missing bad-block count:\n%s", text)
	}
	if !strings.Contains(text, "Overall: FAILED") {
		t.Errorf("report missing failed verdict:\n%s", text)
	}
}

func TestRender_SuccessVerdict(t *testing.T) {
	r := sampleReport()
	r.Outcomes = []types.PhaseOutcome{
		{Phase: types.PhaseSmartShort, Status: types.StatusPassed},
		{Phase: types.PhaseDestructiveScan, Status: types.StatusSkipped},
		{Phase: types.PhaseSmartExtended, Status: types.StatusPassed},
	}
	r.DryRun = true

	text := Render(r)
	if !strings.Contains(text, "Overall: PASSED") {
		t.Errorf("skipped phases must not fail the run:\n%s", text)
	}
	if !strings.Contains(text, "dry run") {
		t.Errorf("dry-run mode missing from header:\n%s", text)
	}
}

func TestOpenRunLog(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	f, path, err := OpenRunLog(dir, "/dev/sdb", started)
	if err != nil {
		t.Fatalf("OpenRunLog: %v", err)
	}
	defer f.Close()

	if !strings.Contains(path, "burnin-sdb-20240601-100000.log") {
		t.Errorf("unexpected log path %q", path)
	}
	if _, err := f.WriteString("hello\n"); err != nil {
		t.Fatalf("writing log: %v", err)
	}
}

func TestWriteBadBlockList(t *testing.T) {
	dir := t.TempDir()
	started := time.Now()

	path, err := WriteBadBlockList(dir, "/dev/sdb", started, nil)
	if err != nil {
		t.Fatalf("WriteBadBlockList(empty): %v", err)
	}
	if path != "" {
		t.Errorf("empty defect list must not create a file, got %q", path)
	}

	path, err = WriteBadBlockList(dir, "/dev/sdb", started, []int64{7, 42, 512})
	if err != nil {
		t.Fatalf("WriteBadBlockList: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(data) != "7\n42\n512\n" {
		t.Errorf("unexpected contents %q", data)
	}
}

func TestDescribeDrive(t *testing.T) {
	text := DescribeDrive(&types.Drive{
		Device:              "/dev/sdb",
		Model:               "TESTDISK 4000",
		Serial:              "WX123",
		CapacityBytes:       4 << 40,
		Media:               types.MediaRotational,
		RotationRPM:         7200,
		SmartAvailable:      true,
		ShortTestMinutes:    2,
		ExtendedTestMinutes: 255,
	})

	for _, want := range []string{"TESTDISK 4000", "WX123", "7200 rpm", "4.0 TiB", "short test 2 min"} {
		if !strings.Contains(text, want) {
			t.Errorf("drive description missing %q:\n%s", want, text)
		}
	}
}
