package burnin

import (
	"errors"
	"testing"
	"time"

	"disk-burnin/internal/config"
	"disk-burnin/internal/smart"
	"disk-burnin/pkg/types"
)

// stubExecutor returns a canned outcome and records invocation order
type stubExecutor struct {
	phase   types.TestPhase
	outcome types.PhaseOutcome
	order   *[]types.TestPhase
}

func (s *stubExecutor) Phase() types.TestPhase { return s.phase }

func (s *stubExecutor) Run(drive *types.Drive) types.PhaseOutcome {
	*s.order = append(*s.order, s.phase)
	return s.outcome
}

func stubSuite(order *[]types.TestPhase, statuses map[types.TestPhase]types.PhaseStatus) []Executor {
	var executors []Executor
	for _, phase := range types.Phases {
		executors = append(executors, &stubExecutor{
			phase:   phase,
			outcome: types.PhaseOutcome{Phase: phase, Status: statuses[phase]},
			order:   order,
		})
	}
	return executors
}

func TestController_RunsAllPhasesInOrder(t *testing.T) {
	var order []types.TestPhase
	controller := NewController(stubSuite(&order, map[types.TestPhase]types.PhaseStatus{
		types.PhaseSmartShort:      types.StatusPassed,
		types.PhaseDestructiveScan: types.StatusPassed,
		types.PhaseSmartExtended:   types.StatusPassed,
	}), false, nil)

	report, err := controller.Run(rotationalDrive())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Outcomes) != 3 {
		t.Fatalf("expected exactly 3 outcomes, got %d", len(report.Outcomes))
	}
	for i, phase := range types.Phases {
		if order[i] != phase {
			t.Errorf("phase %d ran out of order: got %s, want %s", i, order[i], phase)
		}
	}
	if !report.Success() {
		t.Error("all-passed report must be successful")
	}
}

func TestController_ContinuesPastFailure(t *testing.T) {
	var order []types.TestPhase
	controller := NewController(stubSuite(&order, map[types.TestPhase]types.PhaseStatus{
		types.PhaseSmartShort:      types.StatusFailed,
		types.PhaseDestructiveScan: types.StatusPassed,
		types.PhaseSmartExtended:   types.StatusAborted,
	}), false, nil)

	report, err := controller.Run(rotationalDrive())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A failed phase never stops the sequence: the report must still
	// list all three phases.
	if len(order) != 3 {
		t.Fatalf("expected all 3 phases attempted, got %d", len(order))
	}
	if len(report.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(report.Outcomes))
	}
	if report.Success() {
		t.Error("report with failed and aborted phases must not be successful")
	}
}

func TestController_SingleUse(t *testing.T) {
	var order []types.TestPhase
	controller := NewController(stubSuite(&order, nil), false, nil)

	if _, err := controller.Run(rotationalDrive()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := controller.Run(rotationalDrive()); !errors.Is(err, ErrAlreadyRun) {
		t.Fatalf("expected ErrAlreadyRun, got %v", err)
	}
}

func dryRunConfig() *config.Config {
	return &config.Config{
		BlockSize:         8192,
		Concurrency:       64,
		DryRun:            true,
		PollIntervalShort: time.Millisecond,
		PollIntervalLong:  time.Millisecond,
		MaxWaitShort:      time.Second,
		MaxWaitLong:       time.Second,
		HistoryDB:         "unused.db",
	}
}

// reportShape extracts the phase/status pairs for comparison
func reportShape(r *types.RunReport) []types.PhaseStatus {
	var shape []types.PhaseStatus
	for _, o := range r.Outcomes {
		shape = append(shape, o.Status)
	}
	return shape
}

func TestSuite_DryRunIsDeterministic(t *testing.T) {
	cfg := dryRunConfig()
	tool := smart.NewSmartCtlTool()

	var shapes [][]types.PhaseStatus
	for i := 0; i < 2; i++ {
		gate := DryRunGate{Logf: t.Logf}
		executors := NewSuite(tool, gate, cfg, "/dev/sdx", nil, t.Logf)
		controller := NewController(executors, true, t.Logf)

		report, err := controller.Run(rotationalDrive())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(report.Outcomes) != 3 {
			t.Fatalf("expected 3 outcomes, got %d", len(report.Outcomes))
		}
		if !report.Success() {
			t.Fatalf("simulated run must pass, got %v", reportShape(report))
		}
		shapes = append(shapes, reportShape(report))
	}

	for i := range shapes[0] {
		if shapes[0][i] != shapes[1][i] {
			t.Errorf("simulate runs diverged at phase %d: %s vs %s", i, shapes[0][i], shapes[1][i])
		}
	}
}

func TestSuite_DryRunSkipsScanOnSolidState(t *testing.T) {
	cfg := dryRunConfig()
	executors := NewSuite(smart.NewSmartCtlTool(), DryRunGate{}, cfg, "/dev/sdx", nil, nil)
	controller := NewController(executors, true, nil)

	drive := rotationalDrive()
	drive.Media = types.MediaSolidState
	report, err := controller.Run(drive)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	outcome, ok := report.Outcome(types.PhaseDestructiveScan)
	if !ok {
		t.Fatal("destructive scan missing from report")
	}
	if outcome.Status != types.StatusSkipped {
		t.Errorf("expected skipped scan on solid-state media, got %s", outcome.Status)
	}
	if !report.Success() {
		t.Error("skipped scan must not count against success")
	}
}
