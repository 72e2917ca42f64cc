package burnin

import (
	"errors"
	"testing"
	"time"
)

func testPoller() *Poller {
	return &Poller{Interval: time.Millisecond, Logf: nil}
}

func TestPoller_StartFailure(t *testing.T) {
	p := testPoller()
	_, err := p.Run(Operation{
		Name:   "test-op",
		Start:  func() error { return errors.New("drive busy") },
		Status: func() Progress { t.Fatal("status must not be called after a failed start"); return Progress{} },
	})

	if !errors.Is(err, ErrStartFailed) {
		t.Fatalf("expected ErrStartFailed, got %v", err)
	}
}

func TestPoller_CompletesAfterProgress(t *testing.T) {
	ticks := 0
	var observed []int
	p := testPoller()
	p.OnTick = func(percent int) { observed = append(observed, percent) }

	result, err := p.Run(Operation{
		Name:  "test-op",
		Start: func() error { return nil },
		Status: func() Progress {
			ticks++
			if ticks < 3 {
				return Progress{Status: PollInProgress, Percent: ticks * 30}
			}
			return Progress{Status: PollPassed, Percent: 100}
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Terminal.Status != PollPassed {
		t.Errorf("expected PollPassed, got %v", result.Terminal.Status)
	}
	if result.Elapsed <= 0 {
		t.Error("elapsed not recorded")
	}
	if len(observed) != 3 {
		t.Errorf("expected 3 tick observations, got %d", len(observed))
	}
}

func TestPoller_FailureIsTerminal(t *testing.T) {
	p := testPoller()
	result, err := p.Run(Operation{
		Name:   "test-op",
		Start:  func() error { return nil },
		Status: func() Progress { return Progress{Status: PollFailed, Detail: "read failure"} },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Terminal.Status != PollFailed {
		t.Errorf("expected PollFailed, got %v", result.Terminal.Status)
	}
}

func TestPoller_DeviceErrorIsTerminal(t *testing.T) {
	p := testPoller()
	result, err := p.Run(Operation{
		Name:   "test-op",
		Start:  func() error { return nil },
		Status: func() Progress { return Progress{Status: PollDeviceError, Detail: "no response"} },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Terminal.Status != PollDeviceError {
		t.Errorf("expected PollDeviceError, got %v", result.Terminal.Status)
	}
}

func TestPoller_Timeout(t *testing.T) {
	p := testPoller()
	p.MaxWait = 5 * time.Millisecond

	result, err := p.Run(Operation{
		Name:   "test-op",
		Start:  func() error { return nil },
		Status: func() Progress { return Progress{Status: PollInProgress, Percent: 10} },
	})

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if result.Terminal.Status != PollInProgress {
		t.Errorf("terminal observation should be the last in-progress status, got %v", result.Terminal.Status)
	}
	if result.Elapsed < p.MaxWait {
		t.Errorf("elapsed %v shorter than max wait %v", result.Elapsed, p.MaxWait)
	}
}
