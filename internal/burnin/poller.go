package burnin

import (
	"errors"
	"fmt"
	"time"
)

// Poll-loop errors. Both are phase-terminal, never process-fatal: the
// sequence controller records them and moves on.
var (
	ErrStartFailed = errors.New("start failed")
	ErrTimeout     = errors.New("timeout")
)

// PollStatus is the classification a status probe reports
type PollStatus int

const (
	PollInProgress PollStatus = iota
	PollPassed
	PollFailed
	PollDeviceError
)

// Progress is one observation of a running hardware operation
type Progress struct {
	Status  PollStatus
	Percent int
	Detail  string
}

// Operation binds a phase-specific start/status pair for the poller.
// Start must route any state-mutating work through the gate.
type Operation struct {
	Name   string
	Start  func() error
	Status func() Progress
}

// Result is the terminal observation of one polled operation
type Result struct {
	Terminal Progress
	Elapsed  time.Duration
}

// pollState is the transient per-phase wait state, owned by the poller
// and discarded when the phase ends
type pollState struct {
	elapsed     time.Duration
	lastPercent int
	terminal    bool
}

// Poller drives one long-running hardware operation to completion by
// sleeping a fixed interval between status probes. The interval scales
// with the expected operation duration (seconds to minutes for a SMART
// short test, minutes for extended or destructive work) and comes from
// configuration, never a call site.
type Poller struct {
	Interval time.Duration
	MaxWait  time.Duration // 0 means wait forever
	Logf     func(format string, v ...any)
	OnTick   func(percent int) // observational hook, e.g. a metrics gauge
}

// Run starts the operation and polls it to a terminal state.
// Completed and device-error outcomes come back in Result; a rejected
// start wraps ErrStartFailed and an exceeded MaxWait wraps ErrTimeout.
func (p *Poller) Run(op Operation) (Result, error) {
	if err := op.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrStartFailed, op.Name, err)
	}

	started := time.Now()
	var state pollState

	for !state.terminal {
		time.Sleep(p.Interval)

		prog := op.Status()
		state.elapsed = time.Since(started)
		state.lastPercent = prog.Percent

		p.logf("%s: %d%% (%s), elapsed %s", op.Name, prog.Percent, prog.Detail, state.elapsed.Round(time.Second))
		if p.OnTick != nil {
			p.OnTick(prog.Percent)
		}

		if prog.Status != PollInProgress {
			state.terminal = true
			return Result{Terminal: prog, Elapsed: state.elapsed}, nil
		}

		if p.MaxWait > 0 && state.elapsed >= p.MaxWait {
			state.terminal = true
			return Result{Terminal: prog, Elapsed: state.elapsed},
				fmt.Errorf("%w: %s did not complete within %s", ErrTimeout, op.Name, p.MaxWait)
		}
	}
	return Result{}, nil
}

func (p *Poller) logf(format string, v ...any) {
	if p.Logf != nil {
		p.Logf(format, v...)
	}
}
