package burnin

import (
	"errors"
	"time"

	"disk-burnin/pkg/types"
)

// ErrAlreadyRun is returned when a controller is reused
var ErrAlreadyRun = errors.New("burn-in sequence already run")

// controllerState tracks the sequence state machine
type controllerState int

const (
	stateNotStarted controllerState = iota
	stateRunningPhase
	stateCompleted
)

// Controller drives the burn-in phases in fixed order. It never stops
// the sequence on a failed phase: the drive is headed for evaluation
// either way, and a complete diagnostic record is worth more than an
// early exit.
type Controller struct {
	executors []Executor
	logf      func(format string, v ...any)

	state   controllerState
	current int
	dryRun  bool
}

// NewController creates a single-use sequence controller. The executor
// order is the phase order.
func NewController(executors []Executor, dryRun bool, logf func(format string, v ...any)) *Controller {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Controller{
		executors: executors,
		logf:      logf,
		dryRun:    dryRun,
	}
}

// Run executes every phase against the drive and aggregates the
// outcomes. Exactly one phase is in flight at any moment; a later
// phase never starts before the earlier one reaches a terminal state.
func (c *Controller) Run(drive *types.Drive) (*types.RunReport, error) {
	if c.state != stateNotStarted {
		return nil, ErrAlreadyRun
	}

	report := &types.RunReport{
		Device:    drive.Device,
		Model:     drive.Model,
		Serial:    drive.Serial,
		DryRun:    c.dryRun,
		StartedAt: time.Now(),
	}

	for i, executor := range c.executors {
		c.state = stateRunningPhase
		c.current = i
		c.logf("Phase %d/%d: %s", i+1, len(c.executors), executor.Phase())

		outcome := executor.Run(drive)
		report.Outcomes = append(report.Outcomes, outcome)

		c.logf("Phase %d/%d: %s finished: %s (%s)",
			i+1, len(c.executors), outcome.Phase, outcome.Status, outcome.Elapsed.Round(time.Second))
	}

	c.state = stateCompleted
	report.FinishedAt = time.Now()
	return report, nil
}
