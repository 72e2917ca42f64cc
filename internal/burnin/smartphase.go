package burnin

import (
	"errors"
	"fmt"
	"time"

	"disk-burnin/internal/smart"
	"disk-burnin/pkg/types"
)

// Executor runs one burn-in phase against a drive and classifies the
// terminal outcome. Phase-level failures are captured in the outcome,
// never returned as errors.
type Executor interface {
	Phase() types.TestPhase
	Run(drive *types.Drive) types.PhaseOutcome
}

// selfTestController is the smartctl surface the SMART phases use
type selfTestController interface {
	StartSelfTest(device string, kind smart.TestKind) error
	SelfTestStatus(device string) (smart.SelfTestProgress, error)
	ErrorLogSummary(device string) string
}

// SmartPhase executes a SMART self-test phase (short or extended)
type SmartPhase struct {
	phase  types.TestPhase
	kind   smart.TestKind
	tool   selfTestController
	gate   Gate
	poller *Poller

	// advertisedMinutes picks the drive-reported routine duration used
	// to widen the configured max wait
	advertisedMinutes func(*types.Drive) int
}

// NewSmartShortPhase builds the SMART short self-test executor
func NewSmartShortPhase(tool selfTestController, gate Gate, poller *Poller) *SmartPhase {
	return &SmartPhase{
		phase:             types.PhaseSmartShort,
		kind:              smart.TestShort,
		tool:              tool,
		gate:              gate,
		poller:            poller,
		advertisedMinutes: func(d *types.Drive) int { return d.ShortTestMinutes },
	}
}

// NewSmartExtendedPhase builds the SMART extended self-test executor
func NewSmartExtendedPhase(tool selfTestController, gate Gate, poller *Poller) *SmartPhase {
	return &SmartPhase{
		phase:             types.PhaseSmartExtended,
		kind:              smart.TestExtended,
		tool:              tool,
		gate:              gate,
		poller:            poller,
		advertisedMinutes: func(d *types.Drive) int { return d.ExtendedTestMinutes },
	}
}

// Phase returns the phase identifier
func (e *SmartPhase) Phase() types.TestPhase { return e.phase }

// Run starts the self-test through the gate and polls the drive until
// the routine completes, errors, or the bounded wait runs out
func (e *SmartPhase) Run(drive *types.Drive) types.PhaseOutcome {
	poller := *e.poller
	poller.MaxWait = widenMaxWait(poller.MaxWait, e.advertisedMinutes(drive))

	op := Operation{
		Name: string(e.phase),
		Start: func() error {
			description := fmt.Sprintf("start SMART %s self-test on %s", e.kind, drive.Device)
			return e.gate.Perform(description, func() error {
				return e.tool.StartSelfTest(drive.Device, e.kind)
			})
		},
		Status: e.statusFunc(drive),
	}

	result, err := poller.Run(op)
	return e.classify(drive, result, err)
}

// statusFunc binds the status probe. A dry run never queries the
// drive; it reports immediate synthetic completion.
func (e *SmartPhase) statusFunc(drive *types.Drive) func() Progress {
	if !e.gate.Live() {
		return func() Progress {
			return Progress{Status: PollPassed, Percent: 100, Detail: "simulated"}
		}
	}
	return func() Progress {
		progress, err := e.tool.SelfTestStatus(drive.Device)
		if err != nil {
			return Progress{Status: PollDeviceError, Detail: err.Error()}
		}
		if progress.InProgress {
			return Progress{Status: PollInProgress, Percent: progress.PercentDone, Detail: progress.Detail}
		}
		if progress.Passed {
			return Progress{Status: PollPassed, Percent: 100, Detail: progress.Detail}
		}
		return Progress{Status: PollFailed, Percent: 100, Detail: progress.Detail}
	}
}

func (e *SmartPhase) classify(drive *types.Drive, result Result, err error) types.PhaseOutcome {
	outcome := types.PhaseOutcome{
		Phase:   e.phase,
		Elapsed: result.Elapsed,
		Detail:  result.Terminal.Detail,
	}

	switch {
	case errors.Is(err, ErrStartFailed):
		outcome.Status = types.StatusFailed
		outcome.Detail = err.Error()
	case errors.Is(err, ErrTimeout):
		outcome.Status = types.StatusAborted
		outcome.Detail = err.Error()
	case result.Terminal.Status == PollPassed:
		outcome.Status = types.StatusPassed
	default:
		outcome.Status = types.StatusFailed
		if e.gate.Live() {
			outcome.Detail = fmt.Sprintf("%s; %s", outcome.Detail, e.tool.ErrorLogSummary(drive.Device))
		}
	}
	return outcome
}

// widenMaxWait extends the configured bound when the drive advertises
// a routine duration that would not fit. Twice the advertised time
// leaves room for a busy drive.
func widenMaxWait(configured time.Duration, advertisedMinutes int) time.Duration {
	if advertisedMinutes <= 0 {
		return configured
	}
	advertised := 2 * time.Duration(advertisedMinutes) * time.Minute
	if configured > 0 && advertised > configured {
		return advertised
	}
	return configured
}
