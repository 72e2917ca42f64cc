package burnin

import (
	"errors"
	"fmt"
	"os"

	"disk-burnin/internal/scan"
	"disk-burnin/pkg/types"
)

// ScanPhase executes the destructive multi-pattern write/verify scan.
// Skipped outright for solid-state media: the patterns target
// rotational failure modes and the writes only burn flash endurance.
type ScanPhase struct {
	gate   Gate
	poller *Poller
	cfg    scan.Config
	policy scan.Policy
	logf   func(format string, v ...any)

	// openTarget opens the device for write-mode scanning; overridden
	// in tests to scan a file
	openTarget func(drive *types.Drive) (scan.Target, int64, func() error, error)

	badBlocks []int64
}

// NewScanPhase builds the destructive scan executor
func NewScanPhase(gate Gate, poller *Poller, cfg scan.Config, policy scan.Policy, logf func(format string, v ...any)) *ScanPhase {
	return &ScanPhase{
		gate:       gate,
		poller:     poller,
		cfg:        cfg,
		policy:     policy,
		logf:       logf,
		openTarget: openBlockDevice,
	}
}

// Phase returns the phase identifier
func (e *ScanPhase) Phase() types.TestPhase { return types.PhaseDestructiveScan }

// BadBlockList returns the sorted defect list from the last run, for
// persistence alongside the report
func (e *ScanPhase) BadBlockList() []int64 { return e.badBlocks }

// Run opens the device through the gate, launches the scanner, and
// polls its progress to a terminal state
func (e *ScanPhase) Run(drive *types.Drive) types.PhaseOutcome {
	if drive.IsSolidState() {
		return types.PhaseOutcome{
			Phase:  types.PhaseDestructiveScan,
			Status: types.StatusSkipped,
			Detail: "solid-state media, write/verify scan not applicable",
		}
	}

	var (
		scanner  *scan.Scanner
		closeDev func() error
	)

	op := Operation{
		Name: string(types.PhaseDestructiveScan),
		Start: func() error {
			description := fmt.Sprintf("open %s for a destructive %d-pattern write/verify scan", drive.Device, len(scan.Patterns))
			return e.gate.Perform(description, func() error {
				dev, size, closer, err := e.openTarget(drive)
				if err != nil {
					return err
				}
				closeDev = closer
				scanner = scan.New(dev, size, e.cfg, e.policy, e.logf)
				if err := scanner.Start(); err != nil {
					scanner = nil
					closer()
					return err
				}
				return nil
			})
		},
		Status: func() Progress {
			if scanner == nil {
				return Progress{Status: PollPassed, Percent: 100, Detail: "simulated"}
			}
			return scanProgress(scanner.Progress())
		},
	}

	result, err := e.poller.Run(op)
	outcome := e.classify(result, err)

	if scanner != nil && outcome.Status != types.StatusAborted {
		// The scan goroutine has finished; on timeout it still owns the
		// device handle, so the handle is deliberately left open there.
		scanner.Wait()
		e.badBlocks = scanner.BadBlockList()
		outcome.BadBlocks = int64(len(e.badBlocks))
		if closeDev != nil {
			if cerr := closeDev(); cerr != nil && e.logf != nil {
				e.logf("Closing %s after scan: %v", drive.Device, cerr)
			}
		}
	}
	return outcome
}

func (e *ScanPhase) classify(result Result, err error) types.PhaseOutcome {
	outcome := types.PhaseOutcome{
		Phase:   types.PhaseDestructiveScan,
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
	}
	return outcome
}

// scanProgress maps a scanner snapshot onto the poller's status enum
func scanProgress(snap scan.Snapshot) Progress {
	detail := fmt.Sprintf("pattern 0x%02X (%d/%d), %d bad blocks",
		scan.Patterns[snap.PatternIndex], snap.PatternIndex+1, len(scan.Patterns), snap.BadBlocks)
	if !snap.Done {
		return Progress{Status: PollInProgress, Percent: snap.Percent, Detail: detail}
	}
	if snap.BadBlocks > 0 {
		return Progress{Status: PollFailed, Percent: snap.Percent, Detail: detail}
	}
	return Progress{Status: PollPassed, Percent: 100, Detail: detail}
}

// openBlockDevice opens the drive write-mode. O_EXCL on a block device
// makes the kernel refuse while any partition is mounted.
func openBlockDevice(drive *types.Drive) (scan.Target, int64, func() error, error) {
	f, err := os.OpenFile(drive.Device, os.O_RDWR|os.O_EXCL, 0)
	if err != nil {
		return nil, 0, nil, err
	}
	size := drive.CapacityBytes
	if size == 0 {
		// Capacity can be absent from the probe on odd bridges; fall
		// back to seeking the device end.
		if end, serr := f.Seek(0, 2); serr == nil {
			size = end
		}
	}
	return f, size, f.Close, nil
}
