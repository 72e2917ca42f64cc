package burnin

import (
	"time"

	"disk-burnin/internal/config"
	"disk-burnin/internal/metrics"
	"disk-burnin/internal/scan"
	"disk-burnin/internal/smart"
	"disk-burnin/pkg/types"
)

// NewSuite wires the three phase executors in burn-in order from the
// validated configuration. device labels the progress metrics; m may
// be nil when the metrics listener is disabled.
func NewSuite(tool *smart.SmartCtlTool, gate Gate, cfg *config.Config, device string, m *metrics.Metrics, logf func(format string, v ...any)) []Executor {
	shortPoller := &Poller{
		Interval: clampDryRun(gate, cfg.PollIntervalShort),
		MaxWait:  cfg.MaxWaitShort,
		Logf:     logf,
		OnTick:   progressTick(m, device, types.PhaseSmartShort),
	}
	scanPoller := &Poller{
		Interval: clampDryRun(gate, cfg.PollIntervalLong),
		MaxWait:  cfg.MaxWaitLong,
		Logf:     logf,
		OnTick:   progressTick(m, device, types.PhaseDestructiveScan),
	}
	extendedPoller := &Poller{
		Interval: clampDryRun(gate, cfg.PollIntervalLong),
		MaxWait:  cfg.MaxWaitLong,
		Logf:     logf,
		OnTick:   progressTick(m, device, types.PhaseSmartExtended),
	}

	scanCfg := scan.Config{
		BlockSize:   cfg.BlockSize,
		BatchBlocks: cfg.Concurrency,
		Limit:       cfg.ScanLimitBytes(),
	}
	policy := scan.StopOnFirstError
	if cfg.FullPass {
		policy = scan.FullPass
	}

	return []Executor{
		NewSmartShortPhase(tool, gate, shortPoller),
		NewScanPhase(gate, scanPoller, scanCfg, policy, logf),
		NewSmartExtendedPhase(tool, gate, extendedPoller),
	}
}

// clampDryRun shortens poll sleeps for simulated runs; the control
// flow is identical but there is no hardware to wait on
func clampDryRun(gate Gate, interval time.Duration) time.Duration {
	if !gate.Live() && interval > time.Second {
		return time.Second
	}
	return interval
}

func progressTick(m *metrics.Metrics, device string, phase types.TestPhase) func(int) {
	if m == nil {
		return nil
	}
	return func(percent int) {
		m.SetPhaseProgress(device, string(phase), float64(percent))
	}
}
