package commands

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"disk-burnin/internal/burnin"
	"disk-burnin/internal/config"
	"disk-burnin/internal/history"
	"disk-burnin/internal/metrics"
	"disk-burnin/internal/report"
	"disk-burnin/internal/smart"
	"disk-burnin/internal/utils"
)

var runCmd = &cobra.Command{
	Use:   "run <device>",
	Short: "Run the full burn-in sequence against a drive (DESTROYS ALL DATA)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBurnin,
}

func runBurnin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	device := args[0]

	tool := smart.NewSmartCtlTool()
	if err := preflight(tool, cfg); err != nil {
		return err
	}

	// The probe is a pure read, so it runs for real even in dry-run
	// mode; probe errors are fatal before any phase starts.
	drive, err := tool.Probe(device)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	logFile, logPath, err := report.OpenRunLog(cfg.LogDir, device, startedAt)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := log.New(io.MultiWriter(os.Stdout, logFile), "", log.LstdFlags)
	logger.Printf("Burn-in of %s (%s, serial %s), log %s", device, drive.Model, drive.Serial, logPath)
	logger.Printf("Media type: %s, capacity %s", drive.Media, utils.FormatBytes(drive.CapacityBytes))
	logger.Printf("Using %s", tool.GetVersion())

	var m *metrics.Metrics
	if cfg.MetricsListen != "" {
		m = metrics.New()
		m.Serve(cfg.MetricsListen)
		logger.Printf("Serving metrics on %s", cfg.MetricsListen)
	}
	m.SetUp(true)
	defer m.SetUp(false)

	var gate burnin.Gate = burnin.LiveGate{}
	if cfg.DryRun {
		gate = burnin.DryRunGate{Logf: logger.Printf}
		logger.Printf("Dry-run mode: no state-mutating command will reach %s", device)
	}

	executors := burnin.NewSuite(tool, gate, cfg, device, m, logger.Printf)
	controller := burnin.NewController(executors, cfg.DryRun, logger.Printf)

	runReport, err := controller.Run(drive)
	if err != nil {
		return err
	}
	for _, outcome := range runReport.Outcomes {
		m.RecordOutcome(device, outcome)
	}

	persistBadBlocks(executors, cfg, device, startedAt, logger)

	if err := report.Write(io.MultiWriter(os.Stdout, logFile), runReport); err != nil {
		return err
	}

	if repo, err := history.NewRepository(cfg.HistoryDB); err != nil {
		logger.Printf("History database unavailable: %v", err)
	} else {
		if _, err := repo.SaveReport(runReport); err != nil {
			logger.Printf("Saving run history: %v", err)
		}
		repo.Close()
	}

	if !runReport.Success() {
		return fmt.Errorf("burn-in of %s finished with failed or aborted phases", device)
	}
	return nil
}

// preflight validates the environment before anything runs
func preflight(tool *smart.SmartCtlTool, cfg *config.Config) error {
	if !tool.IsAvailable() {
		return fmt.Errorf("smartctl not found in PATH")
	}
	if !cfg.DryRun && !utils.IsRoot() {
		return fmt.Errorf("root privileges required for raw device access (or use --dry-run)")
	}
	return nil
}

// persistBadBlocks writes the destructive scan's defect list to its
// own file when nonempty
func persistBadBlocks(executors []burnin.Executor, cfg *config.Config, device string, startedAt time.Time, logger *log.Logger) {
	for _, executor := range executors {
		scanPhase, ok := executor.(*burnin.ScanPhase)
		if !ok {
			continue
		}
		path, err := report.WriteBadBlockList(cfg.LogDir, device, startedAt, scanPhase.BadBlockList())
		if err != nil {
			logger.Printf("Writing bad-block list: %v", err)
		} else if path != "" {
			logger.Printf("Bad-block list written to %s", path)
		}
	}
}
