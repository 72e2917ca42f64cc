// Package report renders the run report and persists the burn-in
// artifacts: the append-only run log and the bad-block list.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"disk-burnin/internal/utils"
	"disk-burnin/pkg/errors"
	"disk-burnin/pkg/types"
)

// deviceStem turns "/dev/sdb" into "sdb" for use in file names
func deviceStem(device string) string {
	stem := filepath.Base(device)
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "device"
	}
	return stem
}

// OpenRunLog creates the append-only per-run log file and returns it
// with its path
func OpenRunLog(logDir, device string, startedAt time.Time) (*os.File, string, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, "", errors.Wrap(err, "creating log directory")
	}

	name := fmt.Sprintf("burnin-%s-%s.log", deviceStem(device), startedAt.Format("20060102-150405"))
	path := filepath.Join(logDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", errors.Wrap(err, "opening run log")
	}
	return f, path, nil
}

// WriteBadBlockList persists the defect list to its own file when
// nonempty. Returns the written path, or "" when there was nothing to
// write.
func WriteBadBlockList(logDir, device string, startedAt time.Time, blocks []int64) (string, error) {
	if len(blocks) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating log directory")
	}

	name := fmt.Sprintf("badblocks-%s-%s.txt", deviceStem(device), startedAt.Format("20060102-150405"))
	path := filepath.Join(logDir, name)

	var sb strings.Builder
	for _, block := range blocks {
		fmt.Fprintf(&sb, "%d\n", block)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", errors.Wrap(err, "writing bad-block list")
	}
	return path, nil
}

// Render formats the run report for humans
func Render(r *types.RunReport) string {
	var sb strings.Builder

	mode := "live"
	if r.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&sb, "Burn-in report for %s (%s %s), %s\n", r.Device, r.Model, r.Serial, mode)
	fmt.Fprintf(&sb, "Started  %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Finished %s\n\n", r.FinishedAt.Format(time.RFC3339))

	for _, o := range r.Outcomes {
		fmt.Fprintf(&sb, "  %-17s %-8s %10s", o.Phase, strings.ToUpper(string(o.Status)), o.Elapsed.Round(time.Second))
		if o.Phase == types.PhaseDestructiveScan && o.Status != types.StatusSkipped {
			fmt.Fprintf(&sb, "  %d bad blocks", o.BadBlocks)
		}
		if o.Detail != "" {
			fmt.Fprintf(&sb, "  (%s)", o.Detail)
		}
		sb.WriteByte('\n')
	}

	verdict := "PASSED"
	if !r.Success() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&sb, "\nOverall: %s\n", verdict)
	return sb.String()
}

// Write renders the report to w
func Write(w io.Writer, r *types.RunReport) error {
	_, err := io.WriteString(w, Render(r))
	return errors.Wrap(err, "writing report")
}

// DescribeDrive formats the probed drive attributes for humans
func DescribeDrive(d *types.Drive) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Device:     %s\n", d.Device)
	fmt.Fprintf(&sb, "Model:      %s\n", d.Model)
	fmt.Fprintf(&sb, "Serial:     %s\n", d.Serial)
	if d.Firmware != "" {
		fmt.Fprintf(&sb, "Firmware:   %s\n", d.Firmware)
	}
	fmt.Fprintf(&sb, "Capacity:   %s\n", utils.FormatBytes(d.CapacityBytes))
	if d.LogicalBlockSize > 0 {
		fmt.Fprintf(&sb, "Block size: %d\n", d.LogicalBlockSize)
	}
	media := string(d.Media)
	if d.RotationRPM > 0 {
		media = fmt.Sprintf("%s (%d rpm)", media, d.RotationRPM)
	}
	fmt.Fprintf(&sb, "Media:      %s\n", media)
	fmt.Fprintf(&sb, "SMART:      available=%v", d.SmartAvailable)
	if d.ShortTestMinutes > 0 || d.ExtendedTestMinutes > 0 {
		fmt.Fprintf(&sb, ", short test %d min, extended test %d min", d.ShortTestMinutes, d.ExtendedTestMinutes)
	}
	sb.WriteByte('\n')
	return sb.String()
}
