// Package smart wraps the smartctl CLI tool for the capability probe
// and SMART self-test control.
package smart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"disk-burnin/internal/utils"
	"disk-burnin/pkg/types"
)

// Pre-run errors; both are fatal to the whole invocation.
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrProbeFailed    = errors.New("probe failed")
)

// smartctl exit status is a bitmask; bit 1 means the device could not
// be opened.
const exitDeviceOpenFailed = 1 << 1

// TestKind selects the SMART self-test routine to start
type TestKind string

const (
	TestShort    TestKind = "short"
	TestExtended TestKind = "long"
)

// SelfTestProgress is the decoded self-test status of a drive
type SelfTestProgress struct {
	InProgress  bool
	PercentDone int
	Passed      bool
	Detail      string
}

// SmartCtlTool represents the smartctl CLI tool
type SmartCtlTool struct{}

// NewSmartCtlTool creates a new SmartCtlTool instance
func NewSmartCtlTool() *SmartCtlTool {
	return &SmartCtlTool{}
}

// IsAvailable checks if smartctl is available on the system
func (s *SmartCtlTool) IsAvailable() bool {
	return utils.CommandExists("smartctl")
}

// GetVersion returns the smartctl version
func (s *SmartCtlTool) GetVersion() string {
	if !s.IsAvailable() {
		return ""
	}

	version, err := utils.GetToolVersion("smartctl", "--version")
	if err != nil {
		return "unknown"
	}
	return version
}

// GetName returns the tool name
func (s *SmartCtlTool) GetName() string {
	return "smartctl"
}

// Probe queries the static attributes of a device. Pure read; probing
// the same drive twice without intervening writes yields an identical
// Drive record.
func (s *SmartCtlTool) Probe(device string) (*types.Drive, error) {
	if _, err := os.Stat(device); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
	}

	output, err := exec.Command("smartctl", "-i", "-j", device).Output()
	if err != nil && len(output) == 0 {
		if isDeviceOpenError(err) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
		}
		return nil, fmt.Errorf("%w: smartctl -i %s: %v", ErrProbeFailed, device, err)
	}

	var smartData types.SmartCtlOutput
	if err := json.Unmarshal(output, &smartData); err != nil {
		return nil, fmt.Errorf("%w: parsing smartctl JSON for %s: %v", ErrProbeFailed, device, err)
	}
	if smartData.SmartCtl.ExitStatus&exitDeviceOpenFailed != 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrDeviceNotFound, device, firstMessage(&smartData))
	}
	if smartData.ModelName == "" && smartData.SerialNumber == "" {
		return nil, fmt.Errorf("%w: smartctl returned no identity for %s", ErrProbeFailed, device)
	}

	drive := &types.Drive{
		Device:              device,
		Model:               smartData.ModelName,
		Serial:              smartData.SerialNumber,
		Firmware:            smartData.FirmwareVersion,
		CapacityBytes:       smartData.UserCapacity.Bytes,
		LogicalBlockSize:    smartData.LogicalBlockSize,
		SmartAvailable:      smartData.SmartSupport.Available,
		ShortTestMinutes:    smartData.AtaSmartData.SelfTest.PollingMinutes.Short,
		ExtendedTestMinutes: smartData.AtaSmartData.SelfTest.PollingMinutes.Extended,
	}
	drive.Media, drive.RotationRPM = s.detectMedia(&smartData, device)

	return drive, nil
}

// detectMedia classifies the drive medium. rotation_rate > 0 is
// rotational, an explicit 0 (or the NVMe protocol) is solid-state.
// When smartctl gives no signal, lsblk's ROTA column is consulted;
// absent both, the conservative default is rotational so the
// destructive scan still runs.
func (s *SmartCtlTool) detectMedia(smartData *types.SmartCtlOutput, device string) (types.MediaType, int) {
	if strings.EqualFold(smartData.Device.Protocol, "nvme") {
		return types.MediaSolidState, 0
	}
	if smartData.RotationRate != nil {
		if *smartData.RotationRate > 0 {
			return types.MediaRotational, *smartData.RotationRate
		}
		return types.MediaSolidState, 0
	}

	if rotational, ok := NewLsblkTool().IsRotational(device); ok {
		if rotational {
			return types.MediaRotational, 0
		}
		return types.MediaSolidState, 0
	}

	log.Printf("No media-type signal for %s, assuming rotational", device)
	return types.MediaRotational, 0
}

// StartSelfTest asks the drive to begin a SMART self-test. The drive
// rejects the request when a test is already running or the routine is
// unsupported.
func (s *SmartCtlTool) StartSelfTest(device string, kind TestKind) error {
	output, err := exec.Command("smartctl", "-t", string(kind), device).CombinedOutput()
	if err != nil {
		return fmt.Errorf("smartctl -t %s %s: %v: %s", kind, device, err, firstLine(output))
	}
	return nil
}

// SelfTestStatus reads the drive's current self-test status block
func (s *SmartCtlTool) SelfTestStatus(device string) (SelfTestProgress, error) {
	output, err := exec.Command("smartctl", "-c", "-j", device).Output()
	if err != nil && len(output) == 0 {
		return SelfTestProgress{}, fmt.Errorf("smartctl -c %s: %v", device, err)
	}

	var smartData types.SmartCtlOutput
	if err := json.Unmarshal(output, &smartData); err != nil {
		return SelfTestProgress{}, fmt.Errorf("parsing smartctl status JSON for %s: %v", device, err)
	}

	return decodeSelfTestStatus(&smartData), nil
}

// ErrorLogSummary returns a short diagnostic line from the drive's
// SMART error and self-test logs, used as failure detail.
func (s *SmartCtlTool) ErrorLogSummary(device string) string {
	output, err := exec.Command("smartctl", "-l", "error", "-l", "selftest", "-j", device).Output()
	if err != nil && len(output) == 0 {
		return fmt.Sprintf("error log unavailable: %v", err)
	}

	var smartData types.SmartCtlOutput
	if err := json.Unmarshal(output, &smartData); err != nil {
		return fmt.Sprintf("error log unparseable: %v", err)
	}

	summary := fmt.Sprintf("%d logged ATA errors", smartData.AtaSmartErrorLog.Summary.Count)
	if table := smartData.AtaSmartSelfTestLog.Standard.Table; len(table) > 0 {
		last := table[0] // most recent entry first
		summary += fmt.Sprintf("; last self-test: %s (%s)", last.Status.String, last.Type.String)
	}
	return summary
}

// decodeSelfTestStatus maps the raw status block to SelfTestProgress
func decodeSelfTestStatus(smartData *types.SmartCtlOutput) SelfTestProgress {
	status := smartData.AtaSmartData.SelfTest.Status
	if smartData.SelfTestInProgress() {
		return SelfTestProgress{
			InProgress:  true,
			PercentDone: 100 - status.RemainingPercent,
			Detail:      status.String,
		}
	}
	return SelfTestProgress{
		Passed: status.Passed,
		Detail: status.String,
	}
}

// isDeviceOpenError checks the smartctl exit status bitmask carried on
// a failed exec
func isDeviceOpenError(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()&exitDeviceOpenFailed != 0
	}
	return false
}

func firstMessage(smartData *types.SmartCtlOutput) string {
	if len(smartData.SmartCtl.Messages) > 0 {
		return smartData.SmartCtl.Messages[0].String
	}
	return "no detail from smartctl"
}

func firstLine(output []byte) string {
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "smartctl ") && !strings.HasPrefix(line, "Copyright") {
			return line
		}
	}
	return ""
}
