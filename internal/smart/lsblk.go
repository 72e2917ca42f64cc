package smart

import (
	"os/exec"
	"strings"

	"disk-burnin/internal/utils"
)

// LsblkTool represents the lsblk CLI tool, used as a fallback
// rotational-media signal when smartctl does not report a rotation rate
type LsblkTool struct{}

// NewLsblkTool creates a new LsblkTool instance
func NewLsblkTool() *LsblkTool {
	return &LsblkTool{}
}

// IsAvailable checks if lsblk is available on the system
func (l *LsblkTool) IsAvailable() bool {
	return utils.CommandExists("lsblk")
}

// GetName returns the tool name
func (l *LsblkTool) GetName() string {
	return "lsblk"
}

// IsRotational reports the ROTA flag for a device. ok is false when
// lsblk is missing, errors, or prints anything other than 0 or 1.
func (l *LsblkTool) IsRotational(device string) (rotational, ok bool) {
	if !l.IsAvailable() {
		return false, false
	}

	output, err := exec.Command("lsblk", "-d", "-n", "-o", "ROTA", device).Output()
	if err != nil {
		return false, false
	}

	switch strings.TrimSpace(string(output)) {
	case "1":
		return true, true
	case "0":
		return false, true
	default:
		return false, false
	}
}
