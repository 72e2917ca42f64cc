package types

import "time"

// MediaType classifies the drive's storage medium
type MediaType string

const (
	MediaRotational MediaType = "rotational"
	MediaSolidState MediaType = "solid-state"
)

// TestPhase identifies one burn-in phase
type TestPhase string

const (
	PhaseSmartShort      TestPhase = "smart-short"
	PhaseDestructiveScan TestPhase = "destructive-scan"
	PhaseSmartExtended   TestPhase = "smart-extended"
)

// Phases lists the burn-in phases in execution order
var Phases = []TestPhase{PhaseSmartShort, PhaseDestructiveScan, PhaseSmartExtended}

// PhaseStatus is the terminal classification of a phase
type PhaseStatus string

const (
	StatusPassed  PhaseStatus = "passed"
	StatusFailed  PhaseStatus = "failed"
	StatusSkipped PhaseStatus = "skipped"
	StatusAborted PhaseStatus = "aborted"
)

// Drive holds the static attributes of the target device.
// Populated once by the capability probe and read-only afterwards.
type Drive struct {
	Device           string
	Model            string
	Serial           string
	Firmware         string
	CapacityBytes    int64
	LogicalBlockSize int
	RotationRPM      int
	Media            MediaType
	SmartAvailable   bool

	// Advertised self-test durations from the SMART capability page,
	// used to size poll intervals and maximum waits. Zero when the
	// drive does not report them.
	ShortTestMinutes    int
	ExtendedTestMinutes int
}

// IsSolidState reports whether the drive uses solid-state media
func (d *Drive) IsSolidState() bool {
	return d.Media == MediaSolidState
}

// PhaseOutcome records the terminal result of one phase
type PhaseOutcome struct {
	Phase     TestPhase
	Status    PhaseStatus
	Elapsed   time.Duration
	Detail    string
	BadBlocks int64 // destructive scan only
}

// Failed reports whether the outcome counts against overall success
func (o PhaseOutcome) Failed() bool {
	return o.Status == StatusFailed || o.Status == StatusAborted
}

// RunReport is the aggregate result of one burn-in invocation
type RunReport struct {
	Device     string
	Model      string
	Serial     string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Outcomes   []PhaseOutcome
}

// Success is true iff no phase failed or aborted
func (r *RunReport) Success() bool {
	for _, o := range r.Outcomes {
		if o.Failed() {
			return false
		}
	}
	return true
}

// Outcome returns the recorded outcome for a phase, if present
func (r *RunReport) Outcome(phase TestPhase) (PhaseOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Phase == phase {
			return o, true
		}
	}
	return PhaseOutcome{}, false
}
