// Package burnin contains the test-phase orchestration core: the
// execution mode gate, the async test poller, one executor per burn-in
// phase, and the sequence controller that drives them.
package burnin

// Gate is the single safety boundary in front of every state-mutating
// device operation. Phase executors never touch hardware except
// through Perform.
type Gate interface {
	// Perform runs the action in live mode. In dry-run mode the
	// action is never executed; the description is logged instead and
	// synthetic success is returned so a fully simulated run can
	// proceed.
	Perform(description string, action func() error) error

	// Live reports whether actions really execute
	Live() bool
}

// LiveGate executes every action
type LiveGate struct{}

func (LiveGate) Perform(description string, action func() error) error { return action() }

func (LiveGate) Live() bool { return true }

// DryRunGate records what would have been performed and never touches
// the device
type DryRunGate struct {
	Logf func(format string, v ...any)
}

func (g DryRunGate) Perform(description string, action func() error) error {
	if g.Logf != nil {
		g.Logf("DRY RUN: would %s", description)
	}
	return nil
}

func (DryRunGate) Live() bool { return false }
