package instance

import "github.com/mesosphere/marathon-go/pkg/clock"

// StatusValue is a position in the instance status lattice.
type StatusValue int

const (
	Created StatusValue = iota
	Reserved
	Staging
	Starting
	Running
	Killing
	Killed
	Failed
	Finished
	Gone
	Dropped
	Unreachable
	Unknown
	Error
)

var statusNames = map[StatusValue]string{
	Created: "Created", Reserved: "Reserved", Staging: "Staging",
	Starting: "Starting", Running: "Running", Killing: "Killing",
	Killed: "Killed", Failed: "Failed", Finished: "Finished",
	Gone: "Gone", Dropped: "Dropped", Unreachable: "Unreachable",
	Unknown: "Unknown", Error: "Error",
}

func (s StatusValue) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "Invalid"
}

// IsTerminal reports whether an ephemeral task in this status is destroyed.
func (s StatusValue) IsTerminal() bool {
	switch s {
	case Finished, Failed, Killed, Gone, Dropped, Error:
		return true
	default:
		return false
	}
}

// Status is the point-in-time status of an instance or task.
//
// lastChanged advances only when Value itself transitions; lastUpdated
// advances on every observation, including a re-observation of the same
// Value (resolves the source's "lastUpdated == lastChanged?" TODO — see
// DESIGN.md Open Question 2).
type Status struct {
	Value          StatusValue
	RunSpecVersion string
	Healthy        *bool
	LastChanged    int64 // unix nano, via clock.Clock
	LastUpdated    int64
}

// Observe returns the Status that results from observing newValue at now;
// LastChanged only moves if newValue differs from the current Value.
func (s Status) Observe(clk clock.Clock, newValue StatusValue, healthy *bool) Status {
	now := clk.Now().UnixNano()
	next := s
	next.Value = newValue
	next.Healthy = healthy
	next.LastUpdated = now
	if newValue != s.Value {
		next.LastChanged = now
	}
	return next
}

// NewStatus creates the initial Status for a freshly created task/instance.
func NewStatus(clk clock.Clock, value StatusValue, runSpecVersion string) Status {
	now := clk.Now().UnixNano()
	return Status{Value: value, RunSpecVersion: runSpecVersion, LastChanged: now, LastUpdated: now}
}
