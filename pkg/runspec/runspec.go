// Package runspec defines the RunSpec tagged union: the App and Pod
// variants operators submit, along with their shared sub-types (endpoints,
// health checks, volume requests, placement constraints).
package runspec

import (
	"fmt"
	"time"

	"github.com/mesosphere/marathon-go/pkg/ledger"
)

// Kind discriminates the RunSpec tagged union.
type Kind int

const (
	KindApp Kind = iota
	KindPod
)

func (k Kind) String() string {
	if k == KindPod {
		return "pod"
	}
	return "app"
}

// Id is a hierarchical run-spec path, e.g. "/group/app".
type Id string

// Endpoint is a named network endpoint a container exposes, with an
// optional requested host port.
type Endpoint struct {
	Name     string
	HostPort *uint32 // nil means no host port requested; a pointer to 0 means "any"
	Protocol string  // "tcp" (default) or "udp"
}

// HasHostPortRequest reports whether this endpoint asks for a host port at
// all: either a specific value or "any" (a non-nil pointer to zero).
func (e Endpoint) HasHostPortRequest() bool {
	return e.HostPort != nil
}

// HealthCheck is either an endpoint-relative check or a bare command line.
type HealthCheck struct {
	EndpointName string // non-empty for endpoint-based checks
	Command      string // non-empty for command-line checks
}

func (h HealthCheck) IsCommand() bool {
	return h.Command != ""
}

// VolumeRequest is a persistent-volume demand of a stateful app.
type VolumeRequest struct {
	Name        string
	Size        float64
	DiskSource  ledger.DiskSource
	ContainerPath string
}

// ConstraintOperator names the supported placement-constraint operators.
type ConstraintOperator string

const (
	ConstraintUnique    ConstraintOperator = "UNIQUE"
	ConstraintCluster   ConstraintOperator = "CLUSTER"
	ConstraintGroupBy   ConstraintOperator = "GROUP_BY"
	ConstraintLike      ConstraintOperator = "LIKE"
	ConstraintUnlike    ConstraintOperator = "UNLIKE"
)

// Constraint restricts which agents a spec's instances may land on.
type Constraint struct {
	Field    string // agent attribute name, or "hostname"
	Operator ConstraintOperator
	Value    string
}

// ContainerSpec describes one container: the common unit for App (exactly
// one) and Pod (one or more, ordered).
type ContainerSpec struct {
	Name         string
	Image        string
	Command      string
	Endpoints    []Endpoint
	HealthChecks []HealthCheck
	Env          map[string]string
}

// RunSpec is the tagged union of App and Pod run specifications.
type RunSpec struct {
	Kind            Kind
	ID              Id
	Version         time.Time
	CPU             float64
	Mem             float64
	Disk            float64
	GPU             float64
	AcceptedRoles   []ledger.Role
	Constraints     []Constraint
	Containers      []ContainerSpec // len == 1 for App, len >= 1 for Pod
	VolumeRequests  []VolumeRequest // non-empty only for stateful Apps
	HostNetwork     bool
}

// IsStateful reports whether this spec requests persistent volumes. Only
// App specs may be stateful; Pod specs with volume requests are rejected at
// submission time by the (out-of-scope) REST API, not here.
func (r RunSpec) IsStateful() bool {
	return r.Kind == KindApp && len(r.VolumeRequests) > 0
}

// Demand returns the scalar resource demand vector for this spec.
func (r RunSpec) Demand() []ledger.ScalarDemand {
	demand := []ledger.ScalarDemand{
		{Kind: ledger.KindCPU, Quantity: r.CPU},
		{Kind: ledger.KindMem, Quantity: r.Mem},
	}
	if r.Disk > 0 {
		demand = append(demand, ledger.ScalarDemand{Kind: ledger.KindDisk, Quantity: r.Disk})
	}
	if r.GPU > 0 {
		demand = append(demand, ledger.ScalarDemand{Kind: ledger.KindGPU, Quantity: r.GPU})
	}
	return demand
}

// Validate enforces the basic shape invariants of a RunSpec.
func (r RunSpec) Validate() error {
	switch r.Kind {
	case KindApp:
		if len(r.Containers) != 1 {
			return fmt.Errorf("runspec %s: app must have exactly one container, got %d", r.ID, len(r.Containers))
		}
	case KindPod:
		if len(r.Containers) == 0 {
			return fmt.Errorf("runspec %s: pod must have at least one container", r.ID)
		}
		if len(r.VolumeRequests) != 0 {
			return fmt.Errorf("runspec %s: pod specs may not request persistent volumes", r.ID)
		}
	default:
		return fmt.Errorf("runspec %s: unsupported kind %d", r.ID, r.Kind)
	}
	return nil
}

// AcceptedRolesOrDefault returns the spec's accepted roles, falling back to
// defaults when the spec does not restrict roles.
func AcceptedRolesOrDefault(r RunSpec, defaults []ledger.Role) []ledger.Role {
	if len(r.AcceptedRoles) > 0 {
		return r.AcceptedRoles
	}
	return defaults
}
