package launch

import (
	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/mesosphere/marathon-go/pkg/instance"
)

// OpKind discriminates the InstanceOp tagged union (spec §6).
type OpKind int

const (
	OpLaunchEphemeral OpKind = iota
	OpLaunchGroup
	OpLaunchOnReservation
	OpReserveAndCreateVolumes
)

// StateOp records the instance/task-state side effect an InstanceOp
// implies, for the caller's instance store to apply.
type StateOp struct {
	InstanceID     instance.ID
	RunSpecVersion string
	Status         instance.Status
	HostPorts      []uint32
}

// InstanceOp is the tagged union of operations the factory emits; only the
// fields listed below for Kind are populated.
type InstanceOp struct {
	Kind OpKind

	// OpLaunchEphemeral
	TaskInfo *mesos.TaskInfo
	Task     *instance.Task

	// OpLaunchGroup
	ExecutorInfo *mesos.ExecutorInfo
	TaskGroupInfo []*mesos.TaskInfo
	Instance      *instance.Instance
	HostPorts     map[instance.TaskID][]uint32

	// OpLaunchOnReservation adds StateOp to the OpLaunchEphemeral fields

	// OpReserveAndCreateVolumes (also sets Task and StateOp)
	FrameworkID   string
	Resources     []mesos.Resource
	LocalVolumes  []string

	StateOp *StateOp
}

func (k OpKind) String() string {
	switch k {
	case OpLaunchEphemeral:
		return "LaunchEphemeral"
	case OpLaunchGroup:
		return "LaunchGroup"
	case OpLaunchOnReservation:
		return "LaunchOnReservation"
	case OpReserveAndCreateVolumes:
		return "ReserveAndCreateVolumes"
	default:
		return "Invalid"
	}
}
