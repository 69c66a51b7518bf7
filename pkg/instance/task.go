package instance

import (
	"fmt"

	"github.com/mesosphere/marathon-go/pkg/wire"
)

// TaskKind discriminates the Task tagged union (spec §3).
type TaskKind int

const (
	TaskLaunchedEphemeral TaskKind = iota
	TaskReserved
	TaskLaunchedOnReservation
)

func (k TaskKind) String() string {
	switch k {
	case TaskLaunchedEphemeral:
		return "LaunchedEphemeral"
	case TaskReserved:
		return "Reserved"
	case TaskLaunchedOnReservation:
		return "LaunchedOnReservation"
	default:
		return "Invalid"
	}
}

// TaskID identifies a task within its owning instance; its string form is
// prefixed by the run spec id (invariant: runSpecId == prefix of task id).
type TaskID string

// Task is the tagged union of the three task shapes spec §3 defines. Only
// the fields relevant to Kind are populated; CheckInvariants asserts that a
// Reserved/LaunchedOnReservation task carries a Reservation and that an
// ephemeral task carries no persistent-volume ids.
type Task struct {
	Kind           TaskKind
	ID             TaskID
	AgentInfo      wire.AgentInfo
	RunSpecVersion string
	Status         Status
	HostPorts      []uint32     // LaunchedEphemeral only
	ContainerName  string       // set for Pod tasks, checked against the pod spec at status derivation
	Reservation    *Reservation // Reserved, LaunchedOnReservation only
}

// CheckInvariants validates the §3 invariants that apply to a single task
// in isolation (the runSpecId-prefix and pod-container-name invariants are
// checked by the owning Instance, which has the context to do so).
func (t Task) CheckInvariants() error {
	hasVolumes := t.Reservation != nil && len(t.Reservation.VolumeIDs) > 0
	switch t.Kind {
	case TaskLaunchedEphemeral:
		if hasVolumes {
			return fmt.Errorf("invariant violation: ephemeral task %s carries persistent volumes", t.ID)
		}
	case TaskReserved, TaskLaunchedOnReservation:
		if t.Reservation == nil {
			return fmt.Errorf("invariant violation: %s task %s has no reservation", t.Kind, t.ID)
		}
	default:
		return fmt.Errorf("invariant violation: task %s has unknown kind %d", t.ID, t.Kind)
	}
	return nil
}

// NewEphemeral constructs a LaunchedEphemeral task.
func NewEphemeral(id TaskID, agent wire.AgentInfo, status Status, hostPorts []uint32) Task {
	return Task{
		Kind:           TaskLaunchedEphemeral,
		ID:             id,
		AgentInfo:      agent,
		RunSpecVersion: status.RunSpecVersion,
		Status:         status,
		HostPorts:      hostPorts,
	}
}

// NewReserved constructs a Reserved task from a fresh reservation.
func NewReserved(id TaskID, agent wire.AgentInfo, status Status, reservation Reservation) Task {
	return Task{
		Kind:           TaskReserved,
		ID:             id,
		AgentInfo:      agent,
		RunSpecVersion: status.RunSpecVersion,
		Status:         status,
		Reservation:    &reservation,
	}
}

// PromoteToLaunched returns t transitioned from Reserved to
// LaunchedOnReservation, preserving the task id (spec §4.1: "no new task id
// minted").
func (t Task) PromoteToLaunched(status Status, hostPorts []uint32) Task {
	next := t
	next.Kind = TaskLaunchedOnReservation
	next.Status = status
	next.HostPorts = hostPorts
	launched := t.Reservation.Launch()
	next.Reservation = &launched
	return next
}
