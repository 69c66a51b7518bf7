package instance

import (
	"fmt"
	"strings"

	"github.com/mesosphere/marathon-go/pkg/runspec"
)

// ID identifies one incarnation of a run spec.
type ID string

// Instance holds one task (App) or several (Pod) under a shared status;
// each task carries its own agent snapshot.
type Instance struct {
	ID        ID
	RunSpecID runspec.Id
	Status    Status
	Tasks     map[TaskID]Task
}

// CheckInvariants validates the §3 invariants that require the whole
// instance's context: every task id is prefixed by the run spec id, and
// (for Pod instances) every task's ContainerName names a container in
// podSpec.
func (i Instance) CheckInvariants(podSpec *runspec.RunSpec) error {
	prefix := string(i.RunSpecID)
	names := map[string]bool{}
	if podSpec != nil {
		for _, c := range podSpec.Containers {
			names[c.Name] = true
		}
	}
	for id, t := range i.Tasks {
		if !strings.HasPrefix(string(id), prefix) {
			return fmt.Errorf("invariant violation: task id %s is not prefixed by run spec id %s", id, prefix)
		}
		if err := t.CheckInvariants(); err != nil {
			return err
		}
		if podSpec != nil && t.ContainerName != "" && !names[t.ContainerName] {
			return fmt.Errorf("invariant violation: task %s names container %q, not present in pod spec %s", id, t.ContainerName, podSpec.ID)
		}
	}
	return nil
}

// Reserved returns the subset of tasks currently in the Reserved state,
// keyed by task id, used by the persistent-volume matcher and the
// launch-on-reservation branch of the instance-op factory.
func Reserved(instances map[ID]Instance) map[TaskID]Task {
	out := map[TaskID]Task{}
	for _, inst := range instances {
		for id, t := range inst.Tasks {
			if t.Kind == TaskReserved {
				out[id] = t
			}
		}
	}
	return out
}

// Peers returns every task across instances, excluding the tasks belonging
// to excludeInstance, for placement-constraint evaluation. The
// launch-on-reservation branch uses PeersExcludingTask instead.
func Peers(instances map[ID]Instance, excludeInstance ID) []Task {
	var out []Task
	for id, inst := range instances {
		if id == excludeInstance {
			continue
		}
		for _, t := range inst.Tasks {
			out = append(out, t)
		}
	}
	return out
}

// PeersExcludingTask returns every task across all instances except the one
// identified by excludeTask, regardless of which instance owns it. Used by
// the launch-on-reservation branch, which must exclude only the specific
// Reserved task being launched onto, not its whole (not-yet-existing)
// instance.
func PeersExcludingTask(instances map[ID]Instance, excludeTask TaskID) []Task {
	var out []Task
	for _, inst := range instances {
		for id, t := range inst.Tasks {
			if id == excludeTask {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}
