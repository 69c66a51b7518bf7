// Package builder transforms a (RunSpec, ResourceMatch, optional
// VolumeMatch) into the resource manager's launch payload: a single
// TaskInfo for an App, or an ExecutorInfo + TaskGroupInfo for a Pod,
// applying plugin-authored mutations along the way (spec §4.4).
package builder

import (
	"fmt"

	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/mesosphere/marathon-go/pkg/instance"
	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/matcher"
	"github.com/mesosphere/marathon-go/pkg/runspec"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

// Config carries the builder's tunables (spec §4.1/§6).
type Config struct {
	AcceptedRoles []ledger.Role
	EnvVarsPrefix string
}

// TaskProcessor is the plugin capability (spec §4.4/§9): a pair of
// mutating callbacks applied in registration order. No plugin may fail the
// pipeline — a processor that needs to signal a hard failure should not be
// registered as a TaskProcessor at all (see BuilderFailure in pkg/launch
// for the one place a build step is allowed to fail).
type TaskProcessor interface {
	TaskInfo(b *TaskInfoBuilder)
	TaskGroup(b *TaskGroupBuilder)
}

// TaskInfoBuilder is the single-container (App) builder a plugin may
// mutate; it owns the TaskInfo exclusively for the duration of the call.
type TaskInfoBuilder struct {
	TaskInfo *mesos.TaskInfo
	Spec     *runspec.RunSpec
}

// TaskGroupBuilder is the multi-container (Pod) builder a plugin may
// mutate.
type TaskGroupBuilder struct {
	ExecutorInfo *mesos.ExecutorInfo
	TaskGroup    []*mesos.TaskInfo
	Spec         *runspec.RunSpec
}

// Result is the builder's output for an ephemeral or reservation-launch
// App: the wire TaskInfo plus the host ports assigned to it.
type Result struct {
	TaskInfo  *mesos.TaskInfo
	HostPorts []uint32
}

// GroupResult is the builder's output for a Pod.
type GroupResult struct {
	ExecutorInfo       *mesos.ExecutorInfo
	TaskGroupInfo      []*mesos.TaskInfo
	HostPortsByTask    map[instance.TaskID][]uint32
	ContainerNameByTask map[instance.TaskID]string
}

// BuildTask builds a single-container launch payload. taskID is either a
// fresh id or, for launch-on-reservation, the caller-provided Reserved
// task's id (spec §4.1: "forcing the new TaskInfo.id to equal the Reserved
// task's id").
func BuildTask(spec runspec.RunSpec, taskID instance.TaskID, offer wire.Offer, match *matcher.ResourceMatch, cfg Config, plugins []TaskProcessor) (Result, error) {
	if len(spec.Containers) != 1 {
		return Result{}, fmt.Errorf("builder: app run spec %s must have exactly one container", spec.ID)
	}
	container := spec.Containers[0]

	resources := resourcesFromMatch(match, cfg)
	task := wire.NewTaskInfo(string(taskID), string(spec.ID), offer.AgentID, resources)
	task.Command = wire.NewCommandInfo(container.Command, prefixedEnv(container.Env, cfg.EnvVarsPrefix))

	hostPorts := wirePorts(container, match)
	attachHealthCheck(task, container)

	b := &TaskInfoBuilder{TaskInfo: task, Spec: &spec}
	for _, p := range plugins {
		p.TaskInfo(b)
	}

	if err := wire.RoundTrip(b.TaskInfo); err != nil {
		return Result{}, fmt.Errorf("builder: task %s does not round-trip: %w", taskID, err)
	}

	return Result{TaskInfo: b.TaskInfo, HostPorts: hostPorts}, nil
}

// BuildTaskGroup builds the shared-executor payload for a Pod: one TaskInfo
// per container, zipping each container's host-port endpoints against
// match's port assignments in declaration order.
func BuildTaskGroup(spec runspec.RunSpec, instanceID instance.ID, offer wire.Offer, match *matcher.ResourceMatch, cfg Config, plugins []TaskProcessor) (GroupResult, error) {
	if len(spec.Containers) == 0 {
		return GroupResult{}, fmt.Errorf("builder: pod run spec %s must have at least one container", spec.ID)
	}

	executorID := fmt.Sprintf("%s.executor", instanceID)
	executor := wire.NewExecutorInfo(executorID, offer.AgentID, executorResourcesFromMatch(match, cfg))

	var taskGroup []*mesos.TaskInfo
	hostPortsByTask := map[instance.TaskID][]uint32{}
	containerNameByTask := map[instance.TaskID]string{}
	n := len(spec.Containers)

	for _, container := range spec.Containers {
		taskID := instance.NewTaskID(spec.ID)
		// Each container gets its own Resource slice (not a shared one) so a
		// plugin mutating one task's resources in place can't alias another's.
		task := wire.NewTaskInfo(string(taskID), container.Name, offer.AgentID, taskScalarResources(match, n))
		task.Command = wire.NewCommandInfo(container.Command, prefixedEnv(container.Env, cfg.EnvVarsPrefix))
		hostPorts := wirePorts(container, match)
		attachHealthCheck(task, container)

		taskGroup = append(taskGroup, task)
		hostPortsByTask[taskID] = hostPorts
		containerNameByTask[taskID] = container.Name
	}

	b := &TaskGroupBuilder{ExecutorInfo: executor, TaskGroup: taskGroup, Spec: &spec}
	for _, p := range plugins {
		p.TaskGroup(b)
	}

	if err := wire.RoundTrip(b.ExecutorInfo); err != nil {
		return GroupResult{}, fmt.Errorf("builder: executor %s does not round-trip: %w", executorID, err)
	}
	for _, task := range b.TaskGroup {
		if err := wire.RoundTrip(task); err != nil {
			return GroupResult{}, fmt.Errorf("builder: task %s does not round-trip: %w", task.TaskID.Value, err)
		}
	}

	return GroupResult{
		ExecutorInfo:        b.ExecutorInfo,
		TaskGroupInfo:       b.TaskGroup,
		HostPortsByTask:     hostPortsByTask,
		ContainerNameByTask: containerNameByTask,
	}, nil
}

func prefixedEnv(env map[string]string, prefix string) map[string]string {
	if prefix == "" {
		return env
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[prefix+k] = v
	}
	return out
}

// wirePorts zips container's host-port endpoints against match's port
// assignments in declaration order (spec §4.4); endpoints without a
// requested host port receive none, and are skipped.
func wirePorts(container runspec.ContainerSpec, match *matcher.ResourceMatch) []uint32 {
	var hostPorts []uint32
	byName := map[string]uint32{}
	for _, p := range match.Ports {
		byName[p.EndpointName] = p.Port
	}
	for _, ep := range container.Endpoints {
		if !ep.HasHostPortRequest() {
			continue
		}
		if port, ok := byName[ep.Name]; ok {
			hostPorts = append(hostPorts, port)
		}
	}
	return hostPorts
}

// healthCheckEndpointLabel carries the name of the endpoint an HTTP/TCP
// health check is relative to; the resource manager has no notion of
// "endpoint", so the association is recorded as a label and resolved against
// the task's bound host port once it is known (spec §4.4).
const healthCheckEndpointLabel = "marathon_health_check_endpoint"

// attachHealthCheck translates a command-line health check directly onto the
// task. An endpoint-based (HTTP/TCP) check cannot be resolved here — the
// concrete port isn't known until wirePorts has run — so only its endpoint
// association is recorded, via healthCheckEndpointLabel, for the caller to
// resolve afterward.
func attachHealthCheck(task *mesos.TaskInfo, container runspec.ContainerSpec) {
	for _, hc := range container.HealthChecks {
		if hc.IsCommand() {
			task.HealthCheck = &mesos.HealthCheck{
				Command: wire.NewCommandInfo(hc.Command, nil),
			}
			return
		}
		if hc.EndpointName != "" {
			value := hc.EndpointName
			task.Labels = &mesos.Labels{
				Labels: append(task.GetLabels().GetLabels(), mesos.Label{Key: healthCheckEndpointLabel, Value: &value}),
			}
			return
		}
	}
}
