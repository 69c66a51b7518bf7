package wire

import (
	mesos "github.com/mesos/mesos-go/api/v1/lib"
)

// NewTaskInfo builds a resource manager TaskInfo addressed at agentID,
// carrying the given resources. The caller is responsible for attaching the
// command and any container/executor info.
func NewTaskInfo(taskID, name, agentID string, resources []mesos.Resource) *mesos.TaskInfo {
	return &mesos.TaskInfo{
		TaskID:    mesos.TaskID{Value: taskID},
		Name:      name,
		AgentID:   mesos.AgentID{Value: agentID},
		Resources: resources,
	}
}

// NewCommandInfo builds a shell command payload for a task.
func NewCommandInfo(cmd string, env map[string]string) *mesos.CommandInfo {
	ci := &mesos.CommandInfo{Shell: boolPtr(true)}
	value := cmd
	ci.Value = &value
	if len(env) > 0 {
		ci.Environment = &mesos.Environment{}
		for _, k := range sortedKeys(env) {
			v := env[k]
			ci.Environment.Variables = append(ci.Environment.Variables, mesos.Environment_Variable{
				Name:  k,
				Value: &v,
			})
		}
	}
	return ci
}

// NewExecutorInfo builds the shared executor payload for a task group.
func NewExecutorInfo(executorID, agentID string, resources []mesos.Resource) *mesos.ExecutorInfo {
	return &mesos.ExecutorInfo{
		ExecutorID: mesos.ExecutorID{Value: executorID},
		AgentID:    &mesos.AgentID{Value: agentID},
		Resources:  resources,
	}
}

// NewReservationInfo builds a dynamic reservation Resource.ReservationInfo
// carrying the bit-exact reservation labels, under principal (optional).
func NewReservationInfo(principal string, labels map[string]string) *mesos.Resource_ReservationInfo {
	info := &mesos.Resource_ReservationInfo{Labels: ToMesosLabels(labels)}
	if principal != "" {
		info.Principal = &principal
	}
	return info
}

func boolPtr(b bool) *bool { return &b }
