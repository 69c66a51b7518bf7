// Package launch implements the instance-op factory, the core's entry
// point: given a run spec, an offer, the current instances of that spec
// and a pending demand, it dispatches between app/pod and stateless/
// stateful branches and emits a typed InstanceOp (spec §4.1).
package launch

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/mesosphere/marathon-go/pkg/builder"
	"github.com/mesosphere/marathon-go/pkg/clock"
	"github.com/mesosphere/marathon-go/pkg/config"
	"github.com/mesosphere/marathon-go/pkg/instance"
	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/matcher"
	"github.com/mesosphere/marathon-go/pkg/metrics"
	"github.com/mesosphere/marathon-go/pkg/runspec"
	"github.com/mesosphere/marathon-go/pkg/selector"
	"github.com/mesosphere/marathon-go/pkg/volume"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

func init() {
	metrics.Register()
}

// Request is the factory's sole input (spec §4.1): the pure function of
// these fields, with no hidden mutation of Offer, RunSpec or
// CurrentInstances (spec §5).
type Request struct {
	RunSpec             runspec.RunSpec
	Offer               wire.Offer
	CurrentInstances    map[instance.ID]instance.Instance
	PeerAgents          map[instance.TaskID]wire.AgentInfo
	AdditionalLaunches  int
	FrameworkID         string
	Config              config.Config
	Clock               clock.Clock
	Plugins             []builder.TaskProcessor
}

// BuildInstanceOp is the entry point. It returns (nil, nil) on a normal
// mismatch (spec §7 ErrMismatch — logged only at glog V(3), no error:
// callers treat a nil op with a nil error as "no operation, try the next
// offer") and on ConfigurationUnmatchable (logged at warn), and a non-nil
// error for every other failure kind.
func BuildInstanceOp(req Request) (*InstanceOp, error) {
	start := req.Clock.Now()
	defer func() {
		metrics.InstanceOpLatency.Observe(float64(req.Clock.Now().Sub(start).Microseconds()))
	}()

	switch {
	case req.RunSpec.Kind == runspec.KindApp && !req.RunSpec.IsStateful():
		return inferEphemeralApp(req)
	case req.RunSpec.Kind == runspec.KindApp && req.RunSpec.IsStateful():
		return inferStateful(req)
	case req.RunSpec.Kind == runspec.KindPod:
		return inferPodInstance(req)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedRunSpec, req.RunSpec.Kind)
	}
}

func builderConfig(req Request) builder.Config {
	return builder.Config{
		AcceptedRoles: req.Config.AcceptedRoles(req.RunSpec.AcceptedRoles),
		EnvVarsPrefix: req.Config.EnvVarsPrefix,
	}
}

func peers(req Request, excludeInstance instance.ID) []instance.Task {
	return instance.Peers(req.CurrentInstances, excludeInstance)
}

// inferEphemeralApp is the App, non-stateful branch (spec §4.1).
func inferEphemeralApp(req Request) (*InstanceOp, error) {
	roles := req.Config.AcceptedRoles(req.RunSpec.AcceptedRoles)
	sel := selector.AnyRole(roles)

	metrics.MatchAttempts.WithLabelValues(req.RunSpec.Kind.String()).Inc()
	match, ok := matcher.Match(matcher.Request{
		Offer:      req.Offer,
		Spec:       req.RunSpec,
		Peers:      peers(req, ""),
		PeerAgents: req.PeerAgents,
		Selector:   sel,
	})
	if !ok {
		log.V(3).Infof("mismatch: run spec %s does not fit offer %s", req.RunSpec.ID, req.Offer.ID)
		return nil, nil
	}
	metrics.MatchSuccesses.WithLabelValues(req.RunSpec.Kind.String()).Inc()

	taskID := instance.NewTaskID(req.RunSpec.ID)
	result, err := builder.BuildTask(req.RunSpec, taskID, req.Offer, match, builderConfig(req), req.Plugins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuilderFailure, err)
	}

	status := instance.NewStatus(req.Clock, instance.Created, versionString(req.RunSpec))
	task := instance.NewEphemeral(taskID, req.Offer.AgentInfo(), status, result.HostPorts)
	if err := task.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	return &InstanceOp{
		Kind:     OpLaunchEphemeral,
		TaskInfo: result.TaskInfo,
		Task:     &task,
	}, nil
}

// inferPodInstance is the Pod branch (spec §4.1).
func inferPodInstance(req Request) (*InstanceOp, error) {
	roles := req.Config.AcceptedRoles(req.RunSpec.AcceptedRoles)
	sel := selector.AnyRole(roles)

	metrics.MatchAttempts.WithLabelValues(req.RunSpec.Kind.String()).Inc()
	match, ok := matcher.Match(matcher.Request{
		Offer:      req.Offer,
		Spec:       req.RunSpec,
		Peers:      peers(req, ""),
		PeerAgents: req.PeerAgents,
		Selector:   sel,
	})
	if !ok {
		log.V(3).Infof("mismatch: pod run spec %s does not fit offer %s", req.RunSpec.ID, req.Offer.ID)
		return nil, nil
	}
	metrics.MatchSuccesses.WithLabelValues(req.RunSpec.Kind.String()).Inc()

	instanceID := instance.ID(fmt.Sprintf("%s.%s", req.RunSpec.ID, req.Offer.ID))
	groupResult, err := builder.BuildTaskGroup(req.RunSpec, instanceID, req.Offer, match, builderConfig(req), req.Plugins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuilderFailure, err)
	}

	tasks := map[instance.TaskID]instance.Task{}
	allHostPorts := map[instance.TaskID][]uint32{}
	for taskID, containerName := range groupResult.ContainerNameByTask {
		status := instance.NewStatus(req.Clock, instance.Created, versionString(req.RunSpec))
		hostPorts := groupResult.HostPortsByTask[taskID]
		allHostPorts[taskID] = hostPorts

		// Pod branch: hostPorts are carried on the launch request, not on
		// the per-task Instance record, unless RecordPodHostPorts opts in
		// (DESIGN.md Open Question 1).
		recorded := hostPorts
		if !req.Config.RecordPodHostPorts {
			recorded = nil
		}
		task := instance.NewEphemeral(taskID, req.Offer.AgentInfo(), status, recorded)
		task.ContainerName = containerName
		tasks[taskID] = task
	}

	inst := &instance.Instance{
		ID:        instanceID,
		RunSpecID: req.RunSpec.ID,
		Status:    instance.NewStatus(req.Clock, instance.Created, versionString(req.RunSpec)),
		Tasks:     tasks,
	}
	if err := inst.CheckInvariants(&req.RunSpec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	return &InstanceOp{
		Kind:          OpLaunchGroup,
		ExecutorInfo:  groupResult.ExecutorInfo,
		TaskGroupInfo: groupResult.TaskGroupInfo,
		Instance:      inst,
		HostPorts:     allHostPorts,
	}, nil
}

// inferStateful is the stateful App branch (spec §4.1): it tries
// launch-on-reservation first, then reserve-and-create-volumes, with
// strict precedence (testable property 5).
func inferStateful(req Request) (*InstanceOp, error) {
	if op, err := tryLaunchOnReservation(req); op != nil || err != nil {
		return op, err
	}
	return tryReserveAndCreateVolumes(req)
}

// tryLaunchOnReservation is sub-branch (a) of spec §4.1.
func tryLaunchOnReservation(req Request) (*InstanceOp, error) {
	if req.AdditionalLaunches <= 0 {
		return nil, nil
	}
	reservedTasks := instance.Reserved(req.CurrentInstances)
	if len(reservedTasks) == 0 {
		return nil, nil
	}

	found, ok := volume.FindReservation(req.Offer, reservedTasks)
	if !ok {
		return nil, nil
	}

	roles := req.Config.AcceptedRoles(req.RunSpec.AcceptedRoles)
	labels := ledger.ReservationLabels(req.FrameworkID, string(found.TaskID))
	sel := selector.ReservedWithLabels(roles, labels)

	// Constraint self-exclusion (testable property 6): the target Reserved
	// task must not be evaluated against its own placement constraints.
	excludedPeers := instance.PeersExcludingTask(req.CurrentInstances, found.TaskID)

	metrics.MatchAttempts.WithLabelValues("reservation").Inc()
	match, ok := matcher.Match(matcher.Request{
		Offer:      req.Offer,
		Spec:       req.RunSpec,
		Peers:      excludedPeers,
		PeerAgents: req.PeerAgents,
		Selector:   sel,
	})
	if !ok {
		return nil, nil
	}
	metrics.MatchSuccesses.WithLabelValues("reservation").Inc()

	result, err := builder.BuildTask(req.RunSpec, found.TaskID, req.Offer, match, builderConfig(req), req.Plugins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuilderFailure, err)
	}

	status := instance.NewStatus(req.Clock, instance.Created, versionString(req.RunSpec))
	launchedTask := found.Task.PromoteToLaunched(status, result.HostPorts)
	if err := launchedTask.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	instanceID := instance.ID(found.TaskID) // the reserved task's instance id is stable across launches
	stateOp := &StateOp{
		InstanceID:     instanceID,
		RunSpecVersion: versionString(req.RunSpec),
		Status:         status,
		HostPorts:      result.HostPorts,
	}

	return &InstanceOp{
		Kind:     OpLaunchOnReservation,
		TaskInfo: result.TaskInfo,
		Task:     &launchedTask,
		StateOp:  stateOp,
	}, nil
}

// tryReserveAndCreateVolumes is sub-branch (b) of spec §4.1.
func tryReserveAndCreateVolumes(req Request) (*InstanceOp, error) {
	numberWaiting := countWaitingReservations(req.CurrentInstances)
	if numberWaiting >= req.AdditionalLaunches {
		return nil, nil
	}

	declared := req.RunSpec.AcceptedRoles
	roles := req.Config.AcceptedRoles(declared)
	reservableRoles := intersectUnreserved(roles)
	if len(reservableRoles) == 0 {
		log.Warningf("run spec %s: accepted roles %v contain no unreserved-eligible role, skipping reservation (%v)", req.RunSpec.ID, roles, ErrConfigurationUnmatchable)
		return nil, nil
	}

	sel := selector.Reservable(reservableRoles)
	metrics.MatchAttempts.WithLabelValues("reserve-create").Inc()
	match, ok := matcher.Match(matcher.Request{
		Offer:      req.Offer,
		Spec:       req.RunSpec,
		Peers:      peers(req, ""),
		PeerAgents: req.PeerAgents,
		Selector:   sel,
	})
	if !ok {
		return nil, nil
	}
	metrics.MatchSuccesses.WithLabelValues("reserve-create").Inc()

	taskID := instance.NewTaskID(req.RunSpec.ID)
	var volumeIDs []string
	for _, v := range match.Volumes {
		volumeIDs = append(volumeIDs, v.VolumeID)
	}

	reservation := instance.Reservation{
		VolumeIDs: volumeIDs,
		State:     instance.NewState(req.Clock, req.Config.TaskReservationTimeout, "awaiting launch"),
	}
	status := instance.NewStatus(req.Clock, instance.Reserved, versionString(req.RunSpec))
	reservedTask := instance.NewReserved(taskID, req.Offer.AgentInfo(), status, reservation)
	if err := reservedTask.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	resources := reserveResources(match, req.Config.MesosRole, req.FrameworkID, req.Config.MesosAuthenticationPrincipal, string(taskID))
	metrics.ReservationsCreated.Inc()

	return &InstanceOp{
		Kind:         OpReserveAndCreateVolumes,
		FrameworkID:  req.FrameworkID,
		Task:         &reservedTask,
		Resources:    resources,
		LocalVolumes: volumeIDs,
		StateOp: &StateOp{
			InstanceID:     instance.ID(taskID),
			RunSpecVersion: versionString(req.RunSpec),
			Status:         status,
		},
	}, nil
}

func countWaitingReservations(instances map[instance.ID]instance.Instance) int {
	count := 0
	for _, t := range instance.Reserved(instances) {
		if t.Reservation != nil && t.Reservation.State.Kind == instance.StateNew {
			count++
		}
	}
	return count
}

func intersectUnreserved(roles []ledger.Role) []ledger.Role {
	var out []ledger.Role
	for _, r := range roles {
		if r == ledger.Unreserved {
			out = append(out, r)
		}
	}
	return out
}
