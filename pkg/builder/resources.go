package builder

import (
	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/matcher"
)

// resourcesFromMatch converts a ResourceMatch back into the resource
// manager's wire Resource list, tagging every resource with the matched
// role. No reservation metadata (ReservationInfo, labels) is attached, for
// launch-on-reservation matches as for any other.
func resourcesFromMatch(match *matcher.ResourceMatch, cfg Config) []mesos.Resource {
	var out []mesos.Resource
	role := string(match.Role)

	for kind, qty := range match.ScalarsUsed {
		out = append(out, mesos.Resource{
			Name:   string(kind),
			Type:   mesos.SCALAR.Enum(),
			Scalar: &mesos.Value_Scalar{Value: qty},
			Role:   &role,
		})
	}

	if len(match.Ports) > 0 {
		ranges := make([]mesos.Value_Range, 0, len(match.Ports))
		for _, p := range match.Ports {
			ranges = append(ranges, mesos.Value_Range{Begin: uint64(p.Port), End: uint64(p.Port)})
		}
		out = append(out, mesos.Resource{
			Name:   "ports",
			Type:   mesos.RANGES.Enum(),
			Ranges: &mesos.Value_Ranges{Range: ranges},
			Role:   &role,
		})
	}

	for _, v := range match.Volumes {
		out = append(out, mesos.Resource{
			Name:   string(ledger.KindDisk),
			Type:   mesos.SCALAR.Enum(),
			Scalar: &mesos.Value_Scalar{Value: v.Size},
			Role:   &role,
			Disk: &mesos.Resource_DiskInfo{
				Persistence: &mesos.Resource_DiskInfo_Persistence{ID: v.VolumeID},
			},
		})
	}

	return out
}

// executorResourcesFromMatch returns the portion of a Pod's match that
// belongs on the shared ExecutorInfo rather than on any one container's
// TaskInfo: the port ranges and persistent volumes, which are indivisible
// and not owned by a single container (spec §4.4). Scalar demand (cpu/mem/
// disk/gpu) is distributed across the group's containers instead — see
// taskScalarResources.
func executorResourcesFromMatch(match *matcher.ResourceMatch, cfg Config) []mesos.Resource {
	var out []mesos.Resource
	role := string(match.Role)

	if len(match.Ports) > 0 {
		ranges := make([]mesos.Value_Range, 0, len(match.Ports))
		for _, p := range match.Ports {
			ranges = append(ranges, mesos.Value_Range{Begin: uint64(p.Port), End: uint64(p.Port)})
		}
		out = append(out, mesos.Resource{
			Name:   "ports",
			Type:   mesos.RANGES.Enum(),
			Ranges: &mesos.Value_Ranges{Range: ranges},
			Role:   &role,
		})
	}

	for _, v := range match.Volumes {
		out = append(out, mesos.Resource{
			Name:   string(ledger.KindDisk),
			Type:   mesos.SCALAR.Enum(),
			Scalar: &mesos.Value_Scalar{Value: v.Size},
			Role:   &role,
			Disk: &mesos.Resource_DiskInfo{
				Persistence: &mesos.Resource_DiskInfo_Persistence{ID: v.VolumeID},
			},
		})
	}

	return out
}

// taskScalarResources returns one container's share of the match's scalar
// resources (cpu/mem/disk/gpu). The run spec declares resource demand once
// for the whole Pod (runspec.RunSpec has no per-container weight to split
// by), so each of the n containers in the group receives an equal share
// rather than the zero resources a prior version of the builder attached
// (spec §4.4: the launch payload must carry the resources the matcher
// computed, not park the whole match on the executor alone).
func taskScalarResources(match *matcher.ResourceMatch, n int) []mesos.Resource {
	var out []mesos.Resource
	role := string(match.Role)

	for kind, qty := range match.ScalarsUsed {
		out = append(out, mesos.Resource{
			Name:   string(kind),
			Type:   mesos.SCALAR.Enum(),
			Scalar: &mesos.Value_Scalar{Value: qty / float64(n)},
			Role:   &role,
		})
	}

	return out
}
