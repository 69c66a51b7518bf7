package launch

import (
	"time"

	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/matcher"
	"github.com/mesosphere/marathon-go/pkg/runspec"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

// versionString renders a run spec's version deterministically, so that
// repeated invocations over equal inputs produce byte-identical
// RunSpecVersion strings (purity property 1).
func versionString(spec runspec.RunSpec) string {
	return spec.Version.UTC().Format(time.RFC3339Nano)
}

// reserveResources builds the wire Resource list for a
// ReserveAndCreateVolumes operation: every scalar/disk fragment match
// consumed, tagged with a dynamic reservation carrying the bit-exact
// reservation labels (spec §6).
func reserveResources(match *matcher.ResourceMatch, mesosRole, frameworkID, principal, taskID string) []mesos.Resource {
	role := mesosRole
	if role == "" {
		role = string(match.Role)
	}
	labels := ledger.ReservationLabels(frameworkID, taskID)
	reservation := wire.NewReservationInfo(principal, labels)

	var out []mesos.Resource
	for kind, qty := range match.ScalarsUsed {
		out = append(out, mesos.Resource{
			Name:        string(kind),
			Type:        mesos.SCALAR.Enum(),
			Scalar:      &mesos.Value_Scalar{Value: qty},
			Role:        &role,
			Reservation: reservation,
		})
	}
	for _, v := range match.Volumes {
		out = append(out, mesos.Resource{
			Name:        "disk",
			Type:        mesos.SCALAR.Enum(),
			Scalar:      &mesos.Value_Scalar{Value: v.Size},
			Role:        &role,
			Reservation: reservation,
			Disk: &mesos.Resource_DiskInfo{
				Persistence: &mesos.Resource_DiskInfo_Persistence{ID: v.VolumeID},
			},
		})
	}
	return out
}
