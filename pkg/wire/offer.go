// Package wire converts between the core's domain types and the resource
// manager's wire types (github.com/mesos/mesos-go/api/v1/lib), so that
// TaskInfo and ExecutorInfo values produced by pkg/builder are the actual
// protobuf-generated structs the resource manager expects and round-trip
// through proto.Marshal/Unmarshal unchanged.
package wire

import (
	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/mesosphere/marathon-go/pkg/ledger"
)

// Offer is the subset of the resource manager's offer message the core
// consumes: agent identity, hostname, attributes and resource fragments.
type Offer struct {
	ID         string
	AgentID    string
	Hostname   string
	Attributes map[string]string
	Resources  []ledger.OfferResource
}

// AgentInfo is a snapshot of the agent an instance landed on.
type AgentInfo struct {
	AgentID  string
	Hostname string
}

func (o Offer) AgentInfo() AgentInfo {
	return AgentInfo{AgentID: o.AgentID, Hostname: o.Hostname}
}

// FromMesosOffer converts a wire-level mesos.Offer into the core's Offer
// representation, classifying each resource's role, reservation and disk
// source.
func FromMesosOffer(o *mesos.Offer) Offer {
	out := Offer{
		ID:         o.ID.Value,
		Hostname:   o.Hostname,
		Attributes: map[string]string{},
	}
	if o.AgentID.Value != "" {
		out.AgentID = o.AgentID.Value
	}
	for _, attr := range o.Attributes {
		if attr.Text != nil {
			out.Attributes[attr.Name] = attr.Text.GetValue()
		}
	}
	for _, r := range o.Resources {
		out.Resources = append(out.Resources, fromMesosResource(r))
	}
	return out
}

func fromMesosResource(r mesos.Resource) ledger.OfferResource {
	fragment := ledger.OfferResource{
		Name: ledger.ResourceKind(r.Name),
		Role: roleOf(r),
	}
	if r.Reservation != nil {
		fragment.Reservation = ledger.Reservation{
			Role:   fragment.Role,
			Labels: labelsOf(r.Reservation.Labels),
		}
	}
	if r.Disk != nil {
		fragment.DiskSource = diskSourceOf(r.Disk)
		if r.Disk.Persistence != nil {
			fragment.VolumeID = r.Disk.Persistence.ID
		}
	}
	switch r.GetType() {
	case mesos.SCALAR:
		fragment.Scalar = r.GetScalar().GetValue()
		fragment.VolumeSize = fragment.Scalar
	case mesos.RANGES:
		for _, rng := range r.GetRanges().GetRange() {
			fragment.Ranges = append(fragment.Ranges, ledger.PortRange{
				Begin: uint32(rng.Begin),
				End:   uint32(rng.End),
			})
		}
	}
	return fragment
}

func roleOf(r mesos.Resource) ledger.Role {
	if r.Role != nil && *r.Role != "" {
		return ledger.Role(*r.Role)
	}
	return ledger.Unreserved
}

func labelsOf(l *mesos.Labels) map[string]string {
	if l == nil {
		return nil
	}
	out := make(map[string]string, len(l.Labels))
	for _, kv := range l.Labels {
		if kv.Value != nil {
			out[kv.Key] = *kv.Value
		}
	}
	return out
}

func diskSourceOf(d *mesos.Resource_DiskInfo) ledger.DiskSource {
	if d.Source == nil {
		return ledger.DiskSourceRoot
	}
	switch d.Source.GetType() {
	case mesos.Resource_DiskInfo_Source_MOUNT:
		return ledger.DiskSourceMount
	case mesos.Resource_DiskInfo_Source_PATH:
		return ledger.DiskSourcePath
	default:
		return ledger.DiskSourceRoot
	}
}

// ToMesosLabels builds the resource manager's label message from a plain
// map, in deterministic (sorted by key) order so that reservations built
// from the same labels always serialize identically (purity property).
func ToMesosLabels(labels map[string]string) *mesos.Labels {
	if len(labels) == 0 {
		return nil
	}
	keys := sortedKeys(labels)
	out := &mesos.Labels{}
	for _, k := range keys {
		v := labels[k]
		out.Labels = append(out.Labels, mesos.Label{Key: k, Value: &v})
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
