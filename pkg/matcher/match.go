// Package matcher implements the resource matcher: given an offer, a run
// spec, peer instances and a resource selector, it returns the concrete
// ResourceMatch an offer can satisfy, or nothing (spec §4.2).
package matcher

import (
	"sort"

	"github.com/mesosphere/marathon-go/pkg/instance"
	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/runspec"
	"github.com/mesosphere/marathon-go/pkg/selector"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

// PortAssignment is one chosen host port, drawn from a particular range.
type PortAssignment struct {
	EndpointName string
	Port         uint32
	Role         ledger.Role
}

// VolumePlacement records which offer disk resource fragment a volume
// request was matched to.
type VolumePlacement struct {
	RequestName string
	DiskSource  ledger.DiskSource
	VolumeID    string
	Size        float64
}

// ResourceMatch is the concrete assignment of offer-resource fragments to a
// run spec's requirements: scalar consumption, chosen ports, chosen
// persistent-volume placements and the role actually matched. Fragments are
// copied by value from the offer, never referenced by back-pointer (spec §9).
type ResourceMatch struct {
	Role         ledger.Role
	ScalarsUsed  map[ledger.ResourceKind]float64
	Ports        []PortAssignment
	Volumes      []VolumePlacement
	ConsumedDisk []ledger.OfferResource
}

// Request is the (offer, runSpec, peers, selector) tuple the matcher
// consumes; PeerAgents supplies the agent each peer task landed on, needed
// by hostname-scoped placement constraints.
type Request struct {
	Offer      wire.Offer
	Spec       runspec.RunSpec
	Peers      []instance.Task
	PeerAgents map[instance.TaskID]wire.AgentInfo
	Selector   selector.ResourceSelector
}

// Match runs the full matcher algorithm (spec §4.2 steps 1-5). It is a pure
// function of its Request: given the same Request, it returns an identical
// ResourceMatch every time (purity property 1), and never mutates
// req.Offer.
func Match(req Request) (*ResourceMatch, bool) {
	if err := evaluateConstraints(req.Spec, req.Offer, req.Peers, req.PeerAgents); err != nil {
		return nil, false
	}

	// eligible() copies the fragments passing the selector, so everything
	// below mutates a private working set, never the caller's offer.
	available := eligible(req.Offer.Resources, req.Selector)

	match := &ResourceMatch{
		Role:        req.Selector.AllowedRoles()[0],
		ScalarsUsed: map[ledger.ResourceKind]float64{},
	}

	for _, d := range req.Spec.Demand() {
		role, ok := consumeScalar(available, d)
		if !ok {
			return nil, false
		}
		match.ScalarsUsed[d.Kind] = d.Quantity
		if role != "" {
			match.Role = role
		}
	}

	ports, ok := assignPorts(available, req.Spec)
	if !ok {
		return nil, false
	}
	match.Ports = ports

	volumes, consumedDisk, ok := assignVolumes(available, req.Spec)
	if !ok {
		return nil, false
	}
	match.Volumes = volumes
	match.ConsumedDisk = consumedDisk

	return match, true
}

// eligible filters offer resources passing sel, preserving offer declaration
// order (spec §5: "left-to-right over the offer's resource list for
// reproducibility").
func eligible(resources []ledger.OfferResource, sel selector.ResourceSelector) []ledger.OfferResource {
	out := make([]ledger.OfferResource, 0, len(resources))
	for _, r := range resources {
		if sel.Accepts(r) {
			// Copy the port ranges too: port assignment rewrites them in place.
			r.Ranges = append([]ledger.PortRange(nil), r.Ranges...)
			out = append(out, r)
		}
	}
	return out
}

// consumeScalar greedily consumes fragments of kind d.Kind from available,
// preferring the fragment with the smallest quantity first (best-fit: a
// small fragment consumed whole leaves no leftover, reserving larger
// fragments for later, bigger demands), tie-broken deterministically by
// role, reservation labels, disk-source kind and offer order. available is
// mutated in place (Scalar decremented) so later demands see the remainder.
func consumeScalar(available []ledger.OfferResource, d ledger.ScalarDemand) (role ledger.Role, ok bool) {
	remaining := d.Quantity
	order := sortedCandidates(available, d.Kind)

	for _, idx := range order {
		if remaining <= 1e-9 {
			break
		}
		frag := &available[idx]
		if frag.Scalar <= 0 {
			continue
		}
		take := frag.Scalar
		if take > remaining {
			take = remaining
		}
		frag.Scalar -= take
		remaining -= take
		if role == "" {
			role = frag.Role
		}
	}
	if remaining > 1e-9 {
		return "", false
	}
	return role, true
}

// sortedCandidates returns the indices of available fragments of kind,
// ordered by ascending Scalar (best-fit), then by role, reservation label
// count, disk-source kind and original offer position for determinism.
func sortedCandidates(available []ledger.OfferResource, kind ledger.ResourceKind) []int {
	var idxs []int
	for i, r := range available {
		if r.Name == kind && !r.IsPorts() {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		ra, rb := available[idxs[a]], available[idxs[b]]
		if ra.Scalar != rb.Scalar {
			return ra.Scalar < rb.Scalar
		}
		if ra.Role != rb.Role {
			return ra.Role < rb.Role
		}
		if len(ra.Reservation.Labels) != len(rb.Reservation.Labels) {
			return len(ra.Reservation.Labels) < len(rb.Reservation.Labels)
		}
		if ra.DiskSource != rb.DiskSource {
			return ra.DiskSource < rb.DiskSource
		}
		return idxs[a] < idxs[b]
	})
	return idxs
}
