package matcher

import (
	"sort"

	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/runspec"
)

// assignPorts draws one host port per host-port endpoint requested across
// spec's containers, in declaration order (spec §4.2 step 3): an explicit
// value must be contained in some range; "any" draws the lowest free value
// from the lowest range. available's port-range fragments are mutated to
// reflect the drawn ports.
func assignPorts(available []ledger.OfferResource, spec runspec.RunSpec) ([]PortAssignment, bool) {
	ranges := portRangeIndexes(available)
	var out []PortAssignment

	for _, c := range spec.Containers {
		for _, ep := range c.Endpoints {
			if !ep.HasHostPortRequest() {
				continue
			}
			assignment, ok := drawPort(available, ranges, ep)
			if !ok {
				return nil, false
			}
			out = append(out, assignment)
		}
	}
	return out, true
}

// portRangeIndexes returns the indices of available's port-range fragments,
// ordered by their lowest value ascending ("lowest range" per spec §4.2).
func portRangeIndexes(available []ledger.OfferResource) []int {
	var idxs []int
	for i, r := range available {
		if r.IsPorts() {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return lowestBegin(available[idxs[a]]) < lowestBegin(available[idxs[b]])
	})
	return idxs
}

func lowestBegin(r ledger.OfferResource) uint32 {
	min := ^uint32(0)
	for _, rng := range r.Ranges {
		if rng.Begin < min {
			min = rng.Begin
		}
	}
	return min
}

func drawPort(available []ledger.OfferResource, rangeIdxs []int, ep runspec.Endpoint) (PortAssignment, bool) {
	if ep.HostPort != nil && *ep.HostPort != 0 {
		return drawExactPort(available, rangeIdxs, ep, *ep.HostPort)
	}
	return drawAnyPort(available, rangeIdxs, ep)
}

func drawExactPort(available []ledger.OfferResource, rangeIdxs []int, ep runspec.Endpoint, port uint32) (PortAssignment, bool) {
	for _, idx := range rangeIdxs {
		frag := &available[idx]
		for ri, rng := range frag.Ranges {
			if !rng.Contains(port) {
				continue
			}
			left, right, ok := splitOut(rng, port)
			frag.Ranges[ri] = left
			if ok {
				frag.Ranges = append(frag.Ranges, right)
			}
			return PortAssignment{EndpointName: ep.Name, Port: port, Role: frag.Role}, true
		}
	}
	return PortAssignment{}, false
}

func drawAnyPort(available []ledger.OfferResource, rangeIdxs []int, ep runspec.Endpoint) (PortAssignment, bool) {
	for _, idx := range rangeIdxs {
		frag := &available[idx]
		for ri, rng := range frag.Ranges {
			if rng.Size() == 0 {
				continue
			}
			port := rng.Begin
			left, right, ok := splitOut(rng, port)
			frag.Ranges[ri] = left
			if ok {
				frag.Ranges = append(frag.Ranges, right)
			}
			return PortAssignment{EndpointName: ep.Name, Port: port, Role: frag.Role}, true
		}
	}
	return PortAssignment{}, false
}

// splitOut removes port from rng. left replaces rng in place; right, when ok
// is true, is a second fragment to append (needed when port falls strictly
// inside rng, splitting it in two).
func splitOut(rng ledger.PortRange, port uint32) (left, right ledger.PortRange, ok bool) {
	switch {
	case port == rng.Begin && port == rng.End:
		return ledger.PortRange{Begin: 1, End: 0}, ledger.PortRange{}, false
	case port == rng.Begin:
		return ledger.PortRange{Begin: port + 1, End: rng.End}, ledger.PortRange{}, false
	case port == rng.End:
		return ledger.PortRange{Begin: rng.Begin, End: port - 1}, ledger.PortRange{}, false
	default:
		return ledger.PortRange{Begin: rng.Begin, End: port - 1}, ledger.PortRange{Begin: port + 1, End: rng.End}, true
	}
}
