package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/matcher"
	"github.com/mesosphere/marathon-go/pkg/runspec"
	"github.com/mesosphere/marathon-go/pkg/selector"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

type MatcherSuite struct {
	suite.Suite
	*require.Assertions
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherSuite))
}

func (s *MatcherSuite) SetupTest() {
	s.Assertions = require.New(s.T())
}

func (s *MatcherSuite) spec() runspec.RunSpec {
	return runspec.RunSpec{
		Kind: runspec.KindApp,
		ID:   "/conservation",
		CPU:  0.5,
		Mem:  128,
		Containers: []runspec.ContainerSpec{
			{Name: "main", Command: "run"},
		},
	}
}

// Property 2 — resource conservation: the sum of scalars consumed never
// exceeds what the offer carried, and no fragment's leftover goes negative.
func (s *MatcherSuite) TestProperty_ResourceConservation() {
	offer := wire.Offer{
		ID:      "offer-1",
		AgentID: "agent-1",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: ledger.Unreserved, Scalar: 1.0},
			{Name: ledger.KindMem, Role: ledger.Unreserved, Scalar: 256},
		},
	}

	match, ok := matcher.Match(matcher.Request{
		Offer:    offer,
		Spec:     s.spec(),
		Selector: selector.AnyRole(nil),
	})
	s.True(ok)
	s.Require().NotNil(match)

	s.Equal(0.5, match.ScalarsUsed[ledger.KindCPU])
	s.Equal(128.0, match.ScalarsUsed[ledger.KindMem])
	for _, r := range offer.Resources {
		s.GreaterOrEqual(r.Scalar, match.ScalarsUsed[r.Name])
	}
}

// Property 2, negative case: offer lacks enough of a scalar kind, Match must
// fail rather than consume more than was offered.
func (s *MatcherSuite) TestProperty_ResourceConservation_Insufficient() {
	offer := wire.Offer{
		ID:      "offer-2",
		AgentID: "agent-1",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: ledger.Unreserved, Scalar: 0.1},
			{Name: ledger.KindMem, Role: ledger.Unreserved, Scalar: 256},
		},
	}

	match, ok := matcher.Match(matcher.Request{
		Offer:    offer,
		Spec:     s.spec(),
		Selector: selector.AnyRole(nil),
	})
	s.False(ok)
	s.Nil(match)
}

// Property 3 — role safety: a resource under a role the selector doesn't
// allow is never consumed, even when it would otherwise satisfy demand.
func (s *MatcherSuite) TestProperty_RoleSafety() {
	offer := wire.Offer{
		ID:      "offer-3",
		AgentID: "agent-1",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: "other-framework", Scalar: 10.0, Reservation: ledger.Reservation{Role: "other-framework"}},
			{Name: ledger.KindMem, Role: "other-framework", Scalar: 10240, Reservation: ledger.Reservation{Role: "other-framework"}},
		},
	}

	match, ok := matcher.Match(matcher.Request{
		Offer:    offer,
		Spec:     s.spec(),
		Selector: selector.AnyRole([]ledger.Role{"marathon-role"}),
	})
	s.False(ok)
	s.Nil(match)
}

// Property 3, positive case: a selector scoped to a role only ever produces
// a match whose Role is one of the roles it allows.
func (s *MatcherSuite) TestProperty_RoleSafety_MatchRoleIsAllowed() {
	offer := wire.Offer{
		ID:      "offer-4",
		AgentID: "agent-1",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: "marathon-role", Scalar: 1.0},
			{Name: ledger.KindMem, Role: "marathon-role", Scalar: 256},
		},
	}

	sel := selector.AnyRole([]ledger.Role{"marathon-role"})
	match, ok := matcher.Match(matcher.Request{
		Offer:    offer,
		Spec:     s.spec(),
		Selector: sel,
	})
	s.True(ok)
	s.Require().NotNil(match)
	s.Contains(sel.AllowedRoles(), match.Role)
}

// Constraint pre-filter: an unsatisfiable LIKE constraint rejects the offer
// before any resource arithmetic runs.
func (s *MatcherSuite) TestConstraintPrefilter_Rejects() {
	spec := s.spec()
	spec.Constraints = []runspec.Constraint{
		{Field: "hostname", Operator: runspec.ConstraintLike, Value: "specific-host"},
	}
	offer := wire.Offer{
		ID:       "offer-5",
		AgentID:  "agent-1",
		Hostname: "other-host",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: ledger.Unreserved, Scalar: 10.0},
			{Name: ledger.KindMem, Role: ledger.Unreserved, Scalar: 10240},
		},
	}

	match, ok := matcher.Match(matcher.Request{
		Offer:    offer,
		Spec:     spec,
		Selector: selector.AnyRole(nil),
	})
	s.False(ok)
	s.Nil(match)
}

// Port assignment: an explicit host port is drawn from the range that
// contains it, splitting that range around the drawn value.
func (s *MatcherSuite) TestAssignPorts_Exact() {
	spec := s.spec()
	port := uint32(8080)
	spec.Containers[0].Endpoints = []runspec.Endpoint{
		{Name: "http", HostPort: &port},
	}
	offer := wire.Offer{
		ID:      "offer-6",
		AgentID: "agent-1",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: ledger.Unreserved, Scalar: 10.0},
			{Name: ledger.KindMem, Role: ledger.Unreserved, Scalar: 10240},
			{Role: ledger.Unreserved, Ranges: []ledger.PortRange{{Begin: 8000, End: 9000}}},
		},
	}

	match, ok := matcher.Match(matcher.Request{
		Offer:    offer,
		Spec:     spec,
		Selector: selector.AnyRole(nil),
	})
	s.True(ok)
	s.Require().Len(match.Ports, 1)
	s.Equal(port, match.Ports[0].Port)
	s.Equal("http", match.Ports[0].EndpointName)
}

// Persistent-volume placement: a mount disk is consumed whole regardless of
// the requested size.
func (s *MatcherSuite) TestAssignVolumes_MountDiskIsIndivisible() {
	spec := s.spec()
	spec.VolumeRequests = []runspec.VolumeRequest{
		{Name: "data", Size: 10, DiskSource: ledger.DiskSourceMount},
	}
	offer := wire.Offer{
		ID:      "offer-7",
		AgentID: "agent-1",
		Resources: []ledger.OfferResource{
			{Name: ledger.KindCPU, Role: ledger.Unreserved, Scalar: 10.0},
			{Name: ledger.KindMem, Role: ledger.Unreserved, Scalar: 10240},
			{Name: ledger.KindDisk, Role: ledger.Unreserved, DiskSource: ledger.DiskSourceMount, Scalar: 2000, VolumeID: "mount-1"},
		},
	}

	match, ok := matcher.Match(matcher.Request{
		Offer:    offer,
		Spec:     spec,
		Selector: selector.AnyRole(nil),
	})
	s.True(ok)
	s.Require().Len(match.Volumes, 1)
	s.Equal("mount-1", match.Volumes[0].VolumeID)
	s.Equal(ledger.DiskSourceMount, match.Volumes[0].DiskSource)
}
