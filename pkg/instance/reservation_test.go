package instance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/mesosphere/marathon-go/pkg/instance"
)

type ReservationSuite struct {
	suite.Suite
	*require.Assertions
	clock *clocktesting.FakeClock
	ttl   time.Duration
}

func TestReservationSuite(t *testing.T) {
	suite.Run(t, new(ReservationSuite))
}

func (s *ReservationSuite) SetupTest() {
	s.Assertions = require.New(s.T())
	s.clock = clocktesting.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.ttl = time.Hour
}

// Property 7 — timeout monotonicity: a reservation's deadline never moves
// backward across a state transition driven by the same clock and ttl.
func (s *ReservationSuite) TestProperty_TimeoutMonotonicity_NewToGarbage() {
	state := instance.NewState(s.clock, s.ttl, "awaiting launch")
	firstDeadline := state.Timeout.Deadline

	res := instance.Reservation{VolumeIDs: []string{"vol-1"}, State: state}
	s.clock.SetTime(firstDeadline.Add(time.Second))

	next, destroy := res.Advance(s.clock.Now(), s.ttl, s.clock)
	s.False(destroy)
	s.Equal(instance.StateGarbage, next.State.Kind)
	s.Require().NotNil(next.State.Timeout)
	s.True(next.State.Timeout.Deadline.After(firstDeadline))
}

// A reservation that has not yet expired is left untouched by Advance.
func (s *ReservationSuite) TestAdvance_NotExpired_NoOp() {
	state := instance.NewState(s.clock, s.ttl, "awaiting launch")
	res := instance.Reservation{VolumeIDs: []string{"vol-1"}, State: state}

	s.clock.SetTime(state.Timeout.Deadline.Add(-time.Minute))
	next, destroy := res.Advance(s.clock.Now(), s.ttl, s.clock)
	s.False(destroy)
	s.Equal(res, next)
}

// Garbage-state reservations past their deadline are destroyed, not recycled
// through another state.
func (s *ReservationSuite) TestAdvance_GarbageExpires_Destroyed() {
	state := instance.GarbageState(s.clock, s.ttl, "reservation timed out before launch")
	res := instance.Reservation{VolumeIDs: []string{"vol-1"}, State: state}

	s.clock.SetTime(state.Timeout.Deadline.Add(time.Second))
	next, destroy := res.Advance(s.clock.Now(), s.ttl, s.clock)
	s.True(destroy)
	s.Equal(instance.StateGarbage, next.State.Kind)
}

// Suspended reservations past their deadline are likewise destroyed.
func (s *ReservationSuite) TestAdvance_SuspendedExpires_Destroyed() {
	state := instance.SuspendedState(s.clock, s.ttl, "task terminated, volumes retained")
	res := instance.Reservation{VolumeIDs: []string{"vol-1"}, State: state}

	s.clock.SetTime(state.Timeout.Deadline.Add(time.Second))
	_, destroy := res.Advance(s.clock.Now(), s.ttl, s.clock)
	s.True(destroy)
}

// Launched reservations carry no Timeout and never expire.
func (s *ReservationSuite) TestLaunchedState_NeverExpires() {
	state := instance.LaunchedState()
	s.Nil(state.Timeout)
	res := instance.Reservation{VolumeIDs: []string{"vol-1"}, State: state}
	s.False(res.HasExpired(s.clock.Now().Add(100 * s.ttl)))
}

// Launch transitions from New to Launched, dropping the timeout.
func (s *ReservationSuite) TestLaunch_DropsTimeout() {
	state := instance.NewState(s.clock, s.ttl, "awaiting launch")
	res := instance.Reservation{VolumeIDs: []string{"vol-1"}, State: state}

	launched := res.Launch()
	s.Equal(instance.StateLaunched, launched.State.Kind)
	s.Nil(launched.State.Timeout)
}

// Suspend, then MarkUnknown: each transition stamps a fresh Initiated time
// from the clock at the moment of the call.
func (s *ReservationSuite) TestSuspendThenMarkUnknown() {
	res := instance.Reservation{VolumeIDs: []string{"vol-1"}, State: instance.LaunchedState()}

	suspended := res.Suspend(s.clock, s.ttl)
	s.Equal(instance.StateSuspended, suspended.State.Kind)
	s.Equal(s.clock.Now(), suspended.State.Timeout.Initiated)

	s.clock.Step(time.Minute)
	unknown := suspended.MarkUnknown(s.clock, s.ttl)
	s.Equal(instance.StateUnknown, unknown.State.Kind)
	s.Equal(s.clock.Now(), unknown.State.Timeout.Initiated)
	s.True(unknown.State.Timeout.Initiated.After(suspended.State.Timeout.Initiated))
}
