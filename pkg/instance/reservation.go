package instance

import (
	"time"

	"github.com/mesosphere/marathon-go/pkg/clock"
)

// ReservationStateKind discriminates the Reservation.State tagged union
// (spec §4.5).
type ReservationStateKind int

const (
	StateNew ReservationStateKind = iota
	StateLaunched
	StateSuspended
	StateGarbage
	StateUnknown
)

func (k ReservationStateKind) String() string {
	switch k {
	case StateNew:
		return "New"
	case StateLaunched:
		return "Launched"
	case StateSuspended:
		return "Suspended"
	case StateGarbage:
		return "Garbage"
	case StateUnknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

// Timeout records when a non-Launched reservation state was entered and
// when it should be garbage collected.
type Timeout struct {
	Initiated time.Time
	Deadline  time.Time
	Reason    string
}

// ReservationState is the tagged union of reservation states; Timeout is
// set for New, Suspended, Garbage and Unknown, and nil for Launched.
type ReservationState struct {
	Kind    ReservationStateKind
	Timeout *Timeout
}

func NewState(clk clock.Clock, ttl time.Duration, reason string) ReservationState {
	now := clk.Now()
	return ReservationState{
		Kind: StateNew,
		Timeout: &Timeout{
			Initiated: now,
			Deadline:  now.Add(ttl),
			Reason:    reason,
		},
	}
}

func LaunchedState() ReservationState {
	return ReservationState{Kind: StateLaunched}
}

func SuspendedState(clk clock.Clock, ttl time.Duration, reason string) ReservationState {
	now := clk.Now()
	return ReservationState{
		Kind: StateSuspended,
		Timeout: &Timeout{
			Initiated: now,
			Deadline:  now.Add(ttl),
			Reason:    reason,
		},
	}
}

func GarbageState(clk clock.Clock, ttl time.Duration, reason string) ReservationState {
	now := clk.Now()
	return ReservationState{
		Kind: StateGarbage,
		Timeout: &Timeout{
			Initiated: now,
			Deadline:  now.Add(ttl),
			Reason:    reason,
		},
	}
}

func UnknownState(clk clock.Clock, ttl time.Duration, reason string) ReservationState {
	now := clk.Now()
	return ReservationState{
		Kind: StateUnknown,
		Timeout: &Timeout{
			Initiated: now,
			Deadline:  now.Add(ttl),
			Reason:    reason,
		},
	}
}

// Reservation carries the persistent-volume ids bound to a stateful task
// and the reservation's own state machine.
type Reservation struct {
	VolumeIDs []string
	State     ReservationState
}

// HasExpired reports whether now is past the reservation state's deadline;
// states without a Timeout (Launched) never expire.
func (r Reservation) HasExpired(now time.Time) bool {
	return r.State.Timeout != nil && !now.Before(r.State.Timeout.Deadline)
}

// Advance applies the reservation-state-machine transitions of spec §4.5
// that are driven purely by elapsed time (garbage collection), returning
// the new state and whether the reservation (and its volumes) should now
// be destroyed and unreserved.
func (r Reservation) Advance(now time.Time, ttl time.Duration, clk clock.Clock) (next Reservation, destroy bool) {
	if !r.HasExpired(now) {
		return r, false
	}
	switch r.State.Kind {
	case StateNew:
		next = r
		next.State = GarbageState(clk, ttl, "reservation timed out before launch")
		return next, false
	case StateSuspended, StateGarbage:
		return r, true
	default:
		return r, false
	}
}

// Launch transitions a Reserved task's reservation to Launched, from either
// New or Suspended (spec §4.5); it is a programming error to call this from
// any other state.
func (r Reservation) Launch() Reservation {
	next := r
	next.State = LaunchedState()
	return next
}

// Suspend transitions a LaunchedOnReservation task's reservation back to
// Suspended after task termination, provided volumes are retained.
func (r Reservation) Suspend(clk clock.Clock, ttl time.Duration) Reservation {
	next := r
	next.State = SuspendedState(clk, ttl, "task terminated, volumes retained")
	return next
}

// MarkUnknown transitions from any state to Unknown, e.g. on agent loss or
// reconciliation failure.
func (r Reservation) MarkUnknown(clk clock.Clock, ttl time.Duration) Reservation {
	next := r
	next.State = UnknownState(clk, ttl, "agent unreachable or reconciliation lost the task")
	return next
}
