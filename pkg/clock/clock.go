// Package clock re-exports the clock abstraction used throughout the core
// so that every deadline computation (reservation timeouts, task staged-at
// timestamps) is injected rather than read from time.Now() directly.
package clock

import "k8s.io/utils/clock"

// Clock is the sole source of time for the core; production code uses
// RealClock, tests use k8s.io/utils/clock/testing.FakeClock.
type Clock = clock.Clock

// RealClock is the production Clock, backed by the OS clock.
var RealClock Clock = clock.RealClock{}
