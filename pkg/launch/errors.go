package launch

import "errors"

// Error kinds surfaced by the core (spec §7). The factory never retries and
// never partially mutates caller state: callers should check errors.Is
// against these sentinels to decide their own retry/logging policy.
var (
	// ErrUnsupportedRunSpec: the run spec is neither App nor Pod. Fatal to
	// this request; caller logs and drops.
	ErrUnsupportedRunSpec = errors.New("launch: unsupported run spec kind")

	// ErrConfigurationUnmatchable: a stateful spec's accepted roles contain
	// no unreserved-eligible role. Logged at warn, returns no operation.
	ErrConfigurationUnmatchable = errors.New("launch: accepted roles contain no unreserved-eligible role")

	// ErrMismatch: the matcher cannot satisfy the request from this offer.
	// Normal; returns no operation; logged only at debug verbosity (V(3)).
	ErrMismatch = errors.New("launch: offer does not satisfy run spec demand")

	// ErrBuilderFailure: the task builder was invoked after a successful
	// match but could not produce a payload. Propagated upward; the caller
	// must not apply a partial operation.
	ErrBuilderFailure = errors.New("launch: task builder failed after a successful match")

	// ErrInvariant: the operation the factory was about to emit would violate
	// one of the §3 data-model invariants (e.g. an ephemeral task carrying a
	// persistent volume). Indicates a bug in the factory itself, not a bad
	// offer; propagated upward rather than silently dropped.
	ErrInvariant = errors.New("launch: emitted operation violates a data-model invariant")
)
