package matcher

import (
	"fmt"

	"github.com/mesosphere/marathon-go/pkg/instance"
	"github.com/mesosphere/marathon-go/pkg/runspec"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

// evaluateConstraints checks every placement constraint of spec against the
// offer's agent and the set of peer tasks already placed, in the style of
// the teacher's scheduler predicate functions. It returns the first
// violated constraint, if any, so matching can fail fast before resource
// arithmetic (spec §4.2 step 1).
func evaluateConstraints(spec runspec.RunSpec, offer wire.Offer, peers []instance.Task, peerAgents map[instance.TaskID]wire.AgentInfo) error {
	for _, c := range spec.Constraints {
		if err := evaluateOne(c, offer, peers, peerAgents); err != nil {
			return err
		}
	}
	return nil
}

func fieldValue(field string, offer wire.Offer) (string, bool) {
	if field == "hostname" {
		return offer.Hostname, true
	}
	v, ok := offer.Attributes[field]
	return v, ok
}

func evaluateOne(c runspec.Constraint, offer wire.Offer, peers []instance.Task, peerAgents map[instance.TaskID]wire.AgentInfo) error {
	value, present := fieldValue(c.Field, offer)
	switch c.Operator {
	case runspec.ConstraintCluster:
		if c.Value != "" && (!present || value != c.Value) {
			return fmt.Errorf("constraint CLUSTER(%s=%s) violated: offer has %q", c.Field, c.Value, value)
		}
	case runspec.ConstraintLike:
		if !present || value != c.Value {
			return fmt.Errorf("constraint LIKE(%s=%s) violated: offer has %q", c.Field, c.Value, value)
		}
	case runspec.ConstraintUnlike:
		if present && value == c.Value {
			return fmt.Errorf("constraint UNLIKE(%s=%s) violated: offer has %q", c.Field, c.Value, value)
		}
	case runspec.ConstraintUnique, runspec.ConstraintGroupBy:
		// UNIQUE is GROUP_BY with an implicit group size of 1: no peer may
		// already occupy an agent carrying the same field value as this offer.
		for _, p := range peers {
			agent, ok := peerAgents[p.ID]
			if !ok {
				continue
			}
			peerValue := agent.Hostname
			if c.Field != "hostname" {
				// attribute-scoped uniqueness would require the peer's
				// agent attributes, which the pure matcher input does not
				// carry per-peer; only hostname-scoped UNIQUE/GROUP_BY is
				// evaluated (exercised by pkg/launch's property 6 test).
				continue
			}
			if present && peerValue == value {
				return fmt.Errorf("constraint %s(%s) violated: agent %q already occupied", c.Operator, c.Field, value)
			}
		}
	}
	return nil
}
