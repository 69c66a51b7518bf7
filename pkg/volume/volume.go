// Package volume implements the persistent-volume matcher (spec §4.3):
// given an offer and the set of currently Reserved tasks, find the task
// whose reservation volume ids are all present in the offer.
package volume

import (
	"sort"

	"github.com/mesosphere/marathon-go/pkg/instance"
	"github.com/mesosphere/marathon-go/pkg/wire"
)

// Match is the output of the persistent-volume matcher: a Reserved task and
// the offer's persistent-volume fragments satisfying its reservation ids.
type Match struct {
	TaskID    instance.TaskID
	Task      instance.Task
	VolumeIDs []string
}

// FindReservation locates, among reserved (Reserved tasks keyed by task
// id), the task whose reservation volume ids are all carried by offer. When
// several tasks qualify, the one with the earliest reservation creation
// time wins; ties are broken by task id, lexicographically.
func FindReservation(offer wire.Offer, reserved map[instance.TaskID]instance.Task) (*Match, bool) {
	offered := volumeIDs(offer)

	var candidates []instance.TaskID
	for id, t := range reserved {
		if t.Reservation == nil {
			continue
		}
		if allPresent(t.Reservation.VolumeIDs, offered) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		ti, tj := reserved[candidates[i]], reserved[candidates[j]]
		ci, cj := creationTime(ti), creationTime(tj)
		if ci != cj {
			return ci < cj
		}
		return candidates[i] < candidates[j]
	})

	chosen := candidates[0]
	t := reserved[chosen]
	return &Match{TaskID: chosen, Task: t, VolumeIDs: t.Reservation.VolumeIDs}, true
}

func creationTime(t instance.Task) int64 {
	if t.Reservation != nil && t.Reservation.State.Timeout != nil {
		return t.Reservation.State.Timeout.Initiated.UnixNano()
	}
	return 0
}

func volumeIDs(offer wire.Offer) map[string]bool {
	out := map[string]bool{}
	for _, r := range offer.Resources {
		if r.VolumeID != "" {
			out[r.VolumeID] = true
		}
	}
	return out
}

func allPresent(want []string, have map[string]bool) bool {
	if len(want) == 0 {
		return false
	}
	for _, id := range want {
		if !have[id] {
			return false
		}
	}
	return true
}
