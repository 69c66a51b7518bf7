package matcher

import (
	"github.com/mesosphere/marathon-go/pkg/ledger"
	"github.com/mesosphere/marathon-go/pkg/runspec"
)

// assignVolumes selects a disk resource for each of spec's volume requests
// (spec §4.2 step 4): the chosen fragment's DiskSource must match the
// request's, and its size is deducted, except mount disks which are
// indivisible and consumed whole regardless of the requested size.
func assignVolumes(available []ledger.OfferResource, spec runspec.RunSpec) ([]VolumePlacement, []ledger.OfferResource, bool) {
	if len(spec.VolumeRequests) == 0 {
		return nil, nil, true
	}

	diskIdxs := diskIndexes(available)
	var placements []VolumePlacement
	var consumed []ledger.OfferResource

	for _, req := range spec.VolumeRequests {
		idx, ok := pickDisk(available, diskIdxs, req.DiskSource, req.Size)
		if !ok {
			return nil, nil, false
		}
		frag := &available[idx]
		placement := VolumePlacement{
			RequestName: req.Name,
			DiskSource:  req.DiskSource,
			VolumeID:    frag.VolumeID,
			Size:        req.Size,
		}
		consumedFragment := *frag
		if frag.DiskSource == ledger.DiskSourceMount {
			frag.Scalar = 0 // mount disks are indivisible: the whole mount is gone
		} else {
			frag.Scalar -= req.Size
		}
		placements = append(placements, placement)
		consumed = append(consumed, consumedFragment)
	}
	return placements, consumed, true
}

func diskIndexes(available []ledger.OfferResource) []int {
	var idxs []int
	for i, r := range available {
		if r.Name == ledger.KindDisk {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func pickDisk(available []ledger.OfferResource, idxs []int, source ledger.DiskSource, size float64) (int, bool) {
	for _, idx := range idxs {
		frag := available[idx]
		if frag.DiskSource != source {
			continue
		}
		if frag.DiskSource == ledger.DiskSourceMount {
			return idx, true // whole mount is taken regardless of requested size
		}
		if frag.Scalar >= size {
			return idx, true
		}
	}
	return 0, false
}
