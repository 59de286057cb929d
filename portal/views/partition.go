package views

import "github.com/trezcool/ayudantias/core/placement"

// Partition splits placements into those approved for period and those still pending,
// keeping their order. Approvals of other periods are ignored.
func Partition(placements []placement.Placement, approvals []placement.Approval, period string) (approved, pending []placement.Placement) {
	done := make(map[int]bool, len(approvals))
	for _, a := range approvals {
		if a.Period == period {
			done[a.PlacementID] = true
		}
	}
	approved = make([]placement.Placement, 0, len(done))
	pending = make([]placement.Placement, 0, len(placements))
	for _, p := range placements {
		if done[p.ID] {
			approved = append(approved, p)
		} else {
			pending = append(pending, p)
		}
	}
	return approved, pending
}
