package stage

// GroupSnapshot is the live state of one (route join, shipment number) group,
// read fresh from the shipment tables. Absent optional columns are left zero.
type GroupSnapshot struct {
	Exists        bool
	ReviewDateSet bool
	DeliverySet   bool
	Finished      bool
	Weights       []float64
}

// InferRank derives the current rank of a group from its persisted data.
// The rank is never stored; recomputing it keeps partial writes self-healing.
func InferRank(g GroupSnapshot) int {
	if !g.Exists {
		return 0
	}
	if g.ReviewDateSet {
		return 4
	}
	if g.DeliverySet || g.Finished {
		return 3
	}
	for _, w := range g.Weights {
		if w > 0 {
			return 2
		}
	}
	return 1
}
