package route

// JourneyStatus is the outcome of combining both location matches.
type JourneyStatus string

const (
	JourneyReady       JourneyStatus = "READY"
	JourneyMissingJoin JourneyStatus = "MISSING_JOIN"
	JourneyPartial     JourneyStatus = "PARTIAL"
	JourneyNone        JourneyStatus = "NONE"
)

// Join is a route leg row.
type Join struct {
	ID    int64
	Miles *int64
}

// Journey is the resolved route leg for an import record.
type Journey struct {
	Status        JourneyStatus `json:"status"`
	PullPointID   int64         `json:"pull_point_id,omitempty"`
	PadLocationID int64         `json:"pad_location_id,omitempty"`
	JoinID        int64         `json:"join_id,omitempty"`
	Miles         *int64        `json:"miles,omitempty"`
}

// Ready reports whether the journey resolved to a join.
func (j Journey) Ready() bool {
	return j.Status == JourneyReady
}

// NeedsJoin reports whether both sides resolved, so a join lookup is due.
// A MULTI side is never resolved.
func NeedsJoin(pp, pl Match) bool {
	return pp.Resolved != nil && pl.Resolved != nil
}

// BuildJourney combines the two matches with the join found for the exact
// pair, if any. join is ignored unless both sides resolved.
func BuildJourney(pp, pl Match, join *Join) Journey {
	j := Journey{PullPointID: pp.ResolvedID(), PadLocationID: pl.ResolvedID()}
	switch {
	case !NeedsJoin(pp, pl) && (pp.Resolved != nil || pl.Resolved != nil):
		j.Status = JourneyPartial
	case !NeedsJoin(pp, pl):
		j.Status = JourneyNone
	case join == nil:
		j.Status = JourneyMissingJoin
	default:
		j.Status = JourneyReady
		j.JoinID = join.ID
		j.Miles = join.Miles
	}
	return j
}

// HasMulti reports whether either side matched several locations.
func HasMulti(pp, pl Match) bool {
	return pp.Status == StatusMulti || pl.Status == StatusMulti
}
