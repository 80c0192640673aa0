package stage

// WritePolicy states which field groups a stage may write to an existing group.
type WritePolicy struct {
	CreatesBase   bool
	RequiresBase  bool
	MergeBoxes    bool
	Weights       bool
	TicketNumber  bool
	BOL           bool
	Delivery      bool
	MarkFinished  bool
	ReviewDate    bool
	RequiredPrior Stage
}

// PolicyFor returns the write policy of s. ok is false for unknown stages.
func PolicyFor(s Stage) (WritePolicy, bool) {
	switch s {
	case AtTerminal:
		return WritePolicy{CreatesBase: true}, true
	case InTransit:
		return WritePolicy{
			RequiresBase:  true,
			MergeBoxes:    true,
			Weights:       true,
			TicketNumber:  true,
			BOL:           true,
			RequiredPrior: AtTerminal,
		}, true
	case DeliveredPending:
		return WritePolicy{
			RequiresBase:  true,
			MergeBoxes:    true,
			Weights:       true,
			TicketNumber:  true,
			Delivery:      true,
			MarkFinished:  true,
			RequiredPrior: AtTerminal,
		}, true
	case DeliveredConfirmed:
		return WritePolicy{
			RequiresBase:  true,
			MergeBoxes:    true,
			Weights:       true,
			TicketNumber:  true,
			BOL:           true,
			Delivery:      true,
			MarkFinished:  true,
			ReviewDate:    true,
			RequiredPrior: AtTerminal,
		}, true
	}
	return WritePolicy{}, false
}
