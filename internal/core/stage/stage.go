// Package stage contains the pure business logic for the four-stage shipment
// lifecycle: classification of declared status, rank inference from persisted
// data, and the forward-only transition guard.
package stage

import "strings"

// Stage is a lifecycle position declared by an import record.
type Stage string

const (
	AtTerminal         Stage = "AT_TERMINAL"
	InTransit          Stage = "IN_TRANSIT"
	DeliveredPending   Stage = "DELIVERED_PENDING"
	DeliveredConfirmed Stage = "DELIVERED_CONFIRMED"
)

// Reconcile flag values carried in vendor payloads.
const (
	ReconcileConfirmed = "CONFIRMED"
	ReconcilePending   = "PENDING"
)

// MaxRank is the rank of the terminal stage.
const MaxRank = 4

var ranks = map[Stage]int{
	AtTerminal:         1,
	InTransit:          2,
	DeliveredPending:   3,
	DeliveredConfirmed: 4,
}

// Rank returns the 1-4 rank of s, or 0 for an unknown stage.
func Rank(s Stage) int {
	return ranks[s]
}

// FromRank is the inverse of Rank. Ranks outside 1-4 map to AtTerminal.
func FromRank(rank int) Stage {
	switch rank {
	case 4:
		return DeliveredConfirmed
	case 3:
		return DeliveredPending
	case 2:
		return InTransit
	default:
		return AtTerminal
	}
}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	_, ok := ranks[s]
	return ok
}

// NormalizeReconcileFlag uppercases a vendor reconcile flag.
func NormalizeReconcileFlag(flag string) string {
	return strings.ToUpper(strings.TrimSpace(flag))
}

// Classify derives the declared stage from free-text status and reconcile flag.
func Classify(statusText, reconcileFlag string) Stage {
	state := strings.ToUpper(strings.TrimSpace(statusText))
	state = strings.NewReplacer("-", "_", " ", "_").Replace(state)

	switch state {
	case "ATTERMINAL":
		state = "AT_TERMINAL"
	case "INTRANSIT":
		state = "IN_TRANSIT"
	}

	flag := NormalizeReconcileFlag(reconcileFlag)

	switch {
	case strings.Contains(state, "AT_TERMINAL"):
		return AtTerminal
	case strings.Contains(state, "IN_TRANSIT"):
		return InTransit
	case strings.Contains(state, "DELIVERED"):
		if flag == ReconcileConfirmed {
			return DeliveredConfirmed
		}
		return DeliveredPending
	}

	switch flag {
	case ReconcileConfirmed:
		return DeliveredConfirmed
	case ReconcilePending:
		return DeliveredPending
	}
	return AtTerminal
}
