package stage

import (
	"fmt"

	"github.com/example/loadmatch/internal/core/failure"
)

// TransitionKind distinguishes the two ways a transition can be invalid.
type TransitionKind string

const (
	KindNotForward TransitionKind = "not-forward"
	KindSkip       TransitionKind = "skip"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Code    failure.Code
	Kind    TransitionKind
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &failure.Failure{Code: r.Code, Message: r.Reason}
}

// TransitionContext provides context for the forward-only transition guard.
type TransitionContext struct {
	JoinID         int64
	ShipmentNumber string
	CurrentRank    int
	Desired        Stage
}

// CanAdvance evaluates whether a group may move to the desired stage.
// Rules:
// - Desired stage must be known
// - A group with no rows only accepts AT_TERMINAL
// - Otherwise the desired rank must be exactly current+1
func CanAdvance(ctx TransitionContext) GuardResult {
	desired := Rank(ctx.Desired)
	if desired == 0 {
		return GuardResult{
			Code:   failure.UnknownStage,
			Reason: fmt.Sprintf("unknown stage %q", ctx.Desired),
		}
	}

	if ctx.CurrentRank == 0 {
		if desired != 1 {
			return GuardResult{
				Code: failure.NoBaseRecord,
				Reason: fmt.Sprintf("no shipment exists for join %d shipment number %s; process %s first",
					ctx.JoinID, ctx.ShipmentNumber, AtTerminal),
			}
		}
		return GuardResult{Allowed: true}
	}

	if desired <= ctx.CurrentRank {
		return GuardResult{
			Code: failure.InvalidTransition,
			Kind: KindNotForward,
			Reason: fmt.Sprintf("stage %s is not allowed because current stage is %s; only the next stage can be processed",
				ctx.Desired, FromRank(ctx.CurrentRank)),
		}
	}

	if next := ctx.CurrentRank + 1; desired != next {
		return GuardResult{
			Code: failure.InvalidTransition,
			Kind: KindSkip,
			Reason: fmt.Sprintf("invalid jump: current stage is %s, next allowed is %s, got %s",
				FromRank(ctx.CurrentRank), FromRank(next), ctx.Desired),
		}
	}

	return GuardResult{Allowed: true}
}
