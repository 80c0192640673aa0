// Package shipment contains the pure business logic for shipment writes.
// Guards are pure functions that evaluate preconditions without side effects.
package shipment

import (
	"fmt"

	"github.com/example/loadmatch/internal/core/failure"
	"github.com/example/loadmatch/internal/core/stage"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Code    failure.Code
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &failure.Failure{Code: r.Code, Message: r.Reason}
}

// UpdateContext provides context for stage 2-4 update guards.
type UpdateContext struct {
	Stage          stage.Stage
	JoinID         int64
	ShipmentNumber string
	GroupExists    bool
}

// CanUpdateGroup evaluates whether a later stage may update a group.
// Rules:
// - Stage must be known
// - AT_TERMINAL never updates; it creates
// - The group row must exist, looked up by (shipment number, join)
func CanUpdateGroup(ctx UpdateContext) GuardResult {
	policy, ok := stage.PolicyFor(ctx.Stage)
	if !ok {
		return GuardResult{Code: failure.UnknownStage, Reason: fmt.Sprintf("unknown stage %q", ctx.Stage)}
	}
	if !policy.RequiresBase {
		return GuardResult{
			Code:   failure.InvalidTransition,
			Reason: fmt.Sprintf("stage %s creates a shipment and cannot update one", ctx.Stage),
		}
	}
	if !ctx.GroupExists {
		return GuardResult{
			Code: failure.MissingBaseRecord,
			Reason: fmt.Sprintf("stage %s requires an existing %s shipment for shipment number %s on join %d",
				ctx.Stage, policy.RequiredPrior, ctx.ShipmentNumber, ctx.JoinID),
		}
	}
	return GuardResult{Allowed: true}
}

// BOLContext provides context for the bill-of-lading write guard.
type BOLContext struct {
	Stage         stage.Stage
	Path          string
	Type          string
	ColumnsExist  bool
	ShipmentKnown bool
}

// CanAttachBOL evaluates whether a bill-of-lading reference is written.
// Rules:
// - The stage must allow it (never DELIVERED_PENDING)
// - Path and type must both be present
// - bol_path and bol_type columns must exist
// - A shipment number must be known so supersession can be scoped
func CanAttachBOL(ctx BOLContext) GuardResult {
	policy, ok := stage.PolicyFor(ctx.Stage)
	if !ok || !policy.BOL {
		return GuardResult{Reason: fmt.Sprintf("stage %s does not accept a bill of lading", ctx.Stage)}
	}
	if ctx.Path == "" || ctx.Type == "" {
		return GuardResult{Reason: "no bill of lading with a recognised type"}
	}
	if !ctx.ColumnsExist {
		return GuardResult{Reason: "bill of lading columns are not available"}
	}
	if !ctx.ShipmentKnown {
		return GuardResult{Reason: "shipment number required to supersede prior attachments"}
	}
	return GuardResult{Allowed: true}
}
