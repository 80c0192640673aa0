package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/loadmatch/internal/core/driver"
	"github.com/example/loadmatch/internal/core/failure"
	"github.com/example/loadmatch/internal/core/route"
	"github.com/example/loadmatch/internal/core/stage"
	"github.com/example/loadmatch/internal/ports/primary"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// MatchEngine composes normalization, driver and route resolution and stage
// classification into an Evaluation. It never writes.
type MatchEngine struct {
	normalizer secondary.ImportNormalizer
	drivers    *DriverResolver
	routes     *RouteResolver
}

// NewMatchEngine creates a new MatchEngine with injected dependencies.
func NewMatchEngine(normalizer secondary.ImportNormalizer, drivers *DriverResolver, routes *RouteResolver) *MatchEngine {
	return &MatchEngine{
		normalizer: normalizer,
		drivers:    drivers,
		routes:     routes,
	}
}

// Candidate normalizes an import record.
func (e *MatchEngine) Candidate(rec *secondary.ImportRecord) *secondary.Candidate {
	return e.normalizer.Normalize(rec)
}

// Evaluate resolves the candidate. Readiness and CurrentRank are left for the
// caller, which decides whether a live rank read is wanted.
func (e *MatchEngine) Evaluate(ctx context.Context, c *secondary.Candidate) (*primary.Evaluation, error) {
	drv, err := e.drivers.Resolve(ctx, c.DriverName, c.TruckNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve driver for import %d: %w", c.ImportID, err)
	}
	rt, err := e.routes.Resolve(ctx, c.Terminal, c.JobName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve route for import %d: %w", c.ImportID, err)
	}

	st := stage.Classify(c.StatusText, c.ReconcileFlag)
	return &primary.Evaluation{
		ImportID:    c.ImportID,
		Parsed:      parsedFields(c),
		Driver:      drv,
		Confidence:  driver.ConfidenceOf(drv.Status),
		PullPoint:   rt.PullPoint,
		PadLocation: rt.PadLocation,
		Journey:     rt.Journey,
		Stage:       st,
		DesiredRank: stage.Rank(st),
	}, nil
}

func parsedFields(c *secondary.Candidate) primary.ParsedFields {
	return primary.ParsedFields{
		DriverName:     c.DriverName,
		TruckNumber:    c.TruckNumber,
		TrailerNumber:  c.TrailerNumber,
		Terminal:       c.Terminal,
		JobName:        c.JobName,
		ShipmentNumber: c.ShipmentNumber,
		TicketNumber:   c.TicketNumber,
		StatusText:     c.StatusText,
		ReconcileFlag:  c.ReconcileFlag,
	}
}

// shipmentNumber returns the trimmed group key part of an evaluation.
func shipmentNumber(ev *primary.Evaluation) string {
	return strings.TrimSpace(ev.Parsed.ShipmentNumber)
}

// groupCheck reports why a record cannot be placed in a group: the route
// leg must be ready and the shipment number present.
func groupCheck(ev *primary.Evaluation) *failure.Failure {
	if !ev.Journey.Ready() {
		if route.HasMulti(ev.PullPoint, ev.PadLocation) {
			return failure.New(failure.AmbiguousMatch,
				"route leg is ambiguous (pull point %s, pad location %s)",
				ev.PullPoint.Status, ev.PadLocation.Status)
		}
		return failure.New(failure.JourneyNotReady, "journey is %s, not READY", ev.Journey.Status)
	}
	if shipmentNumber(ev) == "" {
		return failure.New(failure.MissingKey, "shipment number is missing")
	}
	return nil
}

// identityCheck reports why the resolved driver cannot be used.
func identityCheck(ev *primary.Evaluation) *failure.Failure {
	d := ev.Driver
	if ev.Confidence == driver.Red || d.Resolved == nil {
		if d.Ambiguous {
			return failure.New(failure.AmbiguousMatch, "driver name matches multiple contacts")
		}
		msg := "driver not resolved by name or truck"
		if d.Notes != "" {
			msg += ": " + d.Notes
		}
		return failure.New(failure.NoIdentity, "%s", msg)
	}
	if d.Resolved.CarrierID == 0 {
		return failure.New(failure.NoIdentity, "resolved driver %d has no carrier", d.Resolved.DriverID)
	}
	return nil
}

// precheck runs every check that needs no shipment data, in reporting order.
func precheck(ev *primary.Evaluation) *failure.Failure {
	if f := groupCheck(ev); f != nil {
		return f
	}
	return identityCheck(ev)
}
