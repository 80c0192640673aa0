package app

import (
	"context"
	"fmt"

	"github.com/example/loadmatch/internal/core/route"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// RouteMatch is the resolved route leg of one record.
type RouteMatch struct {
	PullPoint   route.Match
	PadLocation route.Match
	Journey     route.Journey
}

// RouteResolver resolves terminal and job-name text to a route join.
type RouteResolver struct {
	locations secondary.LocationRepository
}

// NewRouteResolver creates a new RouteResolver with injected dependencies.
func NewRouteResolver(locations secondary.LocationRepository) *RouteResolver {
	return &RouteResolver{locations: locations}
}

// Resolve matches both sides against the active locations and looks up the
// join when both resolved.
func (r *RouteResolver) Resolve(ctx context.Context, terminal, jobname string) (RouteMatch, error) {
	points, err := r.locations.ListPullPoints(ctx)
	if err != nil {
		return RouteMatch{}, fmt.Errorf("failed to list pull points: %w", err)
	}
	pads, err := r.locations.ListPadLocations(ctx)
	if err != nil {
		return RouteMatch{}, fmt.Errorf("failed to list pad locations: %w", err)
	}

	m := RouteMatch{
		PullPoint:   route.MatchPullPoint(terminal, toLocations(points)),
		PadLocation: route.MatchPadLocation(jobname, toLocations(pads)),
	}

	var join *route.Join
	if route.NeedsJoin(m.PullPoint, m.PadLocation) {
		rec, err := r.locations.FindJoin(ctx, m.PullPoint.ResolvedID(), m.PadLocation.ResolvedID())
		if err != nil {
			return RouteMatch{}, fmt.Errorf("failed to find route join: %w", err)
		}
		if rec != nil {
			join = &route.Join{ID: rec.ID, Miles: rec.Miles}
		}
	}
	m.Journey = route.BuildJourney(m.PullPoint, m.PadLocation, join)
	return m, nil
}

func toLocations(records []*secondary.LocationRecord) []route.Location {
	locs := make([]route.Location, len(records))
	for i, rec := range records {
		locs[i] = route.Location{ID: rec.ID, Name: rec.Name}
	}
	return locs
}
