// Package route contains the pure business logic for route-leg resolution:
// matching terminal text to a pull point, job-name text to a pad location,
// and deciding whether the pair forms a usable journey.
package route

import (
	"strings"

	"github.com/example/loadmatch/internal/core/text"
)

// CandidateLimit caps the substring candidates considered per side.
const CandidateLimit = 10

// Status is the outcome of one side of the match.
type Status string

const (
	StatusOne   Status = "ONE"
	StatusMulti Status = "MULTI"
	StatusNone  Status = "NONE"
)

// Method records how a location was resolved.
type Method string

const (
	MethodNormalizedExact Method = "NORMALIZED_EXACT"
	MethodExact           Method = "EXACT"
	MethodLikeUnique      Method = "LIKE_UNIQUE"
)

// Location is a named pull point or pad location.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Resolved is a location picked by a match, with the method used.
type Resolved struct {
	Location
	Method Method `json:"method"`
}

// Match is the result of matching free text against a location list.
type Match struct {
	Status     Status     `json:"status"`
	Resolved   *Resolved  `json:"resolved,omitempty"`
	Candidates []Location `json:"candidates,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// ResolvedID returns the resolved location id, or 0.
func (m Match) ResolvedID() int64 {
	if m.Resolved == nil {
		return 0
	}
	return m.Resolved.ID
}

func one(loc Location, method Method) Match {
	return Match{Status: StatusOne, Resolved: &Resolved{Location: loc, Method: method}}
}

func fromCandidates(cands []Location, multiNote, noneNote string) Match {
	switch len(cands) {
	case 0:
		return Match{Status: StatusNone, Notes: noneNote}
	case 1:
		return one(cands[0], MethodLikeUnique)
	default:
		return Match{Status: StatusMulti, Candidates: cands, Notes: multiNote}
	}
}

// MatchPullPoint matches terminal text against active pull points.
// Both sides are compared with whitespace collapsed and " - " tightened to "-".
func MatchPullPoint(terminal string, points []Location) Match {
	if strings.TrimSpace(terminal) == "" {
		return Match{Status: StatusNone, Notes: "No terminal in import."}
	}
	t := text.NormDashes(terminal)

	for _, p := range points {
		if text.NormDashes(p.Name) == t {
			return one(p, MethodNormalizedExact)
		}
	}

	var cands []Location
	for _, p := range points {
		if strings.Contains(text.NormDashes(p.Name), t) {
			cands = append(cands, p)
			if len(cands) == CandidateLimit {
				break
			}
		}
	}
	return fromCandidates(cands, "Multiple pull points match.", "No pull point match found.")
}

// MatchPadLocation matches job-name text against active pad locations.
// Substring matching runs in both directions against the plain and the
// slash-tightened form of the job name.
func MatchPadLocation(jobname string, pads []Location) Match {
	if strings.TrimSpace(jobname) == "" {
		return Match{Status: StatusNone, Notes: "No jobname in import."}
	}
	norm := text.CollapseSpace(jobname)
	loose := text.NormSlashes(jobname)

	for _, p := range pads {
		if text.CollapseSpace(p.Name) == norm {
			return one(p, MethodExact)
		}
	}

	var cands []Location
	for _, p := range pads {
		name := text.CollapseSpace(p.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, norm) || strings.Contains(name, loose) ||
			strings.Contains(norm, name) || strings.Contains(loose, name) {
			cands = append(cands, p)
			if len(cands) == CandidateLimit {
				break
			}
		}
	}
	return fromCandidates(cands, "Jobname ambiguous: multiple pad location matches.", "No pad location match found.")
}
