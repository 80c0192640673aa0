// Package driver contains the pure business logic for driver identity
// resolution: name splitting, fuzzy candidate scoring, and combination of the
// name and truck paths into a single match status.
package driver

import (
	"fmt"
	"strings"

	"github.com/example/loadmatch/internal/core/text"
)

// Method records which path produced a match.
type Method string

const (
	MethodNameExact  Method = "NAME_EXACT"
	MethodNameLike   Method = "NAME_LIKE_UNIQUE"
	MethodNameFuzzy  Method = "NAME_FUZZY"
	MethodNameNone   Method = "NAME_NONE"
	MethodTruck      Method = "TRUCK"
	confirmedSuffix         = "+TRUCK"
)

// Status is the outcome of combining the name and truck paths.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusConflict  Status = "CONFLICT"
	StatusNameOnly  Status = "NAME_ONLY"
	StatusTruckOnly Status = "TRUCK_ONLY"
	StatusNone      Status = "NONE"
)

// Confidence gates whether a record may ever be processed.
type Confidence string

const (
	Green  Confidence = "GREEN"
	Yellow Confidence = "YELLOW"
	Red    Confidence = "RED"
)

// Fuzzy acceptance thresholds.
const (
	MaxFuzzyDistance = 2
	MinFuzzyGap      = 1
	LikeLimit        = 20
	PoolLimit        = 80
	PrefixLen        = 4
)

// Identity is a resolved (driver, contact, vehicle, carrier) tuple.
// VehicleID and CarrierID are zero when the driver row leaves them unset.
type Identity struct {
	DriverID  int64 `json:"driver_id"`
	ContactID int64 `json:"contact_id"`
	VehicleID int64 `json:"vehicle_id,omitempty"`
	CarrierID int64 `json:"carrier_id,omitempty"`
}

// Match is one path's identity together with the method that found it.
type Match struct {
	Identity
	Method Method `json:"method"`
}

// Result is the combined outcome of both paths.
type Result struct {
	Status   Status `json:"status"`
	Resolved *Match `json:"resolved,omitempty"`
	ByName   *Match `json:"by_name,omitempty"`
	ByTruck  *Match `json:"by_truck,omitempty"`
	Notes    string `json:"notes,omitempty"`
	// Ambiguous is set when the name path failed because several contacts matched.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Contact is a name-path candidate.
type Contact struct {
	ID        int64
	FirstName string
	LastName  string
}

// FullName joins the trimmed first and last names.
func (c Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Notes emitted by the name path.
const (
	NoteEmptyName    = "Driver name is empty after normalization."
	NoteAmbiguous    = "Driver name ambiguous (multiple contacts match)."
	NoteNoContact    = "No contact match found by exact/like/fuzzy."
	noteFuzzyFormat  = "Fuzzy name match used (distance=%d)."
	noteNoDriverRow  = "Contact matched by name but no driver row found for contact %d."
	noteConflictForm = "Conflict: name matched driver %d but truck matched driver %d."
)

// FuzzyNote describes an accepted fuzzy match.
func FuzzyNote(distance int) string {
	return fmt.Sprintf(noteFuzzyFormat, distance)
}

// NoDriverRowNote describes a contact that has no driver row.
func NoDriverRowNote(contactID int64) string {
	return fmt.Sprintf(noteNoDriverRow, contactID)
}

// SplitName splits a free-text driver name into first and last parts.
// "Last, First" is honoured; otherwise the first and last whitespace-separated
// tokens are used. A single token is returned as the first name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if a, b, ok := strings.Cut(name, ","); ok {
		return strings.TrimSpace(b), strings.TrimSpace(a)
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[len(parts)-1]
}

// Prefix returns the first PrefixLen bytes of a normalized first name.
func Prefix(firstNorm string) string {
	if len(firstNorm) <= PrefixLen {
		return firstNorm
	}
	return firstNorm[:PrefixLen]
}

// Distance is the Levenshtein distance between two names after
// normalization and double-letter squashing.
func Distance(a, b string) int {
	return text.Levenshtein(text.SquashDoubles(text.Norm(a)), text.SquashDoubles(text.Norm(b)))
}

// Scored is the result of PickBest.
type Scored struct {
	Contact  Contact
	Distance int
	Accepted bool
}

// PickBest scores every pool candidate against name and accepts the best one
// only if it is within MaxFuzzyDistance and strictly ahead of the runner-up by
// at least MinFuzzyGap. The first candidate wins ties for best, which then
// makes the runner-up equal and the match is rejected.
func PickBest(name string, pool []Contact) Scored {
	const unset = 1 << 30
	best, second := unset, unset
	var winner Contact
	for _, c := range pool {
		d := Distance(name, c.FullName())
		switch {
		case d < best:
			second = best
			best = d
			winner = c
		case d < second:
			second = d
		}
	}
	if best == unset {
		return Scored{}
	}
	return Scored{
		Contact:  winner,
		Distance: best,
		Accepted: best <= MaxFuzzyDistance && second-best >= MinFuzzyGap,
	}
}

// Combine merges the two path results into a single status.
// notes are the name-path notes gathered so far.
func Combine(byName, byTruck *Match, notes []string, ambiguous bool) Result {
	r := Result{Status: StatusNone, ByName: byName, ByTruck: byTruck, Ambiguous: ambiguous && byName == nil}
	switch {
	case byName != nil && byTruck != nil:
		if byName.DriverID == byTruck.DriverID {
			resolved := *byName
			resolved.Method = byName.Method + confirmedSuffix
			r.Status = StatusConfirmed
			r.Resolved = &resolved
		} else {
			r.Status = StatusConflict
			r.Resolved = byName
			notes = append(notes, fmt.Sprintf(noteConflictForm, byName.DriverID, byTruck.DriverID))
		}
	case byName != nil:
		r.Status = StatusNameOnly
		r.Resolved = byName
	case byTruck != nil:
		r.Status = StatusTruckOnly
		r.Resolved = byTruck
	}
	r.Notes = joinNotes(notes)
	return r
}

// ConfidenceOf maps a match status to its confidence level.
func ConfidenceOf(s Status) Confidence {
	switch s {
	case StatusConfirmed:
		return Green
	case StatusNameOnly, StatusTruckOnly, StatusConflict:
		return Yellow
	default:
		return Red
	}
}

func joinNotes(notes []string) string {
	kept := notes[:0:0]
	for _, n := range notes {
		if n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, " ")
}
