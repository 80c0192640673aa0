package route

import "testing"

var pullPoints = []Location{
	{ID: 1, Name: "Yard A"},
	{ID: 2, Name: "Yard B - North"},
	{ID: 3, Name: "Yard B - South"},
	{ID: 4, Name: "Depot 12"},
}

var pads = []Location{
	{ID: 10, Name: "Site 9"},
	{ID: 11, Name: "Site 9/Pad B"},
	{ID: 12, Name: "Hilltop East"},
	{ID: 13, Name: "Hilltop West"},
}

func TestMatchPullPoint(t *testing.T) {
	tests := []struct {
		name       string
		terminal   string
		wantStatus Status
		wantID     int64
		wantMethod Method
		wantCands  int
	}{
		{"exact ignoring case and space", "  yard   a ", StatusOne, 1, MethodNormalizedExact, 0},
		{"dash spacing normalized", "yard b-north", StatusOne, 2, MethodNormalizedExact, 0},
		{"unique substring", "depot", StatusOne, 4, MethodLikeUnique, 0},
		{"several substrings", "yard b", StatusMulti, 0, "", 2},
		{"no match", "harbor", StatusNone, 0, "", 0},
		{"empty terminal", " ", StatusNone, 0, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchPullPoint(tt.terminal, pullPoints)
			if got.Status != tt.wantStatus {
				t.Fatalf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.ResolvedID() != tt.wantID {
				t.Errorf("ResolvedID = %d, want %d", got.ResolvedID(), tt.wantID)
			}
			if got.Resolved != nil && got.Resolved.Method != tt.wantMethod {
				t.Errorf("Method = %s, want %s", got.Resolved.Method, tt.wantMethod)
			}
			if len(got.Candidates) != tt.wantCands {
				t.Errorf("len(Candidates) = %d, want %d", len(got.Candidates), tt.wantCands)
			}
		})
	}
}

func TestMatchPadLocation(t *testing.T) {
	tests := []struct {
		name       string
		jobname    string
		wantStatus Status
		wantID     int64
		wantMethod Method
	}{
		{"exact", "SITE 9", StatusOne, 10, MethodExact},
		{"slash spacing loosened", "9 / pad b", StatusOne, 11, MethodLikeUnique},
		{"pad name inside job name", "site 9 / pad b", StatusMulti, 0, ""},
		{"job name contains pad", "Hilltop East Ext. 4", StatusOne, 12, MethodLikeUnique},
		{"ambiguous prefix", "hilltop", StatusMulti, 0, ""},
		{"no match", "Riverbend", StatusNone, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchPadLocation(tt.jobname, pads)
			if got.Status != tt.wantStatus {
				t.Fatalf("Status = %s, want %s (%+v)", got.Status, tt.wantStatus, got)
			}
			if got.ResolvedID() != tt.wantID {
				t.Errorf("ResolvedID = %d, want %d", got.ResolvedID(), tt.wantID)
			}
			if got.Resolved != nil && got.Resolved.Method != tt.wantMethod {
				t.Errorf("Method = %s, want %s", got.Resolved.Method, tt.wantMethod)
			}
		})
	}
}

func TestMatchPullPoint_CandidateLimit(t *testing.T) {
	var many []Location
	for i := int64(1); i <= 15; i++ {
		many = append(many, Location{ID: i, Name: "Terminal"})
	}
	got := MatchPullPoint("term", many)
	if got.Status != StatusMulti || len(got.Candidates) != CandidateLimit {
		t.Errorf("got %s with %d candidates, want MULTI with %d", got.Status, len(got.Candidates), CandidateLimit)
	}
}

func TestBuildJourney(t *testing.T) {
	miles := int64(42)
	pp := MatchPullPoint("Yard A", pullPoints)
	pl := MatchPadLocation("Site 9", pads)
	none := Match{Status: StatusNone}
	multi := MatchPullPoint("yard b", pullPoints)

	tests := []struct {
		name       string
		pp, pl     Match
		join       *Join
		wantStatus JourneyStatus
		wantJoin   int64
	}{
		{"ready", pp, pl, &Join{ID: 5, Miles: &miles}, JourneyReady, 5},
		{"missing join", pp, pl, nil, JourneyMissingJoin, 0},
		{"partial", pp, none, &Join{ID: 5}, JourneyPartial, 0},
		{"multi side is unresolved", multi, pl, &Join{ID: 5}, JourneyPartial, 0},
		{"none", none, none, nil, JourneyNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildJourney(tt.pp, tt.pl, tt.join)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.JoinID != tt.wantJoin {
				t.Errorf("JoinID = %d, want %d", got.JoinID, tt.wantJoin)
			}
		})
	}

	ready := BuildJourney(pp, pl, &Join{ID: 5, Miles: &miles})
	if !ready.Ready() || ready.Miles == nil || *ready.Miles != 42 {
		t.Errorf("ready journey = %+v", ready)
	}
	if !HasMulti(multi, pl) || HasMulti(pp, pl) {
		t.Error("HasMulti mismatch")
	}
}
