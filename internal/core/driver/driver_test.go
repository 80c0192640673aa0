package driver

import "testing"

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{"first last", "John Smith", "John", "Smith"},
		{"middle name ignored", "  John  Q   Smith ", "John", "Smith"},
		{"comma form", "Smith, John", "John", "Smith"},
		{"comma without first", "Smith,", "", "Smith"},
		{"single token", "Cher", "Cher", ""},
		{"empty", "   ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitName(tt.input)
			if first != tt.wantFirst || last != tt.wantLast {
				t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.input, first, last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	if got := Prefix("jonathan"); got != "jona" {
		t.Errorf("Prefix = %q, want %q", got, "jona")
	}
	if got := Prefix("al"); got != "al" {
		t.Errorf("Prefix = %q, want %q", got, "al")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"John Smith", "john smith", 0},
		{"Jon Smitt", "John Smith", 2},
		{"Phillip Jones", "Philip Jones", 0},
		{"J. Smith", "J Smith", 0},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPickBest(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		pool         []Contact
		wantAccepted bool
		wantID       int64
		wantDistance int
	}{
		{
			name:  "clear winner",
			input: "Jon Smitt",
			pool: []Contact{
				{ID: 1, FirstName: "John", LastName: "Smith"},
				{ID: 2, FirstName: "Jane", LastName: "Smythe"},
			},
			wantAccepted: true,
			wantID:       1,
			wantDistance: 2,
		},
		{
			name:  "tie is ambiguous",
			input: "Jon Smith",
			pool: []Contact{
				{ID: 1, FirstName: "John", LastName: "Smith"},
				{ID: 2, FirstName: "Joan", LastName: "Smith"},
			},
			wantAccepted: false,
			wantID:       1,
			wantDistance: 1,
		},
		{
			name:  "too far",
			input: "Bob Smith",
			pool: []Contact{
				{ID: 1, FirstName: "Jennifer", LastName: "Smith"},
			},
			wantAccepted: false,
			wantID:       1,
			wantDistance: 7,
		},
		{
			name:         "single close candidate",
			input:        "Robert Smith",
			pool:         []Contact{{ID: 5, FirstName: "Robert", LastName: "Smyth"}},
			wantAccepted: true,
			wantID:       5,
			wantDistance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickBest(tt.input, tt.pool)
			if got.Accepted != tt.wantAccepted {
				t.Errorf("Accepted = %v, want %v", got.Accepted, tt.wantAccepted)
			}
			if got.Contact.ID != tt.wantID {
				t.Errorf("Contact.ID = %d, want %d", got.Contact.ID, tt.wantID)
			}
			if got.Distance != tt.wantDistance {
				t.Errorf("Distance = %d, want %d", got.Distance, tt.wantDistance)
			}
		})
	}
}

func TestPickBest_EmptyPool(t *testing.T) {
	if got := PickBest("anyone", nil); got.Accepted {
		t.Error("empty pool must not be accepted")
	}
}

func TestCombine(t *testing.T) {
	seven := &Match{Identity: Identity{DriverID: 7, ContactID: 70, VehicleID: 700, CarrierID: 1}, Method: MethodNameExact}
	sevenTruck := &Match{Identity: Identity{DriverID: 7, ContactID: 70, VehicleID: 700, CarrierID: 1}, Method: MethodTruck}
	eightTruck := &Match{Identity: Identity{DriverID: 8, ContactID: 80, VehicleID: 800, CarrierID: 1}, Method: MethodTruck}

	tests := []struct {
		name           string
		byName         *Match
		byTruck        *Match
		notes          []string
		ambiguous      bool
		wantStatus     Status
		wantConfidence Confidence
		wantDriver     int64
		wantMethod     Method
		wantNotes      string
		wantAmbiguous  bool
	}{
		{
			name:           "both agree",
			byName:         seven,
			byTruck:        sevenTruck,
			wantStatus:     StatusConfirmed,
			wantConfidence: Green,
			wantDriver:     7,
			wantMethod:     "NAME_EXACT+TRUCK",
		},
		{
			name:           "disagree keeps name match",
			byName:         seven,
			byTruck:        eightTruck,
			wantStatus:     StatusConflict,
			wantConfidence: Yellow,
			wantDriver:     7,
			wantMethod:     MethodNameExact,
			wantNotes:      "Conflict: name matched driver 7 but truck matched driver 8.",
		},
		{
			name:           "name only",
			byName:         seven,
			notes:          []string{FuzzyNote(1)},
			wantStatus:     StatusNameOnly,
			wantConfidence: Yellow,
			wantDriver:     7,
			wantMethod:     MethodNameExact,
			wantNotes:      "Fuzzy name match used (distance=1).",
		},
		{
			name:           "truck only after ambiguous name",
			byTruck:        eightTruck,
			notes:          []string{NoteAmbiguous},
			ambiguous:      true,
			wantStatus:     StatusTruckOnly,
			wantConfidence: Yellow,
			wantDriver:     8,
			wantMethod:     MethodTruck,
			wantNotes:      NoteAmbiguous,
			wantAmbiguous:  true,
		},
		{
			name:           "neither",
			notes:          []string{"", NoteNoContact},
			wantStatus:     StatusNone,
			wantConfidence: Red,
			wantNotes:      NoteNoContact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine(tt.byName, tt.byTruck, tt.notes, tt.ambiguous)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if c := ConfidenceOf(got.Status); c != tt.wantConfidence {
				t.Errorf("ConfidenceOf = %s, want %s", c, tt.wantConfidence)
			}
			if got.Notes != tt.wantNotes {
				t.Errorf("Notes = %q, want %q", got.Notes, tt.wantNotes)
			}
			if got.Ambiguous != tt.wantAmbiguous {
				t.Errorf("Ambiguous = %v, want %v", got.Ambiguous, tt.wantAmbiguous)
			}
			if tt.wantDriver == 0 {
				if got.Resolved != nil {
					t.Errorf("Resolved = %+v, want nil", got.Resolved)
				}
				return
			}
			if got.Resolved == nil {
				t.Fatal("Resolved = nil")
			}
			if got.Resolved.DriverID != tt.wantDriver {
				t.Errorf("Resolved.DriverID = %d, want %d", got.Resolved.DriverID, tt.wantDriver)
			}
			if got.Resolved.Method != tt.wantMethod {
				t.Errorf("Resolved.Method = %s, want %s", got.Resolved.Method, tt.wantMethod)
			}
		})
	}

	if seven.Method != MethodNameExact {
		t.Error("Combine must not mutate the name match")
	}
}
