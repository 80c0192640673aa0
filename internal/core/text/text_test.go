package text

import "testing"

func TestNorm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  John   SMITH ", "john smith"},
		{"O'Brien, Pat", "o brien pat"},
		{"José-María", "josé maría"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Norm(tt.in); got != tt.want {
				t.Errorf("Norm(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormTruck(t *testing.T) {
	if got := NormTruck(" TRK-2512 "); got != "trk2512" {
		t.Errorf("NormTruck = %q, want trk2512", got)
	}
}

func TestNormDashesAndSlashes(t *testing.T) {
	if got := NormDashes("  Yard  A -  North "); got != "yard a-north" {
		t.Errorf("NormDashes = %q", got)
	}
	if got := NormSlashes("Site 9 /  Pad B"); got != "site 9/pad b" {
		t.Errorf("NormSlashes = %q", got)
	}
}

func TestSquashDoubles(t *testing.T) {
	tests := map[string]string{
		"phillipp":  "philip",
		"aaa":       "a",
		"":          "",
		"mississip": "misisip",
	}
	for in, want := range tests {
		if got := SquashDoubles(in); got != want {
			t.Errorf("SquashDoubles(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "ab", 2},
		{"kitten", "sitting", 3},
		{"jon smith", "john smith", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSoundex(t *testing.T) {
	tests := map[string]string{
		"Robert":   "R163",
		"Rupert":   "R163",
		"Ashcraft": "A261",
		"Tymczak":  "T522",
		"Pfister":  "P236",
		"Lee":      "L000",
		"":         "",
		"123":      "",
	}
	for in, want := range tests {
		if got := Soundex(in); got != want {
			t.Errorf("Soundex(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " b ", "c"); got != "b" {
		t.Errorf("FirstNonEmpty = %q, want b", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Errorf("FirstNonEmpty() = %q, want empty", got)
	}
}
