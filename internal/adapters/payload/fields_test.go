package payload

import "testing"

func TestDriverName(t *testing.T) {
	tests := []struct {
		carrier string
		want    string
	}{
		{"Prairie Haulers\nJohn Smith", "John Smith"},
		{"Prairie Haulers\r\n  Maria Gonzalez  ", "Maria Gonzalez"},
		{"Prairie Haulers\n\n", "Prairie Haulers"},
		{"driver Dale Okafor (owner op)", "Dale Okafor"},
		{"smith, john", "smith, john"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.carrier, func(t *testing.T) {
			if got := DriverName(tt.carrier); got != tt.want {
				t.Errorf("DriverName(%q) = %q, want %q", tt.carrier, got, tt.want)
			}
		})
	}
}

func TestTruckAndTrailer(t *testing.T) {
	tests := []struct {
		text        string
		wantTruck   string
		wantTrailer string
	}{
		{"Truck #: 2512 / Trailer #: 88", "2512", "88"},
		{"truck 2512", "2512", ""},
		{"2512/88", "2512", "88"},
		{" 2512 - T88 ", "2512", "T88"},
		{"2512", "2512", ""},
		{"two five one two", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := TruckNumber(tt.text); got != tt.wantTruck {
				t.Errorf("TruckNumber(%q) = %q, want %q", tt.text, got, tt.wantTruck)
			}
			if got := TrailerNumber(tt.text); got != tt.wantTrailer {
				t.Errorf("TrailerNumber(%q) = %q, want %q", tt.text, got, tt.wantTrailer)
			}
		})
	}
}
