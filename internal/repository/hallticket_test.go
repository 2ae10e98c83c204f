package repository

import "testing"

func TestNextHallTicket(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty sequence starts at seed", nil, "CH01251000"},
		{"increments past the max", []string{"CH01251000", "CH01251001"}, "CH01251002"},
		{"gaps do not reset the sequence", []string{"CH01251000", "CH01251005"}, "CH01251006"},
		{"foreign prefixes ignored", []string{"XY99991000", "CH01251003"}, "CH01251004"},
		{"malformed suffixes ignored", []string{"CH0125abc", "CH01251001"}, "CH01251002"},
		{"only malformed falls back to seed", []string{"CH0125abc"}, "CH01251000"},
		{"suffix below seed still advances past it", []string{"CH0125900"}, "CH01251000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextHallTicket("CH0125", 1000, tt.existing)
			if got != tt.want {
				t.Errorf("nextHallTicket(%v) = %q, want %q", tt.existing, got, tt.want)
			}
		})
	}
}

func TestNextHallTicketDifferentPrefix(t *testing.T) {
	got := nextHallTicket("SCH26", 500, []string{"SCH26500", "SCH26501"})
	if got != "SCH26502" {
		t.Errorf("got %q, want SCH26502", got)
	}
}
