package models

import "testing"

func TestTrip_DayCount(t *testing.T) {
	tests := []struct {
		start string
		end   string
		want  int
	}{
		{"2024-03-01", "2024-03-01", 1},
		{"2024-03-01", "2024-03-02", 2},
		{"2024-03-01", "2024-03-03", 3},
		{"2024-03-05", "2024-03-01", 1}, // inverted dates clamp to one day
		{"", "", 1},                     // unparseable dates clamp to one day
	}
	for _, tt := range tests {
		trip := &Trip{StartDate: tt.start, EndDate: tt.end}
		if got := trip.DayCount(); got != tt.want {
			t.Errorf("DayCount(%q, %q) = %d, want %d", tt.start, tt.end, got, tt.want)
		}
	}
}
