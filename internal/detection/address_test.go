package detection

import "testing"

func TestCityFromAddress(t *testing.T) {
	tests := []struct {
		name string
		addr map[string]string
		want string
	}{
		{"city wins", map[string]string{"city": "Ghent", "town": "Drongen"}, "Ghent"},
		{"town fallback", map[string]string{"town": "Drongen"}, "Drongen"},
		{"village fallback", map[string]string{"village": "Vinkt"}, "Vinkt"},
		{"municipality fallback", map[string]string{"municipality": "Deinze"}, "Deinze"},
		{"empty value skipped", map[string]string{"city": "", "town": "Drongen"}, "Drongen"},
		{"no candidates", map[string]string{"road": "Veldstraat"}, ""},
		{"nil map", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CityFromAddress(tt.addr); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
