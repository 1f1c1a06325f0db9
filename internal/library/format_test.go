package library

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds *float64
		want    string
	}{
		{"nil duration", nil, "0:00"},
		{"zero", floatPtr(0), "0:00"},
		{"negative", floatPtr(-5), "0:00"},
		{"under a minute", floatPtr(59.9), "0:59"},
		{"exact minute", floatPtr(60), "1:00"},
		{"fraction floors", floatPtr(125.8), "2:05"},
		{"over an hour", floatPtr(3671), "61:11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}
