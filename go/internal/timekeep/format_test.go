package timekeep

import "testing"

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name        string
		seconds     int
		showSeconds bool
		want        string
	}{
		{name: "zero", seconds: 0, showSeconds: true, want: "00:00"},
		{name: "under a minute", seconds: 59, showSeconds: true, want: "00:59"},
		{name: "exact minute", seconds: 60, showSeconds: true, want: "01:00"},
		{name: "minutes and seconds", seconds: 125, showSeconds: true, want: "02:05"},
		{name: "minutes past an hour stay minutes", seconds: 3661, showSeconds: true, want: "61:01"},
		{name: "minutes past 100 widen", seconds: 6005, showSeconds: true, want: "100:05"},
		{name: "negative keeps magnitude", seconds: -65, showSeconds: true, want: "-01:05"},
		{name: "negative under a minute", seconds: -5, showSeconds: true, want: "-00:05"},
		{name: "minutes only", seconds: 125, showSeconds: false, want: "02"},
		{name: "minutes only negative", seconds: -125, showSeconds: false, want: "-02"},
		{name: "minutes only zero", seconds: 0, showSeconds: false, want: "00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTime(tt.seconds, tt.showSeconds)
			if got != tt.want {
				t.Fatalf("FormatTime(%d, %v) = %q, want %q", tt.seconds, tt.showSeconds, got, tt.want)
			}
		})
	}
}

func TestFormatTimeLeftNil(t *testing.T) {
	if got := FormatTimeLeft(nil, true); got != "00:00" {
		t.Fatalf("FormatTimeLeft(nil, true) = %q, want %q", got, "00:00")
	}
	if got := FormatTimeLeft(nil, false); got != "00" {
		t.Fatalf("FormatTimeLeft(nil, false) = %q, want %q", got, "00")
	}

	v := -65
	if got := FormatTimeLeft(&v, true); got != "-01:05" {
		t.Fatalf("FormatTimeLeft(-65, true) = %q, want %q", got, "-01:05")
	}
}
