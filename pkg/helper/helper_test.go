package helper

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	ts := time.Date(2024, 5, 26, 13, 4, 5, 0, time.UTC)
	if got := Clock(ts, nil); got != "13:04:05" {
		t.Errorf("Clock(nil loc) = %q, want 13:04:05", got)
	}
	tehran := time.FixedZone("IRST", 3*3600+30*60)
	if got := Clock(ts, tehran); got != "16:34:05" {
		t.Errorf("Clock(+03:30) = %q, want 16:34:05", got)
	}
}

func TestTimeToEnd(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "-"},
		{-time.Minute, "-"},
		{30 * time.Second, "less than a minute"},
		{65*time.Minute + 20*time.Second, "1 hour 5 minutes"},
	}
	for _, tt := range tests {
		if got := TimeToEnd(tt.in); got != tt.want {
			t.Errorf("TimeToEnd(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetDriverCodeName(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"Max Verstappen": "MVE",
		"Zhou":           "ZHO",
		"Li":             "LI",
		"Guanyu Zhou Ka": "GKA",
	}
	for in, want := range tests {
		if got := GetDriverCodeName(in); got != want {
			t.Errorf("GetDriverCodeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeCodeBlock(t *testing.T) {
	if got := EscapeCodeBlock("a`b\\c"); got != "a\\`b\\\\c" {
		t.Errorf("EscapeCodeBlock = %q", got)
	}
}
