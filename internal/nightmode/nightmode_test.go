package nightmode

import (
	"testing"
	"time"
)

func TestIsQuietNow(t *testing.T) {
	tests := []struct {
		name  string
		start int
		end   int
		hour  int
		want  bool
	}{
		{name: "wrap quiet at start", start: 23, end: 8, hour: 23, want: true},
		{name: "wrap quiet past midnight", start: 23, end: 8, hour: 0, want: true},
		{name: "wrap quiet before end", start: 23, end: 8, hour: 7, want: true},
		{name: "wrap loud at end", start: 23, end: 8, hour: 8, want: false},
		{name: "wrap loud midday", start: 23, end: 8, hour: 12, want: false},
		{name: "wrap loud before start", start: 23, end: 8, hour: 22, want: false},
		{name: "plain quiet at start", start: 0, end: 7, hour: 0, want: true},
		{name: "plain quiet inside", start: 0, end: 7, hour: 3, want: true},
		{name: "plain loud at end", start: 0, end: 7, hour: 7, want: false},
		{name: "empty window never quiet", start: 8, end: 8, hour: 8, want: false},
		{name: "empty window never quiet elsewhere", start: 8, end: 8, hour: 3, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(time.UTC, tt.start, tt.end)
			now := time.Date(2024, 6, 1, tt.hour, 30, 0, 0, time.UTC)
			if got := g.IsQuietNow(now); got != tt.want {
				t.Errorf("IsQuietNow(hour=%d, window=%d..%d) = %v, want %v", tt.hour, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestIsQuietNowUsesConfiguredTimezone(t *testing.T) {
	// 02:00 UTC is 07:00 in UTC+5: still quiet for a 0..8 window there,
	// and quiet in UTC too; 04:00 UTC is 09:00 UTC+5, loud there.
	plus5 := time.FixedZone("UTC+5", 5*60*60)
	g := New(plus5, 0, 8)

	quiet := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)
	if !g.IsQuietNow(quiet) {
		t.Error("expected 07:00 local to be quiet")
	}

	loud := time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC)
	if g.IsQuietNow(loud) {
		t.Error("expected 09:00 local to be loud")
	}
}
