// Package nightmode implements the quiet-window gate.
package nightmode

import "time"

// Gate suppresses publication during a configured local-time window.
// Consulting the gate never mutates state: a blocked item stays
// eligible for the next cycle.
type Gate struct {
	loc   *time.Location
	start int
	end   int
}

// New creates a Gate for the half-open hour window [start, end) on a
// 24-hour wheel. start == end means an empty window (never quiet).
func New(loc *time.Location, start, end int) *Gate {
	return &Gate{loc: loc, start: start, end: end}
}

// IsQuietNow reports whether now falls inside the quiet window.
func (g *Gate) IsQuietNow(now time.Time) bool {
	h := now.In(g.loc).Hour()
	if g.start == g.end {
		return false
	}
	if g.start < g.end {
		return h >= g.start && h < g.end
	}
	// Window spans midnight, e.g. 23 -> 8.
	return h >= g.start || h < g.end
}
