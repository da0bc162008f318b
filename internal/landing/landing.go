// Package landing resolves where the vehicle should come down once the
// waypoint list is exhausted.
package landing

import (
	"log"

	"github.com/aeroloop/guidanceengine/internal/markers"
	"github.com/aeroloop/guidanceengine/internal/plan"
)

// Resolve returns the ground coordinate to land on: the last-known
// position of the landing marker, or fallback when the marker was never
// observed. The second return reports whether the marker was known.
func Resolve(table *markers.Table, markerID int, fallback markers.Position) (markers.Position, bool) {
	pos, ok := table.Lookup(markerID)
	if !ok {
		log.Printf("LANDING: marker %d never observed, using fallback (%v, %v)", markerID, fallback.X, fallback.Y)
		return fallback, false
	}
	log.Printf("LANDING: resolved marker %d at (%v, %v)", markerID, pos.X, pos.Y)
	return pos, true
}

// Legs returns the two-leg descent: hover above the landing point at
// survey altitude first, then descend to ground. Hovering first guards
// against descending blind onto an imprecise estimate.
func Legs(pt markers.Position, surveyAltitude float64) (hover, descend plan.Waypoint) {
	hover = plan.Waypoint{X: pt.X, Y: pt.Y, Z: surveyAltitude}
	descend = plan.Waypoint{X: pt.X, Y: pt.Y, Z: 0}
	return hover, descend
}
