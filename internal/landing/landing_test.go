package landing

import (
	"testing"

	"github.com/aeroloop/guidanceengine/internal/markers"
)

func TestResolve_FallbackWhenMarkerUnknown(t *testing.T) {
	table := markers.NewTable()
	fallback := markers.Position{X: 0, Y: 0}

	pos, known := Resolve(table, 42, fallback)
	if known {
		t.Fatalf("marker should be unknown")
	}
	if pos != fallback {
		t.Fatalf("Resolve = %v, want fallback %v", pos, fallback)
	}
}

func TestResolve_UsesStoredMarker(t *testing.T) {
	table := markers.NewTable()
	table.Record(42, markers.Position{X: 3.2, Y: -1.1})

	pos, known := Resolve(table, 42, markers.Position{})
	if !known {
		t.Fatalf("marker should be known")
	}
	if pos.X != 3.2 || pos.Y != -1.1 {
		t.Fatalf("Resolve = %v", pos)
	}
}

func TestLegs_HoverThenDescend(t *testing.T) {
	hover, descend := Legs(markers.Position{X: 2, Y: 3}, 1.8)

	if hover.X != 2 || hover.Y != 3 || hover.Z != 1.8 || hover.Yaw != 0 {
		t.Fatalf("hover = %v", hover)
	}
	if descend.X != 2 || descend.Y != 3 || descend.Z != 0 || descend.Yaw != 0 {
		t.Fatalf("descend = %v", descend)
	}
}
