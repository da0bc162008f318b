package plan

import (
	"math"
	"testing"
)

func TestValidate_EnvelopeInvariant(t *testing.T) {
	env := SafeEnvelope{MaxX: 4, MaxY: 2.5, MaxZ: 4.5}

	cases := []struct {
		name string
		wp   Waypoint
		want bool
	}{
		{"inside", Waypoint{1, 1, 1.8, 0}, true},
		{"on x bound", Waypoint{4, 0, 1, 0}, true},
		{"negative x inside", Waypoint{-4, 0, 1, 0}, true},
		{"x too large", Waypoint{4.1, 0, 1, 0}, false},
		{"x too negative", Waypoint{-4.1, 0, 1, 0}, false},
		{"y too large", Waypoint{0, 2.6, 1, 0}, false},
		{"y too negative", Waypoint{0, -2.6, 1, 0}, false},
		{"z too high", Waypoint{0, 0, 4.6, 0}, false},
		{"z negative ok", Waypoint{0, 0, -1, 0}, true},
		{"ground", Waypoint{0, 0, 0, 0}, true},
	}

	for _, c := range cases {
		if got := Validate(c.wp, env); got != c.want {
			t.Errorf("%s: Validate(%v) = %v, want %v", c.name, c.wp, got, c.want)
		}
	}
}

func TestValidate_RejectsNonNumericFields(t *testing.T) {
	env := SafeEnvelope{MaxX: 10, MaxY: 10, MaxZ: 10}
	nan := math.NaN()

	for _, wp := range []Waypoint{
		{nan, 0, 0, 0},
		{0, nan, 0, 0},
		{0, 0, nan, 0},
		{0, 0, 0, nan},
	} {
		if Validate(wp, env) {
			t.Errorf("Validate(%v) = true, want false", wp)
		}
	}
}

func TestNew_EmptyPlanFails(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for empty plan")
	}
}

func TestNew_CopiesWaypoints(t *testing.T) {
	src := []Waypoint{{1, 2, 3, 0}}
	p, err := New(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src[0].X = 99
	if p.At(0).X != 1 {
		t.Fatalf("plan mutated through caller slice")
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
}
