package plan

import (
	"log"
	"math"

	"github.com/pkg/errors"
)

// Waypoint is a target pose the vehicle should reach. Coordinates are in
// meters in the local frame, yaw in radians.
type Waypoint struct {
	X   float64 `yaml:"x" json:"x"`
	Y   float64 `yaml:"y" json:"y"`
	Z   float64 `yaml:"z" json:"z"`
	Yaw float64 `yaml:"yaw" json:"yaw"`
}

// SafeEnvelope holds the per-axis absolute bounds checked against every
// waypoint before it is sent to the flight-motion service.
type SafeEnvelope struct {
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
	MaxZ float64 `yaml:"max_z"`
}

// Validate reports whether wp is safe to send. A rejected waypoint is
// skipped by callers, never a mission abort.
func Validate(wp Waypoint, env SafeEnvelope) bool {
	if math.IsNaN(wp.X) || math.IsNaN(wp.Y) || math.IsNaN(wp.Z) || math.IsNaN(wp.Yaw) {
		log.Printf("PLAN: waypoint rejected: non-numeric field (%v, %v, %v, %v)", wp.X, wp.Y, wp.Z, wp.Yaw)
		return false
	}
	if math.Abs(wp.X) > env.MaxX {
		log.Printf("PLAN: waypoint rejected: |x|=%v exceeds %v", math.Abs(wp.X), env.MaxX)
		return false
	}
	if math.Abs(wp.Y) > env.MaxY {
		log.Printf("PLAN: waypoint rejected: |y|=%v exceeds %v", math.Abs(wp.Y), env.MaxY)
		return false
	}
	if wp.Z > env.MaxZ {
		log.Printf("PLAN: waypoint rejected: z=%v exceeds %v", wp.Z, env.MaxZ)
		return false
	}
	return true
}

// MissionPlan is the ordered waypoint list, fixed at construction.
type MissionPlan struct {
	waypoints []Waypoint
}

func New(waypoints []Waypoint) (*MissionPlan, error) {
	if len(waypoints) == 0 {
		return nil, errors.New("mission plan is empty")
	}
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	return &MissionPlan{wps}, nil
}

func (p *MissionPlan) Len() int {
	return len(p.waypoints)
}

func (p *MissionPlan) At(i int) Waypoint {
	return p.waypoints[i]
}

// Waypoints returns a copy of the full list, for visualization.
func (p *MissionPlan) Waypoints() []Waypoint {
	wps := make([]Waypoint, len(p.waypoints))
	copy(wps, p.waypoints)
	return wps
}
