package types

import (
	"github.com/aeroloop/guidanceengine/internal/plan"
)

// Pose is the periodic vehicle pose, local frame, z up.
type Pose struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Yaw float64 `json:"yaw"`
}

// RoiDetected is a region-of-interest report from the perception stack.
type RoiDetected struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MarkerObserved carries a fiducial-marker sighting with its derived
// ground coordinate.
type MarkerObserved struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// TargetClassified is an upstream classification result with an
// approximate ground position and the payload to release over it.
type TargetClassified struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	PayloadID int     `json:"payload"`
}

// DivertRequested asks the diversion runner to leave the plan, visit
// (X, Y) and afterwards re-submit Resume, the waypoint the sequencer was
// pursuing when the detection fired.
type DivertRequested struct {
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	HasPayload bool          `json:"has_payload"`
	PayloadID  int           `json:"payload"`
	Resume     plan.Waypoint `json:"resume"`
}

type DiversionCompleted struct{}

type DiversionFailed struct {
	Reason string `json:"reason"`
}

// ReleasePayload commands a single payload deployment.
type ReleasePayload struct {
	PayloadID int `json:"payload"`
}

type MissionComplete struct{}

type MissionCancelled struct {
	Reason string `json:"reason"`
}
