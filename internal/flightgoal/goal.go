// Package flightgoal wraps the external flight-motion action service:
// a "fly to pose" request with an asynchronous status response.
package flightgoal

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/aeroloop/guidanceengine/internal/plan"
)

// Goal is one fly-to-pose request. The remote service keeps at most one
// goal active; submitting a new one supersedes the previous.
type Goal struct {
	Target             plan.Waypoint
	LinearVelocity     float64
	YawRate            float64
	PositionTolerance  float64
	YawTolerance       float64
	WaitForConvergence bool
}

// Status mirrors the remote action states.
type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusSucceeded
	StatusPreempted
	StatusAborted
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusActive:
		return "ACTIVE"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusPreempted:
		return "PREEMPTED"
	case StatusAborted:
		return "ABORTED"
	case StatusRejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func ParseStatus(value string) (Status, error) {
	switch value {
	case "PENDING":
		return StatusPending, nil
	case "ACTIVE":
		return StatusActive, nil
	case "SUCCEEDED":
		return StatusSucceeded, nil
	case "PREEMPTED":
		return StatusPreempted, nil
	case "ABORTED":
		return StatusAborted, nil
	case "REJECTED":
		return StatusRejected, nil
	default:
		return StatusPending, errors.Errorf("unknown goal status %q", value)
	}
}

// Terminal reports whether the remote goal has finished, one way or another.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusPreempted, StatusAborted, StatusRejected:
		return true
	default:
		return false
	}
}

// Client is the guidance-side view of the flight-motion service.
//
// Submit is fire-and-forget and supersedes any in-flight goal. Cancel is
// idempotent. Poll never blocks; AwaitResult blocks until the current goal
// reaches a terminal status and is used only by the diversion runner.
type Client interface {
	Submit(goal Goal)
	Cancel()
	Poll() Status
	AwaitResult(ctx context.Context) Status
	Close()
}
