package sequencer

import (
	"fmt"
	"log"

	"github.com/aeroloop/guidanceengine/internal/flightgoal"
	"github.com/aeroloop/guidanceengine/internal/landing"
	"github.com/aeroloop/guidanceengine/internal/markers"
	"github.com/aeroloop/guidanceengine/internal/plan"
	"github.com/aeroloop/guidanceengine/internal/types"
)

type guidanceState int

const (
	following guidanceState = iota
	diverting
	landStaging
	descending
	complete
	cancelled
)

func (g guidanceState) String() string {
	switch g {
	case following:
		return "FOLLOWING"
	case diverting:
		return "DIVERTING"
	case landStaging:
		return "LAND_STAGING"
	case descending:
		return "LANDING"
	case complete:
		return "COMPLETE"
	case cancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("guidanceState(%d)", int(g))
	}
}

// Effects returned by the pure transition functions, executed by the
// handler loop.
type effect interface{}

type submitGoal struct {
	target plan.Waypoint
}

type cancelGoal struct{}

type postMessage struct {
	msg types.Message
}

// stopMission halts the fixed-rate tick; issued on terminal states only.
type stopMission struct{}

type state struct {
	cfg   Config
	plan  *plan.MissionPlan
	table *markers.Table

	guidance       guidanceState
	index          int
	handledRoi     bool
	handledTargets map[int]bool
	landingPoint   markers.Position
}

func newState(cfg Config, missionPlan *plan.MissionPlan, table *markers.Table) *state {
	return &state{
		cfg:            cfg,
		plan:           missionPlan,
		table:          table,
		guidance:       following,
		handledTargets: make(map[int]bool),
	}
}

// start submits the first waypoint of the plan.
func (s *state) start() []effect {
	return s.pursueCurrent()
}

// tick advances the state machine on the polled goal status.
func (s *state) tick(status flightgoal.Status) []effect {
	switch s.guidance {
	case following:
		switch status {
		case flightgoal.StatusSucceeded:
			log.Printf("SEQ: reached waypoint %d/%d", s.index+1, s.plan.Len())
			s.index++
			return s.pursueCurrent()
		case flightgoal.StatusPreempted, flightgoal.StatusAborted, flightgoal.StatusRejected:
			return s.cancelMission(fmt.Sprintf("goal %s while following waypoint %d", status, s.index+1))
		}
	case landStaging:
		switch status {
		case flightgoal.StatusSucceeded:
			return s.beginDescent()
		case flightgoal.StatusPreempted, flightgoal.StatusAborted, flightgoal.StatusRejected:
			return s.cancelMission(fmt.Sprintf("goal %s during landing staging", status))
		}
	case descending:
		switch status {
		case flightgoal.StatusSucceeded:
			return s.finishMission()
		case flightgoal.StatusPreempted, flightgoal.StatusAborted, flightgoal.StatusRejected:
			return s.cancelMission(fmt.Sprintf("goal %s during descent", status))
		}
	}
	// DIVERTING suspends tick processing; terminal states never tick.
	return nil
}

// pursueCurrent submits the waypoint at the current index, skipping any
// that fail envelope validation. An exhausted plan moves to landing.
func (s *state) pursueCurrent() []effect {
	for s.index < s.plan.Len() && !plan.Validate(s.plan.At(s.index), s.cfg.Envelope) {
		log.Printf("SEQ: skipping waypoint %d/%d", s.index+1, s.plan.Len())
		s.index++
	}
	if s.index >= s.plan.Len() {
		return s.stageLanding()
	}
	wp := s.plan.At(s.index)
	log.Printf("SEQ: pursuing waypoint %d/%d (%v, %v, %v, %v)", s.index+1, s.plan.Len(), wp.X, wp.Y, wp.Z, wp.Yaw)
	return []effect{submitGoal{wp}}
}

func (s *state) stageLanding() []effect {
	pt, _ := landing.Resolve(s.table, s.cfg.LandingMarkerID, s.cfg.LandingFallback)
	s.landingPoint = pt
	log.Printf("SEQ: %s -> %s at (%v, %v)", s.guidance, landStaging, pt.X, pt.Y)
	s.guidance = landStaging

	hover, _ := landing.Legs(pt, s.cfg.SurveyAltitude)
	if !plan.Validate(hover, s.cfg.Envelope) {
		return s.beginDescent()
	}
	return []effect{submitGoal{hover}}
}

func (s *state) beginDescent() []effect {
	log.Printf("SEQ: %s -> %s", s.guidance, descending)
	s.guidance = descending

	_, descend := landing.Legs(s.landingPoint, s.cfg.SurveyAltitude)
	if !plan.Validate(descend, s.cfg.Envelope) {
		return s.finishMission()
	}
	return []effect{submitGoal{descend}}
}

func (s *state) finishMission() []effect {
	log.Printf("SEQ: %s -> %s", s.guidance, complete)
	s.guidance = complete
	return []effect{
		postMessage{types.CreateLocalMessage("mission-complete", types.MissionComplete{})},
		stopMission{},
	}
}

func (s *state) cancelMission(reason string) []effect {
	log.Printf("SEQ: %s -> %s: %s", s.guidance, cancelled, reason)
	s.guidance = cancelled
	return []effect{
		cancelGoal{},
		postMessage{types.CreateLocalMessage("mission-cancelled", types.MissionCancelled{Reason: reason})},
		stopMission{},
	}
}

func (s *state) handleMarker(m types.MarkerObserved) []effect {
	s.table.Record(m.ID, markers.Position{X: m.X, Y: m.Y})
	return nil
}

func (s *state) handleRoi(m types.RoiDetected) []effect {
	if s.guidance != following {
		log.Printf("SEQ: ROI ignored in state %s", s.guidance)
		return nil
	}
	if s.handledRoi {
		log.Printf("SEQ: ROI already handled, ignoring")
		return nil
	}
	s.handledRoi = true
	return s.divert(m.X, m.Y, false, 0)
}

func (s *state) handleTarget(m types.TargetClassified) []effect {
	if s.guidance != following {
		log.Printf("SEQ: target %d ignored in state %s", m.ID, s.guidance)
		return nil
	}
	if s.handledTargets[m.ID] {
		log.Printf("SEQ: target %d already handled, ignoring", m.ID)
		return nil
	}
	s.handledTargets[m.ID] = true
	return s.divert(m.X, m.Y, true, m.PayloadID)
}

func (s *state) divert(x, y float64, hasPayload bool, payloadID int) []effect {
	resume := s.plan.At(s.index)
	log.Printf("SEQ: %s -> %s to (%v, %v), resume waypoint %d/%d", s.guidance, diverting, x, y, s.index+1, s.plan.Len())
	s.guidance = diverting
	return []effect{
		postMessage{types.CreateLocalMessage("divert-requested", types.DivertRequested{
			X:          x,
			Y:          y,
			HasPayload: hasPayload,
			PayloadID:  payloadID,
			Resume:     resume,
		})},
	}
}

func (s *state) handleDiversionCompleted() []effect {
	if s.guidance != diverting {
		return nil
	}
	log.Printf("SEQ: %s -> %s at waypoint %d/%d", s.guidance, following, s.index+1, s.plan.Len())
	s.guidance = following
	return nil
}

func (s *state) handleDiversionFailed(m types.DiversionFailed) []effect {
	return s.cancelMission(fmt.Sprintf("diversion failed: %s", m.Reason))
}
