package sequencer

import (
	"context"
	"testing"
	"time"

	"github.com/aeroloop/guidanceengine/internal/flightgoal"
	"github.com/aeroloop/guidanceengine/internal/markers"
	"github.com/aeroloop/guidanceengine/internal/plan"
	"github.com/aeroloop/guidanceengine/internal/types"
)

type fakeClient struct {
	submissions []flightgoal.Goal
	cancels     int
	status      flightgoal.Status
}

func (f *fakeClient) Submit(goal flightgoal.Goal) {
	f.submissions = append(f.submissions, goal)
	f.status = flightgoal.StatusPending
}

func (f *fakeClient) Cancel() {
	f.cancels++
}

func (f *fakeClient) Poll() flightgoal.Status {
	return f.status
}

func (f *fakeClient) AwaitResult(ctx context.Context) flightgoal.Status {
	return f.status
}

func (f *fakeClient) Close() {}

func newTestSequencer(t *testing.T, client flightgoal.Client, wps ...plan.Waypoint) *sequencer {
	t.Helper()
	cfg := testConfig()
	cfg.LinearVelocity = 1.5
	cfg.YawRate = 0.5
	cfg.PositionTolerance = 0.3
	cfg.YawTolerance = 0.1
	cfg.TickInterval = 50 * time.Millisecond

	p, err := plan.New(wps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := New(cfg, client, p, markers.NewTable()).(*sequencer)
	s.ticker = time.NewTicker(cfg.TickInterval)
	s.tickCh = s.ticker.C
	return s
}

func TestApply_SubmitCarriesConfiguredGoalParameters(t *testing.T) {
	client := &fakeClient{}
	wp := plan.Waypoint{X: 1, Y: 1, Z: 1.8}
	s := newTestSequencer(t, client, wp)

	s.apply(s.state.start(), func(types.Message) {})

	if len(client.submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(client.submissions))
	}
	goal := client.submissions[0]
	if goal.Target != wp {
		t.Fatalf("target = %v, want %v", goal.Target, wp)
	}
	if goal.LinearVelocity != 1.5 || goal.YawRate != 0.5 {
		t.Fatalf("velocities not taken from config: %+v", goal)
	}
	if goal.PositionTolerance != 0.3 || goal.YawTolerance != 0.1 {
		t.Fatalf("tolerances not taken from config: %+v", goal)
	}
	if !goal.WaitForConvergence {
		t.Fatalf("sequencing goals must wait for convergence")
	}
}

// Driving the whole plan through apply: the fake remote succeeds every
// goal, and at most one goal is ever outstanding.
func TestApply_FullMissionSubmissionOrder(t *testing.T) {
	client := &fakeClient{}
	wp1 := plan.Waypoint{X: 0, Y: 0, Z: 1.8}
	wp2 := plan.Waypoint{X: 1, Y: 1, Z: 1.8}
	s := newTestSequencer(t, client, wp1, wp2)

	var postedTypes []string
	post := func(msg types.Message) { postedTypes = append(postedTypes, msg.MessageType) }

	s.apply(s.state.start(), post)
	for i := 0; i < 4; i++ {
		client.status = flightgoal.StatusSucceeded
		s.apply(s.state.tick(client.Poll()), post)
	}

	want := []plan.Waypoint{
		wp1,
		wp2,
		{X: 0, Y: 0, Z: 1.8}, // hover over fallback
		{X: 0, Y: 0, Z: 0},   // descent
	}
	if len(client.submissions) != len(want) {
		t.Fatalf("submissions = %d, want %d", len(client.submissions), len(want))
	}
	for i, goal := range client.submissions {
		if goal.Target != want[i] {
			t.Fatalf("submission %d = %v, want %v", i, goal.Target, want[i])
		}
	}
	if len(postedTypes) != 1 || postedTypes[0] != "mission-complete" {
		t.Fatalf("posted = %v", postedTypes)
	}
	if s.tickCh != nil {
		t.Fatalf("tick channel still armed after completion")
	}
}

func TestApply_RemoteFailureCancelsAndStops(t *testing.T) {
	client := &fakeClient{}
	s := newTestSequencer(t, client, plan.Waypoint{X: 0, Y: 0, Z: 1.8})

	var postedTypes []string
	post := func(msg types.Message) { postedTypes = append(postedTypes, msg.MessageType) }

	s.apply(s.state.start(), post)
	client.status = flightgoal.StatusAborted
	s.apply(s.state.tick(client.Poll()), post)

	if len(client.submissions) != 1 {
		t.Fatalf("goals submitted after failure: %d", len(client.submissions))
	}
	if client.cancels != 1 {
		t.Fatalf("cancels = %d, want 1", client.cancels)
	}
	if len(postedTypes) != 1 || postedTypes[0] != "mission-cancelled" {
		t.Fatalf("posted = %v", postedTypes)
	}
	if s.tickCh != nil {
		t.Fatalf("tick channel still armed after cancellation")
	}
}

func TestDispatch_RoutesBusMessages(t *testing.T) {
	client := &fakeClient{}
	s := newTestSequencer(t, client, plan.Waypoint{X: 0, Y: 0, Z: 1.8})
	s.apply(s.state.start(), func(types.Message) {})

	effects := s.dispatch(types.CreateLocalMessage("target-classified", types.TargetClassified{ID: 2, X: 1, Y: 1}))
	if len(posted(effects)) != 1 {
		t.Fatalf("target classification did not request a diversion")
	}

	effects = s.dispatch(types.CreateLocalMessage("pose", types.Pose{X: 1}))
	if len(effects) != 0 {
		t.Fatalf("pose message produced effects")
	}
}
